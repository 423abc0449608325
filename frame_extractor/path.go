package frame_extractor

import (
	"os"
	"os/user"
	"strings"
)

// expandHome replaces a leading ~ or ~name with the matching home directory.
// Paths that cannot be expanded are returned unchanged.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	name, rest := path[1:], ""
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name, rest = name[:i], name[i:]
	}

	var home string

	if name == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		home = dir
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return path
		}
		home = u.HomeDir
	}

	if rest == "" {
		return home
	}

	return strings.TrimSuffix(home, "/") + rest
}
