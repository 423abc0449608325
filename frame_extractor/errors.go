package frame_extractor

import "fmt"

type ErrorKind string

const (
	KindNotFound        ErrorKind = "not found"
	KindIndexOutOfRange ErrorKind = "index out of range"
	KindFrameRead       ErrorKind = "frame read failure"
)

// Sentinels for errors.Is, matched by kind only.
var (
	ErrNotFound        = &InputError{Kind: KindNotFound}
	ErrIndexOutOfRange = &InputError{Kind: KindIndexOutOfRange}
	ErrFrameRead       = &InputError{Kind: KindFrameRead}
)

// InputError reports a request that cannot be served from its source image.
type InputError struct {
	Kind       ErrorKind
	Path       string
	FrameIndex int
	FrameCount int
	Err        error
}

func (e *InputError) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("no GIF (or PNG) image found at %s", e.Path)
	case KindIndexOutOfRange:
		return fmt.Sprintf("frame %d is out of range (0-%d) for image %s", e.FrameIndex, e.FrameCount-1, e.Path)
	case KindFrameRead:
		return fmt.Sprintf("failed to read frame %d from image %s", e.FrameIndex, e.Path)
	}

	return string(e.Kind)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func (e *InputError) Is(err error) bool {
	target, ok := err.(*InputError)
	return ok && target.Kind == e.Kind
}
