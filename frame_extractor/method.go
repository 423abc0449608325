package frame_extractor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gif_frame_node/frame_container"

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Method selects how a validated frame is materialized.
type Method string

const (
	MethodEmbedded    Method = "embedded"
	MethodFFmpeg      Method = "ffmpeg"
	MethodImageMagick Method = "imagemagick"
	MethodGifsicle    Method = "gifsicle"
)

const (
	defaultFFmpegBin   = "ffmpeg"
	defaultMagickBin   = "convert"
	defaultGifsicleBin = "gifsicle"
)

func init() {
	ffmpeg.LogCompiledCommand = false
}

func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodEmbedded, MethodFFmpeg, MethodImageMagick, MethodGifsicle:
		return m, nil
	case "":
		return MethodEmbedded, nil
	default:
		return "", fmt.Errorf("unknown extraction method %q", s)
	}
}

type frameReader interface {
	ReadFrame(ctx context.Context, path string, container frame_container.Container, index int) (image.Image, error)
}

func newFrameReader(cfg Config) (frameReader, error) {
	switch cfg.Method {
	case MethodEmbedded:
		return embeddedReader{}, nil
	case MethodFFmpeg:
		bin := cfg.FFmpegBin
		if bin == "" {
			bin = defaultFFmpegBin
		}
		return ffmpegReader{bin: bin}, nil
	case MethodImageMagick:
		bin := cfg.MagickBin
		if bin == "" {
			bin = defaultMagickBin
		}
		return magickReader{bin: bin}, nil
	case MethodGifsicle:
		bin := cfg.GifsicleBin
		if bin == "" {
			bin = defaultGifsicleBin
		}
		return gifsicleReader{bin: bin}, nil
	default:
		return nil, fmt.Errorf("unknown extraction method %q", cfg.Method)
	}
}

type embeddedReader struct{}

func (embeddedReader) ReadFrame(_ context.Context, _ string, container frame_container.Container, index int) (image.Image, error) {
	return container.Frame(index)
}

// The external readers each run their tool in a scratch directory that is
// removed once the produced frame has been decoded back into memory.

type ffmpegReader struct {
	bin string
}

// ReadFrame lets ffmpeg-go build the argument list and runs it under ctx so a
// cancelled request stops the running ffmpeg.
func (r ffmpegReader) ReadFrame(ctx context.Context, path string, _ frame_container.Container, index int) (image.Image, error) {
	return withScratchDir("ffmpeg", func(dir string) (string, error) {
		out := filepath.Join(dir, "frame.png")

		args := ffmpeg.Input(path).
			Filter("select", ffmpeg.Args{fmt.Sprintf("gte(n,%d)", index)}).
			Output(out, ffmpeg.KwArgs{"vframes": 1}).
			OverWriteOutput().
			GetArgs()

		cmd := exec.CommandContext(ctx, r.bin, args...)

		output, err := cmd.CombinedOutput()
		if err != nil {
			return "", fmt.Errorf("%s error: %w, output: %s", r.bin, err, string(output))
		}

		return out, nil
	})
}

type magickReader struct {
	bin string
}

func (r magickReader) ReadFrame(ctx context.Context, path string, _ frame_container.Container, index int) (image.Image, error) {
	return withScratchDir("magick", func(dir string) (string, error) {
		cmd := exec.CommandContext(ctx, r.bin, path, "-coalesce", filepath.Join(dir, "frame-%d.png"))

		output, err := cmd.CombinedOutput()
		if err != nil {
			return "", fmt.Errorf("%s error: %w, output: %s", r.bin, err, string(output))
		}

		return filepath.Join(dir, fmt.Sprintf("frame-%d.png", index)), nil
	})
}

type gifsicleReader struct {
	bin string
}

func (r gifsicleReader) ReadFrame(ctx context.Context, path string, container frame_container.Container, index int) (image.Image, error) {
	if container.Format() != "gif" {
		return nil, fmt.Errorf("%s only reads gif images, got %s", r.bin, container.Format())
	}

	return withScratchDir("gifsicle", func(dir string) (string, error) {
		out := filepath.Join(dir, "frame.gif")

		cmd := exec.CommandContext(ctx, r.bin, "--unoptimize", path, fmt.Sprintf("#%d", index), "-o", out)

		output, err := cmd.CombinedOutput()
		if err != nil {
			return "", fmt.Errorf("%s error: %w, output: %s", r.bin, err, string(output))
		}

		return out, nil
	})
}

func withScratchDir(tool string, produce func(dir string) (string, error)) (image.Image, error) {
	dir, err := os.MkdirTemp("", "frame-"+tool+"-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	out, err := produce(dir)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Open(out)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s produced no frame at %s", tool, filepath.Base(out))
		}
		return nil, fmt.Errorf("decode %s output: %w", tool, err)
	}

	return img, nil
}
