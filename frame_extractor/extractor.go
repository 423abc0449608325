package frame_extractor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"gif_frame_node/composite_renderer"
	"gif_frame_node/frame_container"

	"github.com/docker/go-units"
)

type extractorImpl struct {
	reader        frameReader
	renderer      composite_renderer.Renderer
	background    color.Color
	maxSourceSize int64
}

type Config struct {
	Method        Method
	PadBackground color.Color
	// MaxSourceSize rejects larger source files as not found. Zero disables the check.
	MaxSourceSize int64
	FFmpegBin     string
	MagickBin     string
	GifsicleBin   string
}

func New(cfg Config) (Extractor, error) {
	if cfg.Method == "" {
		cfg.Method = MethodEmbedded
	}

	reader, err := newFrameReader(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MaxSourceSize < 0 {
		return nil, errors.New("max source size must not be negative")
	}

	background := cfg.PadBackground
	if background == nil {
		background = color.White
	}

	renderer, err := composite_renderer.New(composite_renderer.Config{})
	if err != nil {
		return nil, err
	}

	return &extractorImpl{
		reader:        reader,
		renderer:      renderer,
		background:    background,
		maxSourceSize: cfg.MaxSourceSize,
	}, nil
}

func (e *extractorImpl) Extract(ctx context.Context, req *Request) (image.Image, error) {
	if req == nil {
		return nil, errors.New("missing request")
	}

	path := expandHome(req.ImagePath)

	container, err := e.open(path)
	if err != nil {
		return nil, &InputError{Kind: KindNotFound, Path: req.ImagePath, Err: err}
	}

	frameCount := container.FrameCount()

	if req.FrameIndex < 0 || req.FrameIndex >= frameCount {
		return nil, &InputError{
			Kind:       KindIndexOutOfRange,
			Path:       req.ImagePath,
			FrameIndex: req.FrameIndex,
			FrameCount: frameCount,
		}
	}

	img, err := e.reader.ReadFrame(ctx, path, container, req.FrameIndex)
	if err != nil {
		return nil, &InputError{
			Kind:       KindFrameRead,
			Path:       req.ImagePath,
			FrameIndex: req.FrameIndex,
			FrameCount: frameCount,
			Err:        err,
		}
	}

	return e.resize(img, req)
}

func (e *extractorImpl) open(path string) (frame_container.Container, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	if e.maxSourceSize > 0 && info.Size() > e.maxSourceSize {
		return nil, fmt.Errorf("source is %s, over the %s limit",
			units.HumanSize(float64(info.Size())), units.HumanSize(float64(e.maxSourceSize)))
	}

	return frame_container.Open(path)
}
