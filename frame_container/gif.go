package frame_container

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"

	"github.com/disintegration/imaging"
)

type gifContainer struct {
	anim   *gif.GIF
	bounds image.Rectangle
}

func decodeGIF(data []byte) (Container, error) {
	// image/gif keeps every frame inside the logical screen, so capping the
	// screen up front bounds each frame the decoder allocates.
	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}

	if err := checkCanvas(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}

	if len(anim.Image) == 0 {
		return nil, errors.New("gif has no frames")
	}

	bounds := image.Rect(0, 0, anim.Config.Width, anim.Config.Height)

	// Some encoders leave the logical screen empty, fall back to the frames.
	if bounds.Empty() {
		for _, frame := range anim.Image {
			bounds = bounds.Union(frame.Bounds())
		}
		bounds = image.Rect(0, 0, bounds.Max.X, bounds.Max.Y)

		if err := checkCanvas(bounds.Dx(), bounds.Dy()); err != nil {
			return nil, err
		}
	}

	return &gifContainer{
		anim:   anim,
		bounds: bounds,
	}, nil
}

func (c *gifContainer) Format() string {
	return "gif"
}

func (c *gifContainer) FrameCount() int {
	return len(c.anim.Image)
}

// Frame replays the animation up to index, honouring each frame's disposal
// method, and returns a copy of the canvas as it looks once index is drawn.
func (c *gifContainer) Frame(index int) (image.Image, error) {
	if index < 0 || index >= len(c.anim.Image) {
		return nil, fmt.Errorf("frame %d out of range (0-%d)", index, len(c.anim.Image)-1)
	}

	canvas := image.NewNRGBA(c.bounds)

	for i := 0; i <= index; i++ {
		frame := c.anim.Image[i]
		if frame == nil {
			return nil, fmt.Errorf("frame %d is empty", i)
		}

		disposal := c.disposal(i)

		var previous *image.NRGBA
		if disposal == gif.DisposalPrevious {
			previous = imaging.Clone(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		if i == index {
			break
		}

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}

	return imaging.Clone(canvas), nil
}

func (c *gifContainer) disposal(index int) byte {
	if index < len(c.anim.Disposal) {
		return c.anim.Disposal[index]
	}

	return gif.DisposalNone
}
