package composite_renderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

type rendererImpl struct {
	encoder *png.Encoder
}

type Config struct {
	CompressionLevel png.CompressionLevel
}

func New(cfg Config) (Renderer, error) {
	return &rendererImpl{
		encoder: &png.Encoder{CompressionLevel: cfg.CompressionLevel},
	}, nil
}

// Pad centers img on a width x height canvas filled with background. The
// image replaces the canvas pixels it covers, alpha included, so only the
// uncovered border shows the background.
func (r *rendererImpl) Pad(img image.Image, width, height int, background color.Color) (*image.NRGBA, error) {
	if img == nil {
		return nil, errors.New("missing image")
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}

	bounds := img.Bounds()

	if bounds.Dx() > width || bounds.Dy() > height {
		return nil, fmt.Errorf("image %dx%d does not fit in %dx%d canvas", bounds.Dx(), bounds.Dy(), width, height)
	}

	retImage := image.NewNRGBA(image.Rect(0, 0, width, height))

	draw.Draw(retImage, retImage.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	offset := image.Pt((width-bounds.Dx())/2, (height-bounds.Dy())/2)

	draw.Draw(retImage, image.Rectangle{Min: offset, Max: offset.Add(bounds.Size())}, img, bounds.Min, draw.Src)

	return retImage, nil
}

func (r *rendererImpl) EncodePNG(img image.Image) (*bytes.Buffer, error) {
	if img == nil {
		return nil, errors.New("missing image")
	}

	imageBuf := new(bytes.Buffer)

	err := r.encoder.Encode(imageBuf, img)
	if err != nil {
		return nil, err
	}

	return imageBuf, nil
}
