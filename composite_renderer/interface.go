package composite_renderer

import (
	"bytes"
	"image"
	"image/color"
)

type Renderer interface {
	Pad(img image.Image, width, height int, background color.Color) (*image.NRGBA, error)
	EncodePNG(img image.Image) (*bytes.Buffer, error)
}
