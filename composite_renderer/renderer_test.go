package composite_renderer

import (
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) Renderer {
	t.Helper()

	r, err := New(Config{})
	require.NoError(t, err)

	return r
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPadCentersImage(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}

	padded, err := newRenderer(t).Pad(solid(10, 4, red), 10, 10, color.White)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 10, 10), padded.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, padded.NRGBAAt(5, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, padded.NRGBAAt(5, 9))
	assert.Equal(t, red, padded.NRGBAAt(5, 3))
	assert.Equal(t, red, padded.NRGBAAt(5, 6))
}

func TestPadHonoursSourceOrigin(t *testing.T) {
	blue := color.NRGBA{B: 255, A: 255}
	src := solid(6, 6, blue).SubImage(image.Rect(2, 2, 6, 6))

	padded, err := newRenderer(t).Pad(src, 4, 8, color.Black)
	require.NoError(t, err)

	assert.Equal(t, blue, padded.NRGBAAt(0, 2))
	assert.Equal(t, color.NRGBA{A: 255}, padded.NRGBAAt(0, 0))
}

func TestPadRejectsOversizedImage(t *testing.T) {
	_, err := newRenderer(t).Pad(solid(12, 4, color.Black), 10, 10, color.White)
	assert.Error(t, err)

	_, err = newRenderer(t).Pad(solid(2, 2, color.Black), 0, 10, color.White)
	assert.Error(t, err)

	_, err = newRenderer(t).Pad(nil, 10, 10, color.White)
	assert.Error(t, err)
}

func TestEncodePNG(t *testing.T) {
	buf, err := newRenderer(t).EncodePNG(solid(3, 2, color.White))
	require.NoError(t, err)

	decoded, err := png.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), decoded.Bounds())
}
