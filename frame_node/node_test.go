package frame_node

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"gif_frame_node/entities"
	"gif_frame_node/frame_extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingContext struct {
	saved []image.Image
	opts  []SaveOptions
	err   error
}

func (c *recordingContext) SaveImage(_ context.Context, img image.Image, opts SaveOptions) (*entities.ExtractedFrame, error) {
	if c.err != nil {
		return nil, c.err
	}

	c.saved = append(c.saved, img)
	c.opts = append(c.opts, opts)

	return &entities.ExtractedFrame{
		ImageName:  "saved.png",
		SourcePath: opts.SourcePath,
		FrameIndex: opts.FrameIndex,
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
	}, nil
}

func writeGIF(t *testing.T, frames int) string {
	t.Helper()

	pal := color.Palette{color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}}
	anim := &gif.GIF{Config: image.Config{Width: 20, Height: 10, ColorModel: pal}}

	for i := 0; i < frames; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 20, 10), pal)
		for p := range frame.Pix {
			frame.Pix[p] = uint8(i % 2)
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}

	path := filepath.Join(t.TempDir(), "anim.gif")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, gif.EncodeAll(f, anim))

	return path
}

func newExtractor(t *testing.T) frame_extractor.Extractor {
	t.Helper()

	extractor, err := frame_extractor.New(frame_extractor.Config{})
	require.NoError(t, err)

	return extractor
}

func TestNewValidates(t *testing.T) {
	extractor := newExtractor(t)

	_, err := New(Config{Request: frame_extractor.NewRequest("a.gif")})
	assert.EqualError(t, err, "missing frame extractor")

	_, err = New(Config{Extractor: extractor})
	assert.EqualError(t, err, "missing request")

	_, err = New(Config{Extractor: extractor, Request: frame_extractor.NewRequest("")})
	assert.EqualError(t, err, "missing image path")
}

func TestInvokeSavesFrame(t *testing.T) {
	path := writeGIF(t, 3)

	req := frame_extractor.NewRequest(path)
	req.FrameIndex = 1
	req.Width = 40
	req.Height = 40

	node, err := New(Config{Extractor: newExtractor(t), Request: req, MemberID: "99"})
	require.NoError(t, err)

	ictx := &recordingContext{}

	out, err := node.Invoke(context.Background(), ictx)
	require.NoError(t, err)

	assert.Equal(t, &ImageOutput{Image: ImageField{ImageName: "saved.png"}, Width: 40, Height: 40}, out)

	require.Len(t, ictx.saved, 1)
	assert.Equal(t, SaveOptions{SourcePath: path, FrameIndex: 1, MemberID: "99"}, ictx.opts[0])
	assert.Equal(t, image.Rect(0, 0, 40, 40), ictx.saved[0].Bounds())
}

func TestInvokeDoesNotSaveOnInputError(t *testing.T) {
	req := frame_extractor.NewRequest(writeGIF(t, 2))
	req.FrameIndex = 2

	node, err := New(Config{Extractor: newExtractor(t), Request: req})
	require.NoError(t, err)

	ictx := &recordingContext{}

	_, err = node.Invoke(context.Background(), ictx)
	require.Error(t, err)
	assert.ErrorIs(t, err, frame_extractor.ErrIndexOutOfRange)
	assert.Empty(t, ictx.saved)
}

func TestInvokePropagatesSaveError(t *testing.T) {
	node, err := New(Config{Extractor: newExtractor(t), Request: frame_extractor.NewRequest(writeGIF(t, 1))})
	require.NoError(t, err)

	saveErr := errors.New("disk full")

	_, err = node.Invoke(context.Background(), &recordingContext{err: saveErr})
	assert.ErrorIs(t, err, saveErr)
}

func TestInvokeRequiresContext(t *testing.T) {
	node, err := New(Config{Extractor: newExtractor(t), Request: frame_extractor.NewRequest("a.gif")})
	require.NoError(t, err)

	_, err = node.Invoke(context.Background(), nil)
	assert.EqualError(t, err, "missing invocation context")
}

func TestImageOutputJSON(t *testing.T) {
	out := NewImageOutput(&entities.ExtractedFrame{ImageName: "x.png", Width: 3, Height: 4})

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"image":{"image_name":"x.png"},"width":3,"height":4}`, string(data))
}
