package frame_container

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	gif87Header = []byte("GIF87a")
	gif89Header = []byte("GIF89a")
)

// MaxPixels bounds the canvas of any source image. Larger canvases are
// refused before their pixels are allocated.
const MaxPixels = 178956970

func checkCanvas(width, height int) error {
	if int64(width)*int64(height) > MaxPixels {
		return fmt.Errorf("canvas %dx%d exceeds %d pixels", width, height, MaxPixels)
	}

	return nil
}

// Open reads the file at path and decodes it as a frame container.
func Open(path string) (Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}

// Decode sniffs the container format from its leading bytes. Anything that is
// neither GIF nor PNG is handed to the registered image decoders as a single
// frame still.
func Decode(data []byte) (Container, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	switch {
	case bytes.HasPrefix(data, gif87Header), bytes.HasPrefix(data, gif89Header):
		return decodeGIF(data)
	case bytes.HasPrefix(data, []byte(pngHeader)):
		return decodePNG(data)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if err := checkCanvas(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return &stillContainer{format: format, img: img}, nil
}

type stillContainer struct {
	format string
	img    image.Image
}

func (c *stillContainer) Format() string {
	return c.format
}

func (c *stillContainer) FrameCount() int {
	return 1
}

func (c *stillContainer) Frame(index int) (image.Image, error) {
	if index != 0 {
		return nil, fmt.Errorf("frame %d out of range for single frame %s", index, c.format)
	}

	return imaging.Clone(c.img), nil
}
