package frame_extractor

import (
	"context"
	"image"
)

type Extractor interface {
	Extract(ctx context.Context, req *Request) (image.Image, error)
}
