package image_store

import (
	"context"
	"image"
	"io"

	"gif_frame_node/entities"
	"gif_frame_node/frame_node"
)

// Store persists extracted frames as PNG files and implements
// frame_node.InvocationContext.
type Store interface {
	SaveImage(ctx context.Context, img image.Image, opts frame_node.SaveOptions) (*entities.ExtractedFrame, error)
	Get(ctx context.Context, imageName string) (*entities.ExtractedFrame, error)
	Open(ctx context.Context, imageName string) (io.ReadCloser, error)
	Path(imageName string) string
}
