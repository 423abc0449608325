package frame_node

import (
	"context"
	"image"

	"gif_frame_node/entities"
)

// InvocationContext is what the hosting pipeline hands the node on each call.
type InvocationContext interface {
	SaveImage(ctx context.Context, img image.Image, opts SaveOptions) (*entities.ExtractedFrame, error)
}

// SaveOptions tells the host where a saved image came from.
type SaveOptions struct {
	SourcePath string
	FrameIndex int
	MemberID   string
}

// ImageField references an image persisted by the host.
type ImageField struct {
	ImageName string `json:"image_name"`
}

// ImageOutput is the standard envelope returned by image producing nodes.
type ImageOutput struct {
	Image  ImageField `json:"image"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
}
