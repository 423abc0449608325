package extracted_frames

import (
	"context"

	"gif_frame_node/entities"
)

type Repository interface {
	Create(ctx context.Context, frame *entities.ExtractedFrame) (*entities.ExtractedFrame, error)
	GetByImageName(ctx context.Context, imageName string) (*entities.ExtractedFrame, error)
	ListBySource(ctx context.Context, sourcePath string) ([]*entities.ExtractedFrame, error)
}
