package frame_node

import (
	"context"
	"errors"

	"gif_frame_node/entities"
	"gif_frame_node/frame_extractor"
)

// Node extracts a single frame and hands it to the host for persistence.
// Each node carries the request of one invocation.
type Node struct {
	Request   frame_extractor.Request
	MemberID  string
	extractor frame_extractor.Extractor
}

type Config struct {
	Extractor frame_extractor.Extractor
	Request   *frame_extractor.Request
	MemberID  string
}

func New(cfg Config) (*Node, error) {
	if cfg.Extractor == nil {
		return nil, errors.New("missing frame extractor")
	}

	if cfg.Request == nil {
		return nil, errors.New("missing request")
	}

	if cfg.Request.ImagePath == "" {
		return nil, errors.New("missing image path")
	}

	return &Node{
		Request:   *cfg.Request,
		MemberID:  cfg.MemberID,
		extractor: cfg.Extractor,
	}, nil
}

// Invoke runs the extraction and saves the result through the invocation
// context. Extraction errors, frame_extractor.InputError included, are
// returned untouched so the host can report them.
func (n *Node) Invoke(ctx context.Context, ictx InvocationContext) (*ImageOutput, error) {
	if ictx == nil {
		return nil, errors.New("missing invocation context")
	}

	req := n.Request

	img, err := n.extractor.Extract(ctx, &req)
	if err != nil {
		return nil, err
	}

	saved, err := ictx.SaveImage(ctx, img, SaveOptions{
		SourcePath: req.ImagePath,
		FrameIndex: req.FrameIndex,
		MemberID:   n.MemberID,
	})
	if err != nil {
		return nil, err
	}

	return NewImageOutput(saved), nil
}

func NewImageOutput(frame *entities.ExtractedFrame) *ImageOutput {
	return &ImageOutput{
		Image:  ImageField{ImageName: frame.ImageName},
		Width:  frame.Width,
		Height: frame.Height,
	}
}
