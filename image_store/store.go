package image_store

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	"gif_frame_node/composite_renderer"
	"gif_frame_node/entities"
	"gif_frame_node/frame_node"
	"gif_frame_node/repositories/extracted_frames"

	"github.com/docker/go-units"
	"github.com/google/uuid"
)

type storeImpl struct {
	outputDir string
	renderer  composite_renderer.Renderer
	frameRepo extracted_frames.Repository
}

type Config struct {
	OutputDir string
	Renderer  composite_renderer.Renderer
	FrameRepo extracted_frames.Repository
}

func New(cfg Config) (Store, error) {
	if cfg.OutputDir == "" {
		return nil, errors.New("missing output directory")
	}

	if cfg.Renderer == nil {
		return nil, errors.New("missing composite renderer")
	}

	if cfg.FrameRepo == nil {
		return nil, errors.New("missing extracted frame repository")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return &storeImpl{
		outputDir: cfg.OutputDir,
		renderer:  cfg.Renderer,
		frameRepo: cfg.FrameRepo,
	}, nil
}

var _ frame_node.InvocationContext = (*storeImpl)(nil)

func (s *storeImpl) SaveImage(ctx context.Context, img image.Image, opts frame_node.SaveOptions) (*entities.ExtractedFrame, error) {
	buf, err := s.renderer.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	size := int64(buf.Len())
	imageName := uuid.NewString() + ".png"

	err = s.writeFile(imageName, buf)
	if err != nil {
		log.Printf("Error writing frame image: %v", err)

		return nil, err
	}

	bounds := img.Bounds()

	frame, err := s.frameRepo.Create(ctx, &entities.ExtractedFrame{
		ImageName:  imageName,
		SourcePath: opts.SourcePath,
		FrameIndex: opts.FrameIndex,
		MemberID:   opts.MemberID,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		SizeBytes:  size,
	})
	if err != nil {
		log.Printf("Error creating extracted frame record: %v", err)

		if removeErr := os.Remove(s.Path(imageName)); removeErr != nil {
			log.Printf("Error removing orphaned frame image: %v", removeErr)
		}

		return nil, err
	}

	log.Printf("Saved frame %d of %s as %s (%dx%d, %s)",
		opts.FrameIndex, opts.SourcePath, imageName, frame.Width, frame.Height, units.HumanSize(float64(size)))

	return frame, nil
}

// writeFile writes through a temp file in the output directory so readers
// never observe a partially written image.
func (s *storeImpl) writeFile(imageName string, r io.Reader) error {
	tmp, err := os.CreateTemp(s.outputDir, ".frame-*.tmp")
	if err != nil {
		return err
	}

	_, err = io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(tmp.Name())

		return err
	}

	if err = os.Rename(tmp.Name(), s.Path(imageName)); err != nil {
		os.Remove(tmp.Name())

		return err
	}

	return nil
}

func (s *storeImpl) Get(ctx context.Context, imageName string) (*entities.ExtractedFrame, error) {
	return s.frameRepo.GetByImageName(ctx, imageName)
}

func (s *storeImpl) Open(ctx context.Context, imageName string) (io.ReadCloser, error) {
	if imageName == "" || filepath.Base(imageName) != imageName {
		return nil, fmt.Errorf("invalid image name %q", imageName)
	}

	if _, err := s.Get(ctx, imageName); err != nil {
		return nil, err
	}

	return os.Open(s.Path(imageName))
}

func (s *storeImpl) Path(imageName string) string {
	return filepath.Join(s.outputDir, imageName)
}
