package extracted_frames

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gif_frame_node/clock"
	"gif_frame_node/entities"
	"gif_frame_node/repositories"
)

const insertFrameQuery string = `
INSERT INTO extracted_frames (image_name, source_path, frame_index, member_id, width, height, size_bytes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`

const frameColumns string = `id, image_name, source_path, frame_index, member_id, width, height, size_bytes, created_at`

const getFrameByImageNameQuery string = `
SELECT ` + frameColumns + ` FROM extracted_frames WHERE image_name = ?;
`

const listFramesBySourceQuery string = `
SELECT ` + frameColumns + ` FROM extracted_frames WHERE source_path = ? ORDER BY frame_index, id;
`

type sqliteRepo struct {
	dbConn *sql.DB
	clock  clock.Clock
}

type Config struct {
	DB *sql.DB
	// Clock defaults to the wall clock.
	Clock clock.Clock
}

func NewRepository(cfg *Config) (Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("missing DB parameter")
	}

	repoClock := cfg.Clock
	if repoClock == nil {
		repoClock = clock.NewClock()
	}

	return &sqliteRepo{
		dbConn: cfg.DB,
		clock:  repoClock,
	}, nil
}

func (repo *sqliteRepo) Create(ctx context.Context, frame *entities.ExtractedFrame) (*entities.ExtractedFrame, error) {
	if frame.ImageName == "" {
		return nil, errors.New("missing image name")
	}

	frame.CreatedAt = repo.clock.Now()

	res, err := repo.dbConn.ExecContext(ctx, insertFrameQuery,
		frame.ImageName, frame.SourcePath, frame.FrameIndex, frame.MemberID,
		frame.Width, frame.Height, frame.SizeBytes, frame.CreatedAt)
	if err != nil {
		return nil, err
	}

	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	frame.ID = lastID

	return frame, nil
}

func (repo *sqliteRepo) GetByImageName(ctx context.Context, imageName string) (*entities.ExtractedFrame, error) {
	frame, err := scanFrame(repo.dbConn.QueryRowContext(ctx, getFrameByImageNameQuery, imageName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NewNotFoundError(fmt.Sprintf("extracted frame %s", imageName))
		}

		return nil, err
	}

	return frame, nil
}

func (repo *sqliteRepo) ListBySource(ctx context.Context, sourcePath string) ([]*entities.ExtractedFrame, error) {
	rows, err := repo.dbConn.QueryContext(ctx, listFramesBySourceQuery, sourcePath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frames := make([]*entities.ExtractedFrame, 0)

	for rows.Next() {
		frame, err := scanFrame(rows)
		if err != nil {
			return nil, err
		}

		frames = append(frames, frame)
	}

	return frames, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFrame(row scanner) (*entities.ExtractedFrame, error) {
	var frame entities.ExtractedFrame

	err := row.Scan(&frame.ID, &frame.ImageName, &frame.SourcePath, &frame.FrameIndex, &frame.MemberID,
		&frame.Width, &frame.Height, &frame.SizeBytes, &frame.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &frame, nil
}
