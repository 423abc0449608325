package default_settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gif_frame_node/entities"
	"gif_frame_node/repositories"
)

const upsertSetting string = `
INSERT OR REPLACE INTO default_settings (member_id, width, height, scale, crop) VALUES (?, ?, ?, ?, ?);
`

const getSettingByMemberID string = `
SELECT member_id, width, height, scale, crop FROM default_settings WHERE member_id = ?;
`

type sqliteRepo struct {
	dbConn *sql.DB
}

type Config struct {
	DB *sql.DB
}

func NewRepository(cfg *Config) (Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("missing DB parameter")
	}

	return &sqliteRepo{dbConn: cfg.DB}, nil
}

func (repo *sqliteRepo) Upsert(ctx context.Context, setting *entities.DefaultSettings) (*entities.DefaultSettings, error) {
	if setting.MemberID == "" {
		return nil, errors.New("missing member ID")
	}

	if setting.Width < 0 || setting.Height < 0 {
		return nil, fmt.Errorf("invalid default size %dx%d", setting.Width, setting.Height)
	}

	if setting.Scale < 0 {
		return nil, fmt.Errorf("invalid default scale %v", setting.Scale)
	}

	_, err := repo.dbConn.ExecContext(ctx, upsertSetting,
		setting.MemberID, setting.Width, setting.Height, setting.Scale, setting.Crop)
	if err != nil {
		return nil, err
	}

	return setting, nil
}

func (repo *sqliteRepo) GetByMemberID(ctx context.Context, memberID string) (*entities.DefaultSettings, error) {
	var setting entities.DefaultSettings

	err := repo.dbConn.QueryRowContext(ctx, getSettingByMemberID, memberID).Scan(
		&setting.MemberID, &setting.Width, &setting.Height, &setting.Scale, &setting.Crop)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NewNotFoundError(fmt.Sprintf("default setting for member ID %s", memberID))
		}

		return nil, err
	}

	return &setting, nil
}
