package default_settings

import (
	"context"
	"path/filepath"
	"testing"

	"gif_frame_node/databases/sqlite"
	"gif_frame_node/entities"
	"gif_frame_node/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()

	db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "settings.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(&Config{DB: db})
	require.NoError(t, err)

	return repo
}

func TestUpsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, &entities.DefaultSettings{MemberID: "7", Width: 128, Height: 64, Scale: 1, Crop: true})
	require.NoError(t, err)

	got, err := repo.GetByMemberID(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, &entities.DefaultSettings{MemberID: "7", Width: 128, Height: 64, Scale: 1, Crop: true}, got)

	_, err = repo.Upsert(ctx, &entities.DefaultSettings{MemberID: "7", Scale: 0.5})
	require.NoError(t, err)

	got, err = repo.GetByMemberID(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, &entities.DefaultSettings{MemberID: "7", Scale: 0.5}, got)
}

func TestGetByMemberIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByMemberID(context.Background(), "nobody")
	assert.ErrorIs(t, err, &repositories.NotFoundError{})
}

func TestUpsertValidates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		setting *entities.DefaultSettings
		wantErr string
	}{
		{name: "member", setting: &entities.DefaultSettings{Scale: 1}, wantErr: "missing member ID"},
		{name: "size", setting: &entities.DefaultSettings{MemberID: "1", Width: -1}, wantErr: "invalid default size -1x0"},
		{name: "scale", setting: &entities.DefaultSettings{MemberID: "1", Scale: -2}, wantErr: "invalid default scale -2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Upsert(ctx, tt.setting)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
