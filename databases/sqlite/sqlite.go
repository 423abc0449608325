package sqlite

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

const dbFile string = "frame_node.sqlite"

const getCurrentMigration string = `PRAGMA user_version;`
const setCurrentMigration string = `PRAGMA user_version = ?;`

const createExtractedFramesTableIfNotExistsQuery string = `
CREATE TABLE IF NOT EXISTS extracted_frames (
id INTEGER NOT NULL PRIMARY KEY,
image_name TEXT NOT NULL,
source_path TEXT NOT NULL,
frame_index INTEGER NOT NULL,
width INTEGER NOT NULL,
height INTEGER NOT NULL,
size_bytes INTEGER NOT NULL,
created_at DATETIME NOT NULL
);`

const createImageNameIndexIfNotExistsQuery string = `
CREATE UNIQUE INDEX IF NOT EXISTS extracted_frame_image_name_index
ON extracted_frames(image_name);
`

const createSourceIndexIfNotExistsQuery string = `
CREATE INDEX IF NOT EXISTS extracted_frame_source_index
ON extracted_frames(source_path, frame_index);
`

const addFrameMemberColumnQuery string = `
ALTER TABLE extracted_frames ADD COLUMN member_id TEXT NOT NULL DEFAULT '';
`

const createDefaultSettingsTableIfNotExistsQuery string = `
CREATE TABLE IF NOT EXISTS default_settings (
member_id TEXT NOT NULL PRIMARY KEY,
width INTEGER NOT NULL,
height INTEGER NOT NULL
);`

const addSettingsResizeColumnsQuery string = `
ALTER TABLE default_settings ADD COLUMN scale REAL NOT NULL DEFAULT 1.0;
ALTER TABLE default_settings ADD COLUMN crop INTEGER NOT NULL DEFAULT 0;
`

type migration struct {
	migrationName  string
	migrationQuery string
}

var migrations = []migration{
	{migrationName: "create extracted frames table", migrationQuery: createExtractedFramesTableIfNotExistsQuery},
	{migrationName: "add extracted frame image name index", migrationQuery: createImageNameIndexIfNotExistsQuery},
	{migrationName: "add extracted frame source index", migrationQuery: createSourceIndexIfNotExistsQuery},
	{migrationName: "add extracted frame member column", migrationQuery: addFrameMemberColumnQuery},
	{migrationName: "create default settings table", migrationQuery: createDefaultSettingsTableIfNotExistsQuery},
	{migrationName: "add settings resize columns", migrationQuery: addSettingsResizeColumnsQuery},
}

// New opens the sqlite database at filename, creating it when missing, and
// brings its schema up to date. An empty filename uses the default file in
// the working directory.
func New(ctx context.Context, filename string) (*sql.DB, error) {
	if filename == "" {
		var err error

		filename, err = DBFilename()
		if err != nil {
			return nil, err
		}
	}

	err := touchDBFile(filename)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}

	err = migrate(ctx, db)
	if err != nil {
		db.Close()

		return nil, err
	}

	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	var currentMigration int

	row := db.QueryRowContext(ctx, getCurrentMigration)

	err := row.Scan(&currentMigration)
	if err != nil {
		return err
	}

	requiredMigration := len(migrations)

	log.Printf("Current DB version: %v, required DB version: %v\n", currentMigration, requiredMigration)

	if currentMigration < requiredMigration {
		for migrationNum := currentMigration + 1; migrationNum <= requiredMigration; migrationNum++ {
			err = execMigration(ctx, db, migrationNum)
			if err != nil {
				log.Printf("Error running migration %v '%v'\n", migrationNum, migrations[migrationNum-1].migrationName)

				return err
			}
		}
	}

	return nil
}

func execMigration(ctx context.Context, db *sql.DB, migrationNum int) error {
	log.Printf("Running migration %v '%v'\n", migrationNum, migrations[migrationNum-1].migrationName)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	//nolint
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, migrations[migrationNum-1].migrationQuery)
	if err != nil {
		return err
	}

	setQuery := strings.Replace(setCurrentMigration, "?", strconv.Itoa(migrationNum), 1)

	_, err = tx.ExecContext(ctx, setQuery)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func DBFilename() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, dbFile), nil
}

func touchDBFile(filename string) error {
	_, err := os.Stat(filename)
	if os.IsNotExist(err) {
		if dir := filepath.Dir(filename); dir != "" {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return mkErr
			}
		}

		file, createErr := os.Create(filename)
		if createErr != nil {
			return createErr
		}

		closeErr := file.Close()
		if closeErr != nil {
			return closeErr
		}
	}

	return nil
}
