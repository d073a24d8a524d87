package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/artpar/usagelens/ports"
)

// DatasetArchive implements ports.DatasetArchive using SQLite.
type DatasetArchive struct {
	db *DB
}

// NewDatasetArchive creates a new SQLite dataset archive.
func NewDatasetArchive(db *DB) *DatasetArchive {
	return &DatasetArchive{db: db}
}

// Save stores the raw CSV text under the dataset's metadata.
func (a *DatasetArchive) Save(ctx context.Context, meta ports.DatasetMeta, rawCSV string) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO datasets (id, name, row_count, rejected_rows, uploaded_at, raw_csv)
		VALUES (?, ?, ?, ?, ?, ?)
	`, meta.ID, meta.Name, meta.RowCount, meta.RejectedRows, meta.UploadedAt.UTC(), rawCSV)
	return err
}

// Latest returns the most recently saved dataset and its raw text.
func (a *DatasetArchive) Latest(ctx context.Context) (ports.DatasetMeta, string, bool, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, name, row_count, rejected_rows, uploaded_at, raw_csv
		FROM datasets
		ORDER BY uploaded_at DESC, id DESC
		LIMIT 1
	`)

	var meta ports.DatasetMeta
	var raw string
	var uploadedAt time.Time
	err := row.Scan(&meta.ID, &meta.Name, &meta.RowCount, &meta.RejectedRows, &uploadedAt, &raw)
	if err == sql.ErrNoRows {
		return ports.DatasetMeta{}, "", false, nil
	}
	if err != nil {
		return ports.DatasetMeta{}, "", false, err
	}
	meta.UploadedAt = uploadedAt
	return meta, raw, true, nil
}

// List returns metadata for all saved datasets, newest first.
func (a *DatasetArchive) List(ctx context.Context) ([]ports.DatasetMeta, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, name, row_count, rejected_rows, uploaded_at
		FROM datasets
		ORDER BY uploaded_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.DatasetMeta
	for rows.Next() {
		var meta ports.DatasetMeta
		var uploadedAt time.Time
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.RowCount, &meta.RejectedRows, &uploadedAt); err != nil {
			return nil, err
		}
		meta.UploadedAt = uploadedAt
		out = append(out, meta)
	}
	return out, rows.Err()
}

// Ensure interface compliance.
var _ ports.DatasetArchive = (*DatasetArchive)(nil)
