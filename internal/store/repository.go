package store

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateEdit(ctx context.Context, edit *Edit) error
	GetEdit(ctx context.Context, id string) (*Edit, error)
	ListEdits(ctx context.Context, limit int) ([]*Edit, error)
	ListPendingEdits(ctx context.Context) ([]*Edit, error)
	UpdateEditStatus(ctx context.Context, id, status, errorMsg string) error
	SetEditOutput(ctx context.Context, id, outputPath string) error

	CreateAsset(ctx context.Context, asset *Asset) error
	ListAssetsByEdit(ctx context.Context, editID string) ([]*Asset, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateEdit(ctx context.Context, e *Edit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO edits (id, prompt, mode, status, output_path, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Prompt, e.Mode, e.Status, nullString(e.OutputPath), nullString(e.Error),
		e.CreatedAt.Format(time.RFC3339), e.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetEdit(ctx context.Context, id string) (*Edit, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, prompt, mode, status, output_path, error, created_at, updated_at
		FROM edits WHERE id = ?
	`, id)
	return r.scanEdit(row)
}

func (r *SQLiteRepository) scanEdit(row *sql.Row) (*Edit, error) {
	var e Edit
	var outputPath, errorMsg sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&e.ID, &e.Prompt, &e.Mode, &e.Status, &outputPath, &errorMsg, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e.OutputPath = outputPath.String
	e.Error = errorMsg.String
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &e, nil
}

func (r *SQLiteRepository) ListEdits(ctx context.Context, limit int) ([]*Edit, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, prompt, mode, status, output_path, error, created_at, updated_at
		FROM edits ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectEdits(rows)
}

func (r *SQLiteRepository) ListPendingEdits(ctx context.Context) ([]*Edit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, prompt, mode, status, output_path, error, created_at, updated_at
		FROM edits WHERE status = ? ORDER BY created_at ASC
	`, EditStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectEdits(rows)
}

func (r *SQLiteRepository) collectEdits(rows *sql.Rows) ([]*Edit, error) {
	var edits []*Edit
	for rows.Next() {
		var e Edit
		var outputPath, errorMsg sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&e.ID, &e.Prompt, &e.Mode, &e.Status, &outputPath, &errorMsg, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.OutputPath = outputPath.String
		e.Error = errorMsg.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		edits = append(edits, &e)
	}
	return edits, rows.Err()
}

func (r *SQLiteRepository) UpdateEditStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE edits SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(errorMsg), time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) SetEditOutput(ctx context.Context, id, outputPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE edits SET output_path = ?, updated_at = ? WHERE id = ?
	`, outputPath, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) CreateAsset(ctx context.Context, a *Asset) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assets (id, edit_id, kind, path, duration, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.EditID, a.Kind, a.Path, a.Duration, a.Position, a.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) ListAssetsByEdit(ctx context.Context, editID string) ([]*Asset, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, edit_id, kind, path, duration, position, created_at
		FROM assets WHERE edit_id = ? ORDER BY kind, position ASC
	`, editID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*Asset
	for rows.Next() {
		var a Asset
		var createdAt string
		if err := rows.Scan(&a.ID, &a.EditID, &a.Kind, &a.Path, &a.Duration, &a.Position, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		assets = append(assets, &a)
	}
	return assets, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
