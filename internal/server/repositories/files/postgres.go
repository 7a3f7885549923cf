package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectWithUploader = `
	SELECT f.id, f.filename, f.original_name, f.mimetype, f.size, f.path, f.uploaded_by,
		f.description, f.created_at, f.updated_at, u.id, u.name, u.email
	FROM files f
	JOIN users u ON u.id = f.uploaded_by
`

// Create inserts the metadata of an already stored payload.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	q := `
		INSERT INTO files (filename, original_name, mimetype, size, path, uploaded_by, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, q,
		file.Filename, file.OriginalName, file.Mimetype, file.Size, file.Path, file.UploadedBy, file.Description).
		Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: filename %s", common.ErrorConflict, file.Filename)
		case dbx.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: uploader does not exist", common.ErrorValidation)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

// GetByID returns the file with its uploader.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	f, err := scanFile(r.db.QueryRowContext(ctx, selectWithUploader+` WHERE f.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]models.File, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		selectWithUploader+` ORDER BY f.created_at DESC, f.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByUser returns one page of the files uploaded by userID, newest
// first, and their total count.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.File, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE uploaded_by = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		selectWithUploader+` WHERE f.uploaded_by = $1 ORDER BY f.created_at DESC, f.id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	f := &models.File{Uploader: &models.UserRef{}}
	err := s.Scan(&f.ID, &f.Filename, &f.OriginalName, &f.Mimetype, &f.Size, &f.Path, &f.UploadedBy,
		&f.Description, &f.CreatedAt, &f.UpdatedAt, &f.Uploader.ID, &f.Uploader.Name, &f.Uploader.Email)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func collect(rows *sql.Rows) ([]models.File, error) {
	defer rows.Close()

	out := make([]models.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
