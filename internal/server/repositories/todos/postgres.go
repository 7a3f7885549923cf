package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
)

// PostgresRepository implements todo storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var errUnknownUser = fmt.Errorf("%w: user does not exist", common.ErrorValidation)

func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	q := `
		INSERT INTO todos (title, description, completed, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, q, todo.Title, todo.Description, todo.Completed, todo.UserID).
		Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, errUnknownUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

// GetByID returns the todo together with its owner.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Todo, error) {
	q := `
		SELECT t.id, t.title, t.description, t.completed, t.user_id, t.created_at, t.updated_at, u.id, u.name
		FROM todos t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = $1
	`
	todo := &models.Todo{User: &models.UserRef{}}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&todo.ID, &todo.Title, &todo.Description, &todo.Completed, &todo.UserID,
		&todo.CreatedAt, &todo.UpdatedAt, &todo.User.ID, &todo.User.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

// Update writes every mutable column of todo.ID.
func (r *PostgresRepository) Update(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	q := `
		UPDATE todos SET title = $2, description = $3, completed = $4, user_id = $5, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, q, todo.ID, todo.Title, todo.Description, todo.Completed, todo.UserID).
		Scan(&todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if dbx.IsForeignKeyViolation(err) {
			return nil, errUnknownUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
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

func (r *PostgresRepository) List(ctx context.Context, spec *query.Spec) (*query.Page, error) {
	return query.Find(ctx, r.db, Schema, spec)
}

// ListByUser returns all todos of userID ordered by sortBy, which must come
// from Schema.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, sortBy query.Field, order string) ([]models.Todo, error) {
	if order != query.OrderDesc {
		order = query.OrderAsc
	}
	q := fmt.Sprintf(`
		SELECT id, title, description, completed, user_id, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY %s %s, id %s
	`, sortBy.Column, order, order)

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return todos, nil
}
