package userroles

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create links userID to roleID. A repeated pair yields common.ErrorConflict,
// an unknown user or role yields common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, userID, roleID int64) (*models.UserRole, error) {
	q := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	ur := &models.UserRole{UserID: userID, RoleID: roleID}
	err := r.db.QueryRowContext(ctx, q, userID, roleID).Scan(&ur.ID, &ur.CreatedAt, &ur.UpdatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: user already has this role", common.ErrorConflict)
		case dbx.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: user or role", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ur, nil
}
