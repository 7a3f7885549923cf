package userroles

import (
	"context"

	"github.com/dmitrijs2005/todoapi/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, roleID int64) (*models.UserRole, error)
}
