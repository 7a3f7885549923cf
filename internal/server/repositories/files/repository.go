package files

import (
	"context"

	"github.com/dmitrijs2005/todoapi/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
	Delete(ctx context.Context, id int64) error
	// List returns one page of all files, newest first, and the total count.
	List(ctx context.Context, limit, offset int) ([]models.File, int64, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.File, int64, error)
}
