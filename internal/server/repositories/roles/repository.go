package roles

import (
	"context"

	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
)

type Repository interface {
	Create(ctx context.Context, role *models.Role) (*models.Role, error)
	GetByID(ctx context.Context, id int64) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context, spec *query.Spec) (*query.Page, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Role, error)
}

var Schema = &query.Schema{
	Table: "roles",
	Fields: []query.Field{
		{Name: "id", Column: "id"},
		{Name: "name", Column: "name", Searchable: true},
		{Name: "description", Column: "description", Searchable: true},
		{Name: "createdAt", Column: "created_at"},
		{Name: "updatedAt", Column: "updated_at"},
	},
	Filters:       []string{"name", "description"},
	DefaultSearch: []string{"name", "description"},
	DefaultSort:   "createdAt",
	DefaultLimit:  10,
}
