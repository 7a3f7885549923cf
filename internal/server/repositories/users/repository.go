package users

import (
	"context"

	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, spec *query.Spec) (*query.Page, error)
}

// Schema is the list contract of the users resource. The password column is
// deliberately absent, so it can be neither searched nor projected.
var Schema = &query.Schema{
	Table: "users",
	Fields: []query.Field{
		{Name: "id", Column: "id"},
		{Name: "name", Column: "name", Searchable: true},
		{Name: "email", Column: "email", Searchable: true},
		{Name: "createdAt", Column: "created_at"},
		{Name: "updatedAt", Column: "updated_at"},
	},
	Filters:       []string{"name", "email"},
	DefaultSearch: []string{"name", "email"},
	DefaultSort:   "createdAt",
	DefaultLimit:  10,
}
