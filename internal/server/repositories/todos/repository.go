package todos

import (
	"context"

	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
)

type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, id int64) (*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, spec *query.Spec) (*query.Page, error)
	ListByUser(ctx context.Context, userID int64, sortBy query.Field, order string) ([]models.Todo, error)
}

// Schema is the list contract of the todos resource. Every listed todo
// carries its owner as {id, name}.
var Schema = &query.Schema{
	Table: "todos",
	Fields: []query.Field{
		{Name: "id", Column: "id"},
		{Name: "title", Column: "title", Searchable: true},
		{Name: "description", Column: "description", Searchable: true},
		{Name: "completed", Column: "completed"},
		{Name: "userId", Column: "user_id"},
		{Name: "createdAt", Column: "created_at"},
		{Name: "updatedAt", Column: "updated_at"},
	},
	Filters:       []string{"title", "description"},
	DefaultSearch: []string{"title", "description"},
	DefaultSort:   "createdAt",
	DefaultLimit:  5,
	Includes: []query.Include{{
		Name:       "user",
		Table:      "users",
		LocalKey:   "user_id",
		ForeignKey: "id",
		Fields: []query.Field{
			{Name: "id", Column: "id"},
			{Name: "name", Column: "name"},
		},
	}},
}
