package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/server/config"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/todos"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/users"
)

// UserService manages user records. Credentials are checked by AuthService.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, _ *config.Config) *UserService {
	return &UserService{db: db, repomanager: m}
}

func (s *UserService) List(ctx context.Context, values url.Values) (*query.Page, error) {
	spec, err := query.Parse(values, users.Schema)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).List(ctx, spec)
}

// Create stores a user; the password is hashed the same way as on
// registration.
func (s *UserService) Create(ctx context.Context, in RegisterInput) (*models.User, error) {
	if blank(in.Name) || blank(in.Email) || blank(in.Password) {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrorValidation)
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).Create(ctx, &models.User{Name: in.Name, Email: in.Email, Password: hash})
}

// GetWithTodos returns the user and all of their todos ordered by sortBy
// (a todo field name, createdAt when empty) in sortOrder.
func (s *UserService) GetWithTodos(ctx context.Context, id int64, sortBy, sortOrder string) (*models.UserWithTodos, error) {
	if sortBy == "" {
		sortBy = todos.Schema.DefaultSort
	}
	field, ok := todos.Schema.Field(sortBy)
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort field %q", common.ErrorValidation, sortBy)
	}
	order := query.OrderAsc
	if sortOrder == query.OrderDesc {
		order = query.OrderDesc
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Todos(s.db).ListByUser(ctx, id, field, order)
	if err != nil {
		return nil, err
	}
	return &models.UserWithTodos{User: *user, Todos: list}, nil
}

// Update applies the non-nil fields of patch. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if (patch.Name != nil && blank(*patch.Name)) ||
		(patch.Email != nil && blank(*patch.Email)) ||
		(patch.Password != nil && blank(*patch.Password)) {
		return nil, fmt.Errorf("%w: fields must not be empty", common.ErrorValidation)
	}

	var hash string
	if patch.Password != nil {
		var err error
		if hash, err = hashPassword(*patch.Password); err != nil {
			return nil, err
		}
	}

	var out *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			user.Name = *patch.Name
		}
		if patch.Email != nil {
			user.Email = *patch.Email
		}
		if hash != "" {
			user.Password = hash
		}
		out, err = repo.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the user together with their todos and role links.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}
