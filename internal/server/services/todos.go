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
)

type CreateTodoInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	UserID      int64   `json:"userId"`
}

type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager, _ *config.Config) *TodoService {
	return &TodoService{db: db, repomanager: m}
}

// List runs the todo list query described by values.
func (s *TodoService) List(ctx context.Context, values url.Values) (*query.Page, error) {
	spec, err := query.Parse(values, todos.Schema)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Todos(s.db).List(ctx, spec)
}

func (s *TodoService) Create(ctx context.Context, in CreateTodoInput) (*models.Todo, error) {
	if blank(in.Title) {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if in.UserID <= 0 {
		return nil, fmt.Errorf("%w: userId is required", common.ErrorValidation)
	}

	todo := &models.Todo{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		UserID:      in.UserID,
	}
	return s.repomanager.Todos(s.db).Create(ctx, todo)
}

// Get returns the todo with its owner.
func (s *TodoService) Get(ctx context.Context, id int64) (*models.Todo, error) {
	return s.repomanager.Todos(s.db).GetByID(ctx, id)
}

// Update applies the non-nil fields of patch and returns the stored todo
// with its (possibly new) owner.
func (s *TodoService) Update(ctx context.Context, id int64, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Title != nil && blank(*patch.Title) {
		return nil, fmt.Errorf("%w: title must not be empty", common.ErrorValidation)
	}

	var out *models.Todo
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)

		todo, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			todo.Title = *patch.Title
		}
		if patch.Description != nil {
			todo.Description = patch.Description
		}
		if patch.Completed != nil {
			todo.Completed = *patch.Completed
		}
		if patch.UserID != nil {
			todo.UserID = *patch.UserID
		}
		if _, err := repo.Update(ctx, todo); err != nil {
			return err
		}

		out, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TodoService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Todos(s.db).Delete(ctx, id)
}
