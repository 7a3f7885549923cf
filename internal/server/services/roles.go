package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/server/config"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/roles"
)

type CreateRoleInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type AssignRoleInput struct {
	UserID int64 `json:"userId"`
	RoleID int64 `json:"roleId"`
}

var errUserOrRoleNotFound = fmt.Errorf("%w: user or role not found", common.ErrorNotFound)

type RoleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRoleService(db *sql.DB, m repomanager.RepositoryManager, _ *config.Config) *RoleService {
	return &RoleService{db: db, repomanager: m}
}

func (s *RoleService) List(ctx context.Context, values url.Values) (*query.Page, error) {
	spec, err := query.Parse(values, roles.Schema)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Roles(s.db).List(ctx, spec)
}

func (s *RoleService) Create(ctx context.Context, in CreateRoleInput) (*models.Role, error) {
	if blank(in.Name) {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}
	return s.repomanager.Roles(s.db).Create(ctx, &models.Role{Name: in.Name, Description: in.Description})
}

// Assign grants a role to a user. Both must exist; a role already held
// yields common.ErrorConflict.
func (s *RoleService) Assign(ctx context.Context, in AssignRoleInput) (*models.UserRole, error) {
	if in.UserID <= 0 || in.RoleID <= 0 {
		return nil, fmt.Errorf("%w: userId and roleId are required", common.ErrorValidation)
	}

	if _, err := s.repomanager.Users(s.db).GetByID(ctx, in.UserID); err != nil {
		return nil, notFoundAs(err, errUserOrRoleNotFound)
	}
	if _, err := s.repomanager.Roles(s.db).GetByID(ctx, in.RoleID); err != nil {
		return nil, notFoundAs(err, errUserOrRoleNotFound)
	}

	ur, err := s.repomanager.UserRoles(s.db).Create(ctx, in.UserID, in.RoleID)
	if err != nil {
		return nil, notFoundAs(err, errUserOrRoleNotFound)
	}
	return ur, nil
}

// UserWithRoles returns the user and every role they hold.
func (s *RoleService) UserWithRoles(ctx context.Context, userID int64) (*models.UserWithRoles, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, fmt.Errorf("%w: user not found", common.ErrorNotFound))
	}
	list, err := s.repomanager.Roles(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserWithRoles{User: *user, Roles: list}, nil
}

// notFoundAs replaces a bare not-found error with a more specific one.
func notFoundAs(err, with error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return with
	}
	return err
}
