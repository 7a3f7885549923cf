// Package rest exposes the todoapi services over HTTP using chi.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/auth"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
	"github.com/dmitrijs2005/todoapi/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody caps request bodies of non-upload endpoints.
const maxJSONBody = 1 << 20

type AuthService interface {
	TokenVerifier
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type TodoService interface {
	List(ctx context.Context, values url.Values) (*query.Page, error)
	Create(ctx context.Context, in services.CreateTodoInput) (*models.Todo, error)
	Get(ctx context.Context, id int64) (*models.Todo, error)
	Update(ctx context.Context, id int64, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id int64) error
}

type UserService interface {
	List(ctx context.Context, values url.Values) (*query.Page, error)
	Create(ctx context.Context, in services.RegisterInput) (*models.User, error)
	GetWithTodos(ctx context.Context, id int64, sortBy, sortOrder string) (*models.UserWithTodos, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type RoleService interface {
	List(ctx context.Context, values url.Values) (*query.Page, error)
	Create(ctx context.Context, in services.CreateRoleInput) (*models.Role, error)
	Assign(ctx context.Context, in services.AssignRoleInput) (*models.UserRole, error)
	UserWithRoles(ctx context.Context, userID int64) (*models.UserWithRoles, error)
}

type FileService interface {
	Upload(ctx context.Context, uploaderID int64, in services.UploadInput) (*models.File, error)
	Delete(ctx context.Context, requesterID, id int64) error
	Get(ctx context.Context, id int64) (*models.File, error)
	Open(ctx context.Context, id int64) (*models.File, io.ReadCloser, error)
	List(ctx context.Context, values url.Values) (*services.FilePage, error)
	ListByUser(ctx context.Context, userID int64, values url.Values) (*services.FilePage, error)
}

// Services groups the business services served by the router.
type Services struct {
	Auth  AuthService
	Todos TodoService
	Users UserService
	Roles RoleService
	Files FileService
}

// Handler holds the HTTP handlers of the API.
type Handler struct {
	Services
	logger logging.Logger
}

func NewHandler(s Services, logger logging.Logger) *Handler {
	return &Handler{Services: s, logger: logger}
}

// fail writes the error response for err. Internal errors are logged and
// never leaked to the caller.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"error", err,
		)
	}
	writeError(w, status, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return fmt.Errorf("%w: request body too large", common.ErrorValidation)
		}
		return fmt.Errorf("%w: invalid JSON body", common.ErrorValidation)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", common.ErrorValidation, name)
	}
	return id, nil
}

func identity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, common.ErrorUnauthorized
	}
	return id, nil
}
