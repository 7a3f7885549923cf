package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/dmitrijs2005/todoapi/internal/server/auth"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
	"github.com/dmitrijs2005/todoapi/internal/server/services"
)

var testSecret = []byte("test-secret")

// stubAuth keeps users in memory and issues real tokens.
type stubAuth struct {
	mu     sync.Mutex
	users  map[string]models.User
	nextID int64
}

func newStubAuth() *stubAuth {
	return &stubAuth{users: map[string]models.User{}}
}

func (s *stubAuth) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: All fields are required.", common.ErrorValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[in.Email]; ok {
		return nil, fmt.Errorf("%w: Email already in use.", common.ErrorConflict)
	}
	s.nextID++
	u := models.User{ID: s.nextID, Name: in.Name, Email: in.Email, Password: in.Password}
	s.users[in.Email] = u
	return &u, nil
}

func (s *stubAuth) Login(_ context.Context, email, password string) (string, error) {
	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()
	if !ok || u.Password != password {
		return "", common.ErrorInvalidCredentials
	}
	return auth.GenerateToken(auth.Identity{UserID: u.ID, Email: u.Email}, testSecret, time.Hour)
}

func (s *stubAuth) VerifyToken(token string) (*auth.Identity, error) {
	c, err := auth.ParseToken(token, testSecret)
	if err != nil {
		return nil, err
	}
	id := c.Identity()
	return &id, nil
}

// stubTodos is an in-memory TodoService.
type stubTodos struct {
	mu     sync.Mutex
	items  map[int64]models.Todo
	nextID int64
	page   *query.Page
	err    error
}

func newStubTodos() *stubTodos {
	return &stubTodos{items: map[int64]models.Todo{}}
}

func (s *stubTodos) List(_ context.Context, _ url.Values) (*query.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.page != nil {
		return s.page, nil
	}
	return &query.Page{Pagination: query.NewPagination(1, 5, 0)}, nil
}

func (s *stubTodos) Create(_ context.Context, in services.CreateTodoInput) (*models.Todo, error) {
	if in.Title == "" || in.UserID == 0 {
		return nil, fmt.Errorf("%w: title and userId are required", common.ErrorValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := models.Todo{ID: s.nextID, Title: in.Title, Description: in.Description, Completed: in.Completed, UserID: in.UserID}
	s.items[t.ID] = t
	return &t, nil
}

func (s *stubTodos) Get(_ context.Context, id int64) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: todo not found", common.ErrorNotFound)
	}
	return &t, nil
}

func (s *stubTodos) Update(_ context.Context, id int64, patch models.TodoPatch) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: todo not found", common.ErrorNotFound)
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	s.items[id] = t
	return &t, nil
}

func (s *stubTodos) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: todo not found", common.ErrorNotFound)
	}
	delete(s.items, id)
	return nil
}

// The remaining stubs embed the interface; calling a method that was not
// overridden panics and surfaces as a 500.
type stubUsers struct {
	UserService
	getWithTodos func(id int64, sortBy, sortOrder string) (*models.UserWithTodos, error)
	del          func(id int64) error
}

func (s *stubUsers) GetWithTodos(_ context.Context, id int64, sortBy, sortOrder string) (*models.UserWithTodos, error) {
	return s.getWithTodos(id, sortBy, sortOrder)
}

func (s *stubUsers) Delete(_ context.Context, id int64) error {
	return s.del(id)
}

type stubRoles struct {
	RoleService
	assign func(in services.AssignRoleInput) (*models.UserRole, error)
}

func (s *stubRoles) Assign(_ context.Context, in services.AssignRoleInput) (*models.UserRole, error) {
	return s.assign(in)
}

type uploaded struct {
	uploaderID int64
	in         services.UploadInput
	body       []byte
}

type stubFiles struct {
	FileService
	uploads    []uploaded
	uploadErr  error
	files      map[int64]models.File
	content    map[int64]string
	deleted    []int64
	deleteErr  error
	listedUser int64
}

func newStubFiles() *stubFiles {
	return &stubFiles{files: map[int64]models.File{}, content: map[int64]string{}}
}

func (s *stubFiles) Upload(_ context.Context, uploaderID int64, in services.UploadInput) (*models.File, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	s.uploads = append(s.uploads, uploaded{uploaderID: uploaderID, in: in, body: body})
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &models.File{ID: 1, Filename: "file-1-abc.txt", OriginalName: in.OriginalName, Mimetype: in.Mimetype, Size: int64(len(body)), UploadedBy: uploaderID}, nil
}

func (s *stubFiles) Get(_ context.Context, id int64) (*models.File, error) {
	f, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: file not found", common.ErrorNotFound)
	}
	return &f, nil
}

func (s *stubFiles) Open(ctx context.Context, id int64) (*models.File, io.ReadCloser, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return f, io.NopCloser(bytes.NewBufferString(s.content[id])), nil
}

func (s *stubFiles) Delete(_ context.Context, requesterID, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	f, ok := s.files[id]
	if !ok {
		return fmt.Errorf("%w: file not found", common.ErrorNotFound)
	}
	if f.UploadedBy != requesterID {
		return fmt.Errorf("%w: access denied", common.ErrorForbidden)
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubFiles) ListByUser(_ context.Context, userID int64, values url.Values) (*services.FilePage, error) {
	s.listedUser = userID
	var out []models.File
	for _, f := range s.files {
		if f.UploadedBy == userID {
			out = append(out, f)
		}
	}
	page, limit := query.ParsePage(values, 10)
	return &services.FilePage{Data: out, Pagination: query.NewPagination(page, limit, int64(len(out)))}, nil
}

type okPinger struct{ err error }

func (p okPinger) PingContext(context.Context) error { return p.err }

type testAPI struct {
	router http.Handler
	auth   *stubAuth
	todos  *stubTodos
	users  *stubUsers
	roles  *stubRoles
	files  *stubFiles
	logs   *bytes.Buffer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		auth:  newStubAuth(),
		todos: newStubTodos(),
		users: &stubUsers{},
		roles: &stubRoles{},
		files: newStubFiles(),
		logs:  &bytes.Buffer{},
	}
	logger := logging.NewJSONLogger(api.logs, "debug")
	h := NewHandler(Services{
		Auth:  api.auth,
		Todos: api.todos,
		Users: api.users,
		Roles: api.roles,
		Files: api.files,
	}, logger)
	api.router = NewRouter(h, NewHealthHandler(okPinger{}, logger), logger)
	return api
}

func (a *testAPI) do(t *testing.T, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, userID int64, email string) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Identity{UserID: userID, Email: email}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}
