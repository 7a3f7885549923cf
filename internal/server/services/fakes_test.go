package services

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/files"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/roles"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/todos"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/userroles"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// memDB is an in-memory stand-in for the PostgreSQL repositories. All fake
// repositories share it, whatever DBTX they are bound to.
type memDB struct {
	mu        sync.Mutex
	seq       int64
	users     map[int64]models.User
	todos     map[int64]models.Todo
	roles     map[int64]models.Role
	userRoles []models.UserRole
	files     map[int64]models.File

	// failures injected by tests
	listErr       error
	fileCreateErr error
}

func newMemDB() *memDB {
	return &memDB{
		users: map[int64]models.User{},
		todos: map[int64]models.Todo{},
		roles: map[int64]models.Role{},
		files: map[int64]models.File{},
	}
}

func (m *memDB) nextID() int64 {
	m.seq++
	return m.seq
}

type fakeManager struct {
	mem *memDB
}

func (f *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeManager) Users(dbx.DBTX) users.Repository             { return &fakeUsers{f.mem} }
func (f *fakeManager) Todos(dbx.DBTX) todos.Repository             { return &fakeTodos{f.mem} }
func (f *fakeManager) Roles(dbx.DBTX) roles.Repository             { return &fakeRoles{f.mem} }
func (f *fakeManager) UserRoles(dbx.DBTX) userroles.Repository     { return &fakeUserRoles{f.mem} }
func (f *fakeManager) Files(dbx.DBTX) files.Repository             { return &fakeFiles{f.mem} }

// --- users ---

type fakeUsers struct{ m *memDB }

func (r *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	u.ID = r.m.nextID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.m.users[u.ID] = *u
	return u, nil
}

func (r *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsers) Update(ctx context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	u.UpdatedAt = time.Now()
	r.m.users[u.ID] = *u
	return u, nil
}

func (r *fakeUsers) Delete(ctx context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return common.ErrorNotFound
	}
	for _, f := range r.m.files {
		if f.UploadedBy == id {
			return common.ErrorConflict
		}
	}
	delete(r.m.users, id)
	for tid, t := range r.m.todos {
		if t.UserID == id {
			delete(r.m.todos, tid)
		}
	}
	return nil
}

func (r *fakeUsers) List(ctx context.Context, spec *query.Spec) (*query.Page, error) {
	if r.m.listErr != nil {
		return nil, r.m.listErr
	}
	return &query.Page{Data: []*query.Record{}, Pagination: query.NewPagination(spec.Page, spec.Limit, 0)}, nil
}

// --- todos ---

type fakeTodos struct{ m *memDB }

func (r *fakeTodos) Create(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[t.UserID]; !ok {
		return nil, common.ErrorValidation
	}
	t.ID = r.m.nextID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.m.todos[t.ID] = *t
	return t, nil
}

func (r *fakeTodos) GetByID(ctx context.Context, id int64) (*models.Todo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.todos[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := r.m.users[t.UserID]
	t.User = &models.UserRef{ID: u.ID, Name: u.Name}
	return &t, nil
}

func (r *fakeTodos) Update(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.todos[t.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := r.m.users[t.UserID]; !ok {
		return nil, common.ErrorValidation
	}
	stored := *t
	stored.User = nil
	r.m.todos[t.ID] = stored
	return t, nil
}

func (r *fakeTodos) Delete(ctx context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.todos[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.todos, id)
	return nil
}

func (r *fakeTodos) List(ctx context.Context, spec *query.Spec) (*query.Page, error) {
	if r.m.listErr != nil {
		return nil, r.m.listErr
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	data := make([]*query.Record, 0)
	for _, t := range r.m.todos {
		rec := query.NewRecord()
		rec.Set("id", t.ID)
		rec.Set("title", t.Title)
		data = append(data, rec)
	}
	return &query.Page{Data: data, Pagination: query.NewPagination(spec.Page, spec.Limit, int64(len(data)))}, nil
}

// ListByUser supports sorting by title and id; anything else sorts by id.
func (r *fakeTodos) ListByUser(ctx context.Context, userID int64, sortBy query.Field, order string) ([]models.Todo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.Todo, 0)
	for _, t := range r.m.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	less := func(i, j int) bool { return out[i].ID < out[j].ID }
	if sortBy.Column == "title" {
		less = func(i, j int) bool { return out[i].Title < out[j].Title }
	}
	sort.Slice(out, func(i, j int) bool {
		if order == query.OrderDesc {
			return less(j, i)
		}
		return less(i, j)
	})
	return out, nil
}

// --- roles ---

type fakeRoles struct{ m *memDB }

func (r *fakeRoles) Create(ctx context.Context, role *models.Role) (*models.Role, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	role.ID = r.m.nextID()
	r.m.roles[role.ID] = *role
	return role, nil
}

func (r *fakeRoles) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	role, ok := r.m.roles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &role, nil
}

func (r *fakeRoles) GetByName(ctx context.Context, name string) (*models.Role, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, role := range r.m.roles {
		if role.Name == name {
			return &role, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeRoles) List(ctx context.Context, spec *query.Spec) (*query.Page, error) {
	return &query.Page{Data: []*query.Record{}, Pagination: query.NewPagination(spec.Page, spec.Limit, 0)}, nil
}

func (r *fakeRoles) ListByUser(ctx context.Context, userID int64) ([]models.Role, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.Role, 0)
	for _, ur := range r.m.userRoles {
		if ur.UserID == userID {
			out = append(out, r.m.roles[ur.RoleID])
		}
	}
	return out, nil
}

type fakeUserRoles struct{ m *memDB }

func (r *fakeUserRoles) Create(ctx context.Context, userID, roleID int64) (*models.UserRole, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, ur := range r.m.userRoles {
		if ur.UserID == userID && ur.RoleID == roleID {
			return nil, common.ErrorConflict
		}
	}
	ur := models.UserRole{ID: r.m.nextID(), UserID: userID, RoleID: roleID}
	r.m.userRoles = append(r.m.userRoles, ur)
	return &ur, nil
}

// --- files ---

type fakeFiles struct{ m *memDB }

func (r *fakeFiles) Create(ctx context.Context, f *models.File) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.fileCreateErr != nil {
		return nil, r.m.fileCreateErr
	}
	f.ID = r.m.nextID()
	r.m.files[f.ID] = *f
	return f, nil
}

func (r *fakeFiles) GetByID(ctx context.Context, id int64) (*models.File, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := r.m.users[f.UploadedBy]
	f.Uploader = &models.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	return &f, nil
}

func (r *fakeFiles) Delete(ctx context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.files, id)
	return nil
}

func (r *fakeFiles) List(ctx context.Context, limit, offset int) ([]models.File, int64, error) {
	return r.page(func(models.File) bool { return true }, limit, offset)
}

func (r *fakeFiles) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.File, int64, error) {
	return r.page(func(f models.File) bool { return f.UploadedBy == userID }, limit, offset)
}

func (r *fakeFiles) page(keep func(models.File) bool, limit, offset int) ([]models.File, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	all := make([]models.File, 0)
	for _, f := range r.m.files {
		if keep(f) {
			all = append(all, f)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// memStore is an in-memory storage.Store.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (s *memStore) Put(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if s.putErr != nil {
		return "", 0, s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := "mem/" + name
	s.objects[path] = b
	return path, int64(len(b)), nil
}

func (s *memStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[path]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return io.NopCloser(strings.NewReader(string(b))), nil
}

func (s *memStore) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// newMockDB returns a *sql.DB for services that open transactions. The
// repositories ignore it; tests only set Begin/Commit/Rollback expectations.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}
