package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/query"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todoapi/internal/server/storage"
)

const (
	// UploadFieldName is the only multipart field accepted by Upload.
	UploadFieldName = "file"
	// MaxUploadSize is the largest accepted payload, in bytes.
	MaxUploadSize int64 = 10 << 20

	filesDefaultLimit = 10
)

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	"image/webp":         {},
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"text/plain": {},
}

// UploadInput is one received file. Size is the size declared by the client,
// or a negative value when unknown.
type UploadInput struct {
	FieldName    string
	OriginalName string
	Mimetype     string
	Size         int64
	Body         io.Reader
	Description  *string
}

type FilePage struct {
	Data       []models.File
	Pagination query.Pagination
}

// seams for tests
var (
	timeNow      = time.Now
	randomSuffix = common.RandomSuffix
)

// FileService runs the upload pipeline and owner-gated file operations.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.Store
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store storage.Store) *FileService {
	return &FileService{db: db, repomanager: m, store: store}
}

// Upload validates in, stores its bytes under a generated name and records
// the metadata with uploaderID as owner.
func (s *FileService) Upload(ctx context.Context, uploaderID int64, in UploadInput) (*models.File, error) {
	f, err := s.upload(ctx, uploaderID, in)
	switch {
	case err == nil:
		uploadsTotal.WithLabelValues(uploadAccepted).Inc()
		uploadBytesTotal.Add(float64(f.Size))
	case errors.Is(err, common.ErrorValidation) || common.IsUploadError(err):
		uploadsTotal.WithLabelValues(uploadRejected).Inc()
	default:
		uploadsTotal.WithLabelValues(uploadFailed).Inc()
	}
	return f, err
}

func (s *FileService) upload(ctx context.Context, uploaderID int64, in UploadInput) (*models.File, error) {
	if in.Body == nil {
		return nil, common.ErrorNoFile
	}
	if in.FieldName != UploadFieldName {
		return nil, fmt.Errorf("%w: %q", common.ErrorUnexpectedField, in.FieldName)
	}
	mimetype := normalizeMimetype(in.Mimetype)
	if _, ok := allowedMimeTypes[mimetype]; !ok {
		return nil, fmt.Errorf("%w: %q; only images, PDFs, documents and text files are allowed",
			common.ErrorInvalidFileType, in.Mimetype)
	}
	if in.Size > MaxUploadSize {
		return nil, common.ErrorFileTooLarge
	}

	name, err := storageName(in.FieldName, in.OriginalName)
	if err != nil {
		return nil, err
	}

	// Read one byte past the limit to detect bodies larger than declared.
	path, n, err := s.store.Put(ctx, name, io.LimitReader(in.Body, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", name, err)
	}
	if n > MaxUploadSize {
		return nil, errors.Join(common.ErrorFileTooLarge, s.store.Remove(ctx, path))
	}

	file := &models.File{
		Filename:     name,
		OriginalName: in.OriginalName,
		Mimetype:     mimetype,
		Size:         n,
		Path:         path,
		UploadedBy:   uploaderID,
		Description:  in.Description,
	}
	if _, err := s.repomanager.Files(s.db).Create(ctx, file); err != nil {
		return nil, errors.Join(err, s.store.Remove(ctx, path))
	}
	return file, nil
}

// storageName builds "{field}-{unix ms}-{random}{ext}".
func storageName(field, originalName string) (string, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	ext := filepath.Ext(filepath.Base(strings.ReplaceAll(originalName, `\`, "/")))
	return fmt.Sprintf("%s-%d-%d%s", field, timeNow().UnixMilli(), suffix, ext), nil
}

func normalizeMimetype(s string) string {
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Delete removes the payload and then the metadata of file id. Only the
// uploader may delete a file. A payload that is already gone is ignored.
func (s *FileService) Delete(ctx context.Context, requesterID, id int64) error {
	repo := s.repomanager.Files(s.db)

	f, err := repo.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, errFileNotFound)
	}
	if f.UploadedBy != requesterID {
		return fmt.Errorf("%w: access denied", common.ErrorForbidden)
	}
	if err := s.store.Remove(ctx, f.Path); err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return nil
}

var errFileNotFound = fmt.Errorf("%w: file not found", common.ErrorNotFound)

func (s *FileService) Get(ctx context.Context, id int64) (*models.File, error) {
	f, err := s.repomanager.Files(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, errFileNotFound)
	}
	return f, nil
}

// Open returns the metadata and the payload of file id. The caller closes
// the reader.
func (s *FileService) Open(ctx context.Context, id int64) (*models.File, io.ReadCloser, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, f.Path)
	if err != nil {
		return nil, nil, notFoundAs(err, fmt.Errorf("%w: file not found on server", common.ErrorNotFound))
	}
	return f, rc, nil
}

// List returns one page of all files, newest first.
func (s *FileService) List(ctx context.Context, values url.Values) (*FilePage, error) {
	page, limit := query.ParsePage(values, filesDefaultLimit)
	list, total, err := s.repomanager.Files(s.db).List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &FilePage{Data: list, Pagination: query.NewPagination(page, limit, total)}, nil
}

// ListByUser returns one page of the files uploaded by userID, newest first.
func (s *FileService) ListByUser(ctx context.Context, userID int64, values url.Values) (*FilePage, error) {
	page, limit := query.ParsePage(values, filesDefaultLimit)
	list, total, err := s.repomanager.Files(s.db).ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &FilePage{Data: list, Pagination: query.NewPagination(page, limit, total)}, nil
}
