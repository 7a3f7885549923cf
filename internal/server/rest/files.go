package rest

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	// multipartOverhead is the body allowance on top of MaxUploadSize for
	// boundaries and the description field.
	multipartOverhead = 1 << 20
	// multipartMemory is kept in memory before parts spill to temp files.
	multipartMemory = 1 << 20

	descriptionField = "description"
)

// upload accepts exactly one file in the "file" field of a multipart form.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	in, closeFn, err := readUpload(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer closeFn()

	f, err := h.Files.Upload(r.Context(), id.UserID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "File uploaded successfully", f)
}

func readUpload(w http.ResponseWriter, r *http.Request) (services.UploadInput, func(), error) {
	var in services.UploadInput

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return in, nil, common.ErrorFileTooLarge
		}
		return in, nil, common.ErrorNoFile
	}
	form := r.MultipartForm
	cleanup := func() { _ = form.RemoveAll() }

	total := 0
	for field, headers := range form.File {
		if field != services.UploadFieldName {
			cleanup()
			return in, nil, common.ErrorUnexpectedField
		}
		total += len(headers)
	}
	switch {
	case total == 0:
		cleanup()
		return in, nil, common.ErrorNoFile
	case total > 1:
		cleanup()
		return in, nil, common.ErrorTooManyFiles
	}

	fh := form.File[services.UploadFieldName][0]
	body, err := fh.Open()
	if err != nil {
		cleanup()
		return in, nil, err
	}

	in = services.UploadInput{
		FieldName:    services.UploadFieldName,
		OriginalName: fh.Filename,
		Mimetype:     fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Body:         body,
	}
	if vals := form.Value[descriptionField]; len(vals) > 0 && vals[0] != "" {
		d := vals[0]
		in.Description = &d
	}
	return in, func() {
		_ = body.Close()
		cleanup()
	}, nil
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	page, err := h.Files.List(r.Context(), r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, page.Data, page.Pagination)
}

// userFiles lists the files uploaded by {userId}, or by the caller when the
// parameter is absent.
func (h *Handler) userFiles(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if chi.URLParam(r, "userId") != "" {
		id, err := pathID(r, "userId")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		userID = id
	} else {
		caller, err := identity(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		userID = caller.UserID
	}

	page, err := h.Files.ListByUser(r.Context(), userID, r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, page.Data, page.Pagination)
}

func (h *Handler) getFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	f, err := h.Files.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, f)
}

func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	f, rc, err := h.Files.Open(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", f.Mimetype)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.OriginalName}))
	if f.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn(r.Context(), "download interrupted", "file_id", id, "error", err)
	}
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Files.Delete(r.Context(), caller.UserID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "File deleted successfully", nil)
}
