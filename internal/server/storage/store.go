// Package storage keeps uploaded payloads. Metadata lives in the database;
// a Store only sees opaque names and the paths it hands back.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/todoapi/internal/common"
)

type Store interface {
	// Put writes r under name and returns the path to persist with the
	// metadata plus the number of bytes written. An existing object with the
	// same name is never overwritten.
	Put(ctx context.Context, name string, r io.Reader) (string, int64, error)
	// Open returns the payload at path, or common.ErrorNotFound.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Remove deletes the payload at path. A missing payload is not an error.
	Remove(ctx context.Context, path string) error
}

func checkName(name string) error {
	if name == "" || name == "." || filepath.Base(name) != name {
		return fmt.Errorf("%w: bad object name %q", common.ErrorValidation, name)
	}
	return nil
}
