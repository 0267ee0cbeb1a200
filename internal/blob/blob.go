// Package blob defines the minimal object-store surface the JSON database
// backend writes through: whole-object get and put by key.
package blob

import (
	"context"
	"errors"
	"io"
)

// Driver identifies a concrete store implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// ErrNotFound is returned (wrapped) by Get when the key does not exist.
var ErrNotFound = errors.New("blob: not found")

// PutOptions carries optional object attributes.
type PutOptions struct {
	ContentType string
}

// Store reads and replaces whole objects. Put overwrites an existing key.
type Store interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) error
	Driver() Driver
}
