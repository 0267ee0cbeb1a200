// Package file implements local filesystem sources: a single schedule file or
// every matching file of a directory.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a source backed by one file on the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path. The file is not touched until Open.
func NewLocal(path string) *Local { return &Local{path: path} }

// Name returns the path the source was created with.
func (l *Local) Name() string { return l.path }

// Open opens the file for reading. A context that is already done is reported
// without touching the filesystem. Filesystem errors are wrapped with the
// path and still match os.ErrNotExist and friends via errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	return f, nil
}
