// Package datasource abstracts where flight-schedule input comes from.
package datasource

import (
	"context"
	"io"
)

// Source is one readable input. Name identifies it in rejection logs and
// error messages.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}
