// Package jsonfile stores a flight database as an indented JSON array, on the
// local filesystem or in an S3 bucket when the location is s3://bucket/key.
package jsonfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"flightdb/internal/blob"
	blobfs "flightdb/internal/blob/fs"
	blobs3 "flightdb/internal/blob/s3"
	"flightdb/internal/flight"
	"flightdb/internal/storage"
)

// Kind is the storage kind this package registers.
const Kind = "json"

// newS3Store is a test hook for the S3 store constructor.
var newS3Store = func(ctx context.Context, bucket string) (blob.Store, error) {
	return blobs3.New(ctx, blobs3.ConfigFromEnv(bucket))
}

// Repository reads and writes one JSON document.
type Repository struct {
	store    blob.Store
	key      string
	location string
	log      *zap.Logger
}

// NewRepository resolves location to a blob store and key.
func NewRepository(ctx context.Context, location string, log *zap.Logger) (*Repository, error) {
	if location == "" {
		return nil, fmt.Errorf("json: database location must not be empty")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if bucket, key, ok := blobs3.ParseLocation(location); ok {
		st, err := newS3Store(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
		return &Repository{store: st, key: key, location: location, log: log}, nil
	}
	dir, name := filepath.Split(filepath.Clean(location))
	return &Repository{store: blobfs.New(dir), key: name, location: location, log: log}, nil
}

// Save writes db, replacing any previous content.
func (r *Repository) Save(ctx context.Context, db flight.Database) error {
	var buf bytes.Buffer
	if err := flight.WriteJSON(&buf, db); err != nil {
		return fmt.Errorf("json: encode: %w", err)
	}
	if err := r.store.Put(ctx, r.key, &buf, blob.PutOptions{ContentType: "application/json"}); err != nil {
		return fmt.Errorf("json: write %s: %w", r.location, err)
	}
	r.log.Debug("json database written",
		zap.String("location", r.location),
		zap.String("driver", string(r.store.Driver())),
		zap.Int("records", len(db)),
	)
	return nil
}

// Load reads and checks the stored database.
func (r *Repository) Load(ctx context.Context) (flight.Database, error) {
	rc, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, r.location)
		}
		return nil, fmt.Errorf("json: open %s: %w", r.location, err)
	}
	defer rc.Close()

	db, err := flight.ReadJSON(rc)
	if err != nil {
		return nil, fmt.Errorf("json: %s: %w", r.location, err)
	}
	return db, nil
}

// Close is a no-op; the stores hold no open handles between calls.
func (r *Repository) Close() {}

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN, cfg.Logger)
	})
}
