package categories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/blob"
	"github.com/pa-inspections/inspections-engine/pkg/logging"
)

// Copy identifies which copy of the store an operation touched.
type Copy string

const (
	CopyRemote Copy = "remote"
	CopyLocal  Copy = "local"
)

// LoadResult describes a successful load. RemoteErr is set when the local
// copy was used because the remote one could not be read.
type LoadResult struct {
	Source    Copy
	Key       string
	Entries   int
	RemoteErr error
}

// SaveResult describes a save. Degraded is set when only the local copy was
// written: object storage is not configured, the remote write failed, or the
// last load could not read the remote copy.
type SaveResult struct {
	LocalKey      string
	RemoteKey     string
	RemoteWritten bool
	Degraded      bool
	Entries       int
}

// StoreLoadError is returned when a copy of the store exists or may exist
// but could not be read, and no fallback succeeded.
type StoreLoadError struct {
	Source Copy
	Key    string
	Err    error
}

func (e *StoreLoadError) Error() string {
	return fmt.Sprintf("load %s categories %s: %v", e.Source, e.Key, e.Err)
}

func (e *StoreLoadError) Unwrap() error { return e.Err }

// Repository persists the category store.
type Repository interface {
	// Load returns the store. It fails with apperrors.ErrNotFound when no copy
	// exists and with *StoreLoadError when a copy could not be read.
	Load(ctx context.Context) (*Store, LoadResult, error)

	// Save writes the sorted store to the local copy, then to the remote one.
	// The remote copy is left alone while the last Load could not read it.
	// Only a local failure is an error.
	Save(ctx context.Context, store *Store) (SaveResult, error)
}

type blobRepository struct {
	remote    blob.Store
	remoteKey string
	local     blob.Store
	localKey  string
	logger    *zap.Logger

	remoteUnread atomic.Bool
}

// NewRepository creates a Repository. remote may be nil when object storage
// is not configured; local is required.
func NewRepository(remote blob.Store, remoteKey string, local blob.Store, localKey string, logger *zap.Logger) Repository {
	return &blobRepository{
		remote:    remote,
		remoteKey: remoteKey,
		local:     local,
		localKey:  localKey,
		logger:    logger.Named("categories"),
	}
}

var _ Repository = (*blobRepository)(nil)

func (r *blobRepository) Load(ctx context.Context) (*Store, LoadResult, error) {
	var remoteFailure *StoreLoadError

	if r.remote != nil {
		store, n, err := r.loadCopy(ctx, r.remote, r.remoteKey)
		r.remoteUnread.Store(err != nil && !blob.IsNotFound(err))
		switch {
		case err == nil:
			r.logger.Info("Loaded categories from object store",
				zap.String("key", r.remoteKey),
				zap.Int("entries", n))
			return store, LoadResult{Source: CopyRemote, Key: r.remoteKey, Entries: n}, nil
		case blob.IsNotFound(err):
			r.logger.Info("No categories in object store, looking for local copy",
				zap.String("key", r.remoteKey))
		default:
			remoteFailure = &StoreLoadError{Source: CopyRemote, Key: r.remoteKey, Err: err}
			r.logger.Warn("Failed to read categories from object store, looking for local copy",
				zap.String("key", r.remoteKey),
				zap.String("error", logging.SanitizeError(err)))
		}
	}

	store, n, err := r.loadCopy(ctx, r.local, r.localKey)
	switch {
	case err == nil:
		r.logger.Info("Loaded local categories",
			zap.String("key", r.localKey),
			zap.Int("entries", n))
		res := LoadResult{Source: CopyLocal, Key: r.localKey, Entries: n}
		if remoteFailure != nil {
			res.RemoteErr = remoteFailure
		}
		return store, res, nil
	case blob.IsNotFound(err):
		if remoteFailure != nil {
			return nil, LoadResult{}, remoteFailure
		}
		return nil, LoadResult{}, fmt.Errorf("categories: %w", apperrors.ErrNotFound)
	default:
		return nil, LoadResult{}, &StoreLoadError{Source: CopyLocal, Key: r.localKey, Err: err}
	}
}

func (r *blobRepository) loadCopy(ctx context.Context, store blob.Store, key string) (*Store, int, error) {
	data, err := blob.ReadAll(ctx, store, key)
	if err != nil {
		return nil, 0, err
	}
	entries, err := ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	s := NewStore(entries)
	return s, s.Len(), nil
}

func (r *blobRepository) Save(ctx context.Context, store *Store) (SaveResult, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, store.Sorted()); err != nil {
		return SaveResult{}, fmt.Errorf("encode categories: %w", err)
	}
	data := buf.Bytes()
	opts := blob.PutOptions{ContentType: "text/csv"}

	result := SaveResult{LocalKey: r.localKey, Entries: store.Len()}
	if _, err := r.local.Put(ctx, r.localKey, bytes.NewReader(data), opts); err != nil {
		return SaveResult{}, fmt.Errorf("write local categories %s: %w", r.localKey, err)
	}

	if r.remote == nil {
		result.Degraded = true
		r.logger.Warn("Object storage not configured, wrote local categories only",
			zap.String("key", r.localKey),
			zap.Int("entries", result.Entries))
		return result, nil
	}

	if r.remoteUnread.Load() {
		result.Degraded = true
		r.logger.Warn("Categories in object store were unreadable, wrote local categories only",
			zap.String("key", r.remoteKey),
			zap.Int("entries", result.Entries))
		return result, nil
	}

	if _, err := r.remote.Put(ctx, r.remoteKey, bytes.NewReader(data), opts); err != nil {
		result.Degraded = true
		r.logger.Warn("Failed to upload categories, local copy is current",
			zap.String("key", r.remoteKey),
			zap.String("error", logging.SanitizeError(err)))
		return result, nil
	}
	result.RemoteKey = r.remoteKey
	result.RemoteWritten = true
	r.logger.Info("Saved categories",
		zap.String("local_key", r.localKey),
		zap.String("remote_key", r.remoteKey),
		zap.Int("entries", result.Entries))
	return result, nil
}

// IsLoadFailure reports whether err came from an unreadable store copy as
// opposed to a missing one.
func IsLoadFailure(err error) bool {
	var loadErr *StoreLoadError
	return errors.As(err, &loadErr)
}
