package violations

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pa-inspections/inspections-engine/pkg/apperrors"
	"github.com/pa-inspections/inspections-engine/pkg/blob"
	"github.com/pa-inspections/inspections-engine/pkg/logging"
)

// Source loads the reference table, preferring the object store copy and
// falling back to the local one.
type Source struct {
	remote    blob.Store // nil when object storage is not configured
	remoteKey string
	local     blob.Store
	localKey  string
	logger    *zap.Logger
}

// NewSource creates a Source. remote may be nil.
func NewSource(remote blob.Store, remoteKey string, local blob.Store, localKey string, logger *zap.Logger) *Source {
	return &Source{
		remote:    remote,
		remoteKey: remoteKey,
		local:     local,
		localKey:  localKey,
		logger:    logger.Named("food_codes"),
	}
}

// Load returns the lookup. It fails with apperrors.ErrNotFound when neither
// copy exists, and with apperrors.ErrMissingColumn when the copy that was
// found lacks required headers.
func (s *Source) Load(ctx context.Context) (Lookup, error) {
	var remoteErr error
	if s.remote != nil {
		lookup, err := s.loadFrom(ctx, s.remote, s.remoteKey)
		if err == nil {
			s.logger.Info("Loaded food codes from object store",
				zap.String("key", s.remoteKey),
				zap.Int("codes", len(lookup)))
			return lookup, nil
		}
		if errors.Is(err, apperrors.ErrMissingColumn) {
			return nil, err
		}
		remoteErr = err
		s.logger.Warn("Food codes unavailable in object store, trying local copy",
			zap.String("key", s.remoteKey),
			zap.String("error", logging.SanitizeError(err)))
	}

	if s.local == nil {
		if remoteErr != nil {
			return nil, remoteErr
		}
		return nil, fmt.Errorf("food codes: %w", apperrors.ErrNotFound)
	}
	lookup, err := s.loadFrom(ctx, s.local, s.localKey)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded food codes from local copy",
		zap.String("key", s.localKey),
		zap.Int("codes", len(lookup)))
	return lookup, nil
}

func (s *Source) loadFrom(ctx context.Context, store blob.Store, key string) (Lookup, error) {
	data, err := blob.ReadAll(ctx, store, key)
	if err != nil {
		return nil, fmt.Errorf("food codes %s: %w", key, err)
	}
	return LoadLookup(bytes.NewReader(data))
}
