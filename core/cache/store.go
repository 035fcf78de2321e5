// Package cache provides the local, content-addressed store of preview
// responses. The store is best-effort: every I/O fault degrades to a miss or a
// skipped write and is never returned to the caller.
package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"arm-cost/core/fingerprint"
	"arm-cost/core/types"
	"arm-cost/internal/logging"
)

// SchemaVersion is the envelope layout version. Entries with another version
// are treated as misses.
const SchemaVersion = 1

// Envelope is the on-disk form of a cached preview
type Envelope struct {
	SchemaVersion int                    `json:"schemaVersion"`
	Fingerprint   string                 `json:"fingerprint"`
	CreatedAt     time.Time              `json:"createdAt"`
	Response      *types.PreviewResponse `json:"response"`
}

// Store is a file-per-fingerprint preview cache
type Store struct {
	dir     string
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store rooted at dir. A disabled store always misses and
// never writes.
func New(dir string, enabled bool, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		dir:     dir,
		enabled: enabled && dir != "",
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether lookups can ever hit
func (s *Store) Enabled() bool {
	return s != nil && s.enabled
}

// Dir returns the cache directory
func (s *Store) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

func (s *Store) path(fp fingerprint.Fingerprint) string {
	return filepath.Join(s.dir, fp.String()+".json")
}

// Get returns the cached preview for fp
func (s *Store) Get(fp fingerprint.Fingerprint) (*types.PreviewResponse, bool) {
	if !s.Enabled() {
		if s != nil {
			s.logger.Info("cache disabled", logging.Fingerprint(fp.Short()))
		}
		return nil, false
	}

	data, err := os.ReadFile(s.path(fp))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache read failed", logging.Fingerprint(fp.Short()), zap.Error(err))
		}
		s.logger.Info("cache miss", logging.Fingerprint(fp.Short()))
		return nil, false
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("cache entry corrupt", logging.Fingerprint(fp.Short()), zap.Error(err))
		return nil, false
	}

	if env.SchemaVersion != SchemaVersion || env.Fingerprint != fp.String() || env.Response == nil {
		s.logger.Info("cache entry stale",
			logging.Fingerprint(fp.Short()),
			zap.Int("schema_version", env.SchemaVersion),
		)
		return nil, false
	}

	s.logger.Info("cache hit",
		logging.Fingerprint(fp.Short()),
		zap.Time("created_at", env.CreatedAt),
	)
	return env.Response, true
}

// Put writes resp under fp and reports whether the write happened.
// The file is written to a temporary name and renamed into place, so a
// concurrent reader sees either the old entry or the new one.
func (s *Store) Put(fp fingerprint.Fingerprint, resp *types.PreviewResponse) bool {
	if !s.Enabled() || resp == nil {
		return false
	}

	data, err := json.Marshal(Envelope{
		SchemaVersion: SchemaVersion,
		Fingerprint:   fp.String(),
		CreatedAt:     s.now().UTC(),
		Response:      resp,
	})
	if err != nil {
		s.logger.Warn("cache write skipped", logging.Fingerprint(fp.Short()), zap.Error(err))
		return false
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Warn("cache write skipped", logging.Fingerprint(fp.Short()), zap.Error(err))
		return false
	}

	tmp, err := os.CreateTemp(s.dir, fp.Short()+"-*.tmp")
	if err != nil {
		s.logger.Warn("cache write skipped", logging.Fingerprint(fp.Short()), zap.Error(err))
		return false
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmpName, s.path(fp))
	}
	if werr != nil {
		os.Remove(tmpName)
		s.logger.Warn("cache write skipped", logging.Fingerprint(fp.Short()), zap.Error(werr))
		return false
	}

	s.logger.Debug("cache entry written", logging.Fingerprint(fp.Short()))
	return true
}

// Remove deletes the entry for fp, if any
func (s *Store) Remove(fp fingerprint.Fingerprint) error {
	if s == nil || s.dir == "" {
		return nil
	}
	if err := os.Remove(s.path(fp)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
