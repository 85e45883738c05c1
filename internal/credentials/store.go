package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/taskbridge/internal/logging"
)

// Store loads and saves the single credential record.
type Store struct {
	backend Backend
	logger  *slog.Logger
	// mu serializes read-merge-write cycles within this process. It does not
	// coordinate with other processes writing the same backend.
	mu sync.Mutex
}

// NewStore creates a Store on top of backend. If logger is nil, slog.Default() is used.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logging.WithService(logger, "credentials"),
	}
}

// Location describes where the credential is stored.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Load returns the stored credential. It never fails: a missing record and an
// unreadable or corrupt one both report ok=false, the latter after logging.
func (s *Store) Load(ctx context.Context) (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) (Credential, bool) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		return Credential{}, false
	}
	if err != nil {
		s.logger.Warn("failed to read stored credential",
			slog.String("location", s.backend.Location()), logging.Err(err))
		return Credential{}, false
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		s.logger.Warn("stored credential is corrupt, ignoring it",
			slog.String("location", s.backend.Location()), logging.Err(err))
		return Credential{}, false
	}
	if cred.IsZero() {
		s.logger.Warn("stored credential is empty, ignoring it",
			slog.String("location", s.backend.Location()))
		return Credential{}, false
	}
	return cred, true
}

// Save merges candidate over the stored credential (or an empty one), writes
// the result and returns it so the caller can adopt it as current.
func (s *Store) Save(ctx context.Context, candidate Credential) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, _ := s.loadLocked(ctx)
	merged := Merge(prev, candidate)

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return Credential{}, fmt.Errorf("failed to encode credential: %w", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return Credential{}, fmt.Errorf("failed to write credential to %s: %w", s.backend.Location(), err)
	}

	s.logger.Debug("credential saved",
		slog.String("location", s.backend.Location()),
		slog.Bool("has_refresh_token", merged.HasRefreshToken()),
		slog.Time("expiry", merged.Expiry()))
	return merged, nil
}
