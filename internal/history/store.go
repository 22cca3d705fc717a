package history

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptofolio/internal/models"
	"cryptofolio/internal/repository"
)

// Store keeps the rolling window of performance snapshots in memory and
// mirrors every change to the repository. Memory is authoritative:
// mirror failures are logged and the window stands.
type Store struct {
	Repo   repository.Repository
	Logger *zap.Logger

	// MaxEntries caps the window by count, MaxAge by snapshot age.
	// Zero or negative values fall back to 1000 entries and 90 days.
	MaxEntries int
	MaxAge     time.Duration

	mu      sync.Mutex
	entries []models.Snapshot
}

// Load replaces the window with the most recent stored snapshots,
// oldest first. The store stays usable when the read fails.
func (s *Store) Load(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	entries, err := s.Repo.RecentSnapshots(ctx, s.maxEntries())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Append records one snapshot and prunes the window. The count cap runs
// first, then the age filter; a snapshot sitting exactly at the cutoff
// age is dropped.
func (s *Store) Append(ctx context.Context, snap *models.Snapshot) {
	if s == nil || snap == nil {
		return
	}
	cutoff := time.Now().UTC().Add(-s.maxAge())

	s.mu.Lock()
	s.entries = append(s.entries, *snap)
	if over := len(s.entries) - s.maxEntries(); over > 0 {
		s.entries = s.entries[over:]
	}
	kept := make([]models.Snapshot, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.mu.Unlock()

	s.mirror(ctx, snap, cutoff)
}

// Latest returns a copy of the newest snapshot, nil when the window is
// empty.
func (s *Store) Latest() *models.Snapshot {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil
	}
	last := s.entries[len(s.entries)-1]
	return &last
}

// Len reports the current window size.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of the window, oldest first.
func (s *Store) Entries() []models.Snapshot {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Snapshot, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) mirror(ctx context.Context, snap *models.Snapshot, cutoff time.Time) {
	if s.Repo == nil {
		return
	}
	if err := s.Repo.InsertSnapshot(ctx, snap); err != nil && s.Logger != nil {
		s.Logger.Warn("failed to mirror snapshot insert", zap.Error(err))
	}
	if _, err := s.Repo.TrimSnapshotsToCount(ctx, s.maxEntries()); err != nil && s.Logger != nil {
		s.Logger.Warn("failed to trim snapshot history", zap.Error(err))
	}
	if _, err := s.Repo.DeleteSnapshotsBefore(ctx, cutoff); err != nil && s.Logger != nil {
		s.Logger.Warn("failed to expire snapshot history", zap.Error(err))
	}
}

func (s *Store) maxEntries() int {
	if s.MaxEntries > 0 {
		return s.MaxEntries
	}
	return 1000
}

func (s *Store) maxAge() time.Duration {
	if s.MaxAge > 0 {
		return s.MaxAge
	}
	return 90 * 24 * time.Hour
}
