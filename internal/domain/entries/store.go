package entries

import (
	"context"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/metrics"
	"github.com/rs/zerolog"
)

// Store is the backend-agnostic event store. Failures are logged and turned
// into boolean or empty results; callers never see backend errors.
type Store struct {
	repo   Repository
	loc    *time.Location
	logger zerolog.Logger
}

func NewStore(repo Repository, loc *time.Location, logger zerolog.Logger) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		repo:   repo,
		loc:    loc,
		logger: logger.With().Str("component", "entry_store").Str("backend", repo.Backend()).Logger(),
	}
}

// Backend names the repository implementation.
func (s *Store) Backend() string {
	return s.repo.Backend()
}

// Location is the display timezone used for readable times.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Init ensures the table exists and logs how many rows it already holds.
func (s *Store) Init(ctx context.Context) bool {
	start := time.Now()
	err := s.repo.Init(ctx)
	metrics.RecordStoreOp(s.repo.Backend(), "init", start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("error initializing entry store")
		return false
	}

	count, ok := s.Count(ctx)
	if ok {
		s.logger.Info().Int64("existing_entries", count).Msg("entry store initialized")
	}
	return true
}

// Add appends one entry. ok is false when the backend rejected the write.
func (s *Store) Add(ctx context.Context, appName, username, timestamp string) (Entry, bool) {
	start := time.Now()
	entry, err := s.repo.Insert(ctx, Entry{AppName: appName, Username: username, Timestamp: timestamp})
	metrics.RecordStoreOp(s.repo.Backend(), "insert", start, err)
	if err != nil {
		s.logger.Error().Err(err).
			Str("app_name", appName).
			Str("username", username).
			Msg("error adding entry")
		return Entry{}, false
	}
	s.logger.Debug().Int64("id", entry.ID).Str("app_name", appName).Msg("entry added")
	return entry, true
}

// ListAll returns every entry, newest first. It returns an empty slice when
// the backend fails.
func (s *Store) ListAll(ctx context.Context) []Entry {
	start := time.Now()
	list, err := s.repo.List(ctx)
	metrics.RecordStoreOp(s.repo.Backend(), "list", start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("error fetching entries")
		return []Entry{}
	}
	if list == nil {
		list = []Entry{}
	}
	return list
}

// Rows is ListAll with the readable time derived for display.
func (s *Store) Rows(ctx context.Context) []Row {
	list := s.ListAll(ctx)
	rows := make([]Row, 0, len(list))
	for _, e := range list {
		rows = append(rows, ToRow(e, s.loc))
	}
	return rows
}

// ClearAll deletes every entry.
func (s *Store) ClearAll(ctx context.Context) bool {
	start := time.Now()
	n, err := s.repo.Clear(ctx)
	metrics.RecordStoreOp(s.repo.Backend(), "clear", start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("error clearing entries")
		return false
	}
	s.logger.Info().Int64("rows_deleted", n).Msg("cleared entries")
	return true
}

func (s *Store) Count(ctx context.Context) (int64, bool) {
	start := time.Now()
	n, err := s.repo.Count(ctx)
	metrics.RecordStoreOp(s.repo.Backend(), "count", start, err)
	if err != nil {
		s.logger.Error().Err(err).Msg("error counting entries")
		return 0, false
	}
	return n, true
}
