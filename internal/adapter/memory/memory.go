// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"weightbot/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu           sync.Mutex
	users        map[int64]domain.User
	measurements []domain.Measurement
	sessions     map[string]domain.Session

	measurementIDCounter int64
	now                  func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		users:    make(map[int64]domain.User),
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.MeasurementRepository = (*DB)(nil)
var _ domain.ReportRepository = (*DB)(nil)
var _ domain.SessionRepository = (*DB)(nil)

// Close is a no-op; it lets DB stand in for the SQL store.
func (db *DB) Close() error { return nil }

// --- UserRepository ---

// UpsertUser stores u unless a user with the same ID already exists.
func (db *DB) UpsertUser(ctx context.Context, u domain.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[u.ID]; ok {
		return nil
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = db.now()
	}
	u.CreatedAt = u.CreatedAt.UTC()
	db.users[u.ID] = u
	return nil
}

// GetUser returns the user or nil if absent.
func (db *DB) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// --- MeasurementRepository ---

// InsertMeasurement appends a measurement for an existing user.
func (db *DB) InsertMeasurement(ctx context.Context, userID int64, weight float64, at time.Time) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[userID]; !ok {
		return 0, domain.ErrUnknownUser
	}
	db.measurementIDCounter++
	m := domain.Measurement{
		ID:     db.measurementIDCounter,
		UserID: userID,
		Weight: weight,
		At:     at.UTC(),
	}
	db.measurements = append(db.measurements, m)
	return m.ID, nil
}

// LatestMeasurement returns the user's newest measurement or nil.
func (db *DB) LatestMeasurement(ctx context.Context, userID int64) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items := db.forUserLocked(userID)
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// RecentMeasurements lists up to limit measurements, newest first.
func (db *DB) RecentMeasurements(ctx context.Context, userID int64, limit int) ([]domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	items := db.forUserLocked(userID)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// DeleteMeasurement removes a measurement by ID and returns it, or nil if absent.
func (db *DB) DeleteMeasurement(ctx context.Context, id int64) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, m := range db.measurements {
		if m.ID == id {
			db.measurements = append(db.measurements[:i], db.measurements[i+1:]...)
			return &m, nil
		}
	}
	return nil, nil
}

// DeleteAllMeasurements removes every measurement of a user.
func (db *DB) DeleteAllMeasurements(ctx context.Context, userID int64) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	kept := db.measurements[:0]
	var n int64
	for _, m := range db.measurements {
		if m.UserID == userID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	db.measurements = kept
	return n, nil
}

// forUserLocked returns a sorted copy of the user's measurements, newest
// first with ties broken by the higher ID.
func (db *DB) forUserLocked(userID int64) []domain.Measurement {
	var out []domain.Measurement
	for _, m := range db.measurements {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(items []domain.Measurement) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].At.Equal(items[j].At) {
			return items[i].At.After(items[j].At)
		}
		return items[i].ID > items[j].ID
	})
}

// --- ReportRepository ---

// CountUsers returns the number of registered users.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// CountMeasurements returns the number of stored measurements.
func (db *DB) CountMeasurements(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.measurements), nil
}

// CountActiveUsersSince counts distinct users with a measurement at or after since.
func (db *DB) CountActiveUsersSince(ctx context.Context, since time.Time) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	seen := make(map[int64]struct{})
	for _, m := range db.measurements {
		if !m.At.Before(since) {
			seen[m.UserID] = struct{}{}
		}
	}
	return len(seen), nil
}

// CountMeasurementsSince counts measurements at or after since.
func (db *DB) CountMeasurementsSince(ctx context.Context, since time.Time) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for _, m := range db.measurements {
		if !m.At.Before(since) {
			n++
		}
	}
	return n, nil
}

// WeightStats aggregates every stored measurement.
func (db *DB) WeightStats(ctx context.Context) (domain.WeightStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return aggregate(db.measurements), nil
}

// UserWeightStats aggregates one user's measurements.
func (db *DB) UserWeightStats(ctx context.Context, userID int64) (domain.WeightStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return aggregate(db.forUserLocked(userID)), nil
}

func aggregate(items []domain.Measurement) domain.WeightStats {
	var st domain.WeightStats
	if len(items) == 0 {
		return st
	}
	minW, maxW, sum := items[0].Weight, items[0].Weight, 0.0
	first, last := items[0].At, items[0].At
	for _, m := range items {
		sum += m.Weight
		minW = min(minW, m.Weight)
		maxW = max(maxW, m.Weight)
		if m.At.Before(first) {
			first = m.At
		}
		if m.At.After(last) {
			last = m.At
		}
	}
	avg := sum / float64(len(items))
	st.Count = len(items)
	st.Avg, st.Min, st.Max = &avg, &minW, &maxW
	st.First, st.Last = &first, &last
	return st
}

// TopUsers returns the n users with the most measurements.
func (db *DB) TopUsers(ctx context.Context, n int) ([]domain.UserCount, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	counts := make(map[int64]int)
	for _, m := range db.measurements {
		counts[m.UserID]++
	}
	out := make([]domain.UserCount, 0, len(counts))
	for id, c := range counts {
		out = append(out, domain.UserCount{UserID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// ListUserSummaries lists users newest registration first.
func (db *DB) ListUserSummaries(ctx context.Context, limit int) ([]domain.UserSummary, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.UserSummary, 0, len(db.users))
	for _, u := range db.users {
		s := domain.UserSummary{User: u}
		for _, m := range db.measurements {
			if m.UserID != u.ID {
				continue
			}
			s.MeasurementCount++
			if s.LastMeasurementAt == nil || m.At.After(*s.LastMeasurementAt) {
				at := m.At
				s.LastMeasurementAt = &at
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- SessionRepository ---

// CreateSession stores a session.
func (db *DB) CreateSession(ctx context.Context, s domain.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sessions[s.Token] = s
	return nil
}

// GetSession retrieves a session by token.
func (db *DB) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if s, ok := db.sessions[token]; ok {
		return &s, nil
	}
	return nil, nil
}

// DeleteSession deletes a session.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.sessions, token)
	return nil
}

// DeleteExpiredSessions deletes all sessions expired at now.
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for k, v := range db.sessions {
		if now.After(v.ExpiresAt) {
			delete(db.sessions, k)
		}
	}
	return nil
}
