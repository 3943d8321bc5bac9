package app

import (
	"context"
	"time"

	"weightbot/internal/domain"
)

// Report sizes used by the admin surfaces.
const (
	TopUsersCount     = 5
	DetailRecentCount = 10
	DefaultUserList   = 10
	MaxUserList       = 100
)

// Summary is the global admin report. Aggregates over an empty store are nil.
type Summary struct {
	TotalUsers        int                `json:"total_users"`
	TotalMeasurements int                `json:"total_measurements"`
	ActiveUsers7d     int                `json:"active_users_7d"`
	Measurements7d    int                `json:"measurements_7d"`
	Measurements30d   int                `json:"measurements_30d"`
	FirstRecordAt     *time.Time         `json:"first_record_at"`
	LastRecordAt      *time.Time         `json:"last_record_at"`
	AvgWeight         *float64           `json:"avg_weight"`
	MinWeight         *float64           `json:"min_weight"`
	MaxWeight         *float64           `json:"max_weight"`
	TopUsers          []domain.UserCount `json:"top_users"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// Span returns the number of civil days covered by the stored records,
// counting both the first and last day. It is zero when there are no records.
func (s Summary) Span() int {
	if s.FirstRecordAt == nil || s.LastRecordAt == nil {
		return 0
	}
	first := domain.CivilDayStart(*s.FirstRecordAt)
	last := domain.CivilDayStart(*s.LastRecordAt)
	return int(last.Sub(first)/(24*time.Hour)) + 1
}

// UserDetail is the admin view of one user.
type UserDetail struct {
	User   domain.User          `json:"user"`
	Stats  domain.WeightStats   `json:"stats"`
	Recent []domain.Measurement `json:"recent"`
}

// ReportService answers read-only admin queries. It never mutates state.
type ReportService struct {
	users        domain.UserRepository
	measurements domain.MeasurementRepository
	reports      domain.ReportRepository
	now          func() time.Time
}

// NewReportService creates a ReportService.
func NewReportService(users domain.UserRepository, measurements domain.MeasurementRepository, reports domain.ReportRepository) *ReportService {
	return &ReportService{users: users, measurements: measurements, reports: reports, now: time.Now}
}

// WithClock replaces the clock used for trailing windows.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// GlobalSummary computes the global report from the full store at call time.
// The 7 and 30 day windows start at the beginning of the civil day N days ago.
func (s *ReportService) GlobalSummary(ctx context.Context) (*Summary, error) {
	now := s.now()
	out := &Summary{GeneratedAt: now.UTC()}
	var err error

	if out.TotalUsers, err = s.reports.CountUsers(ctx); err != nil {
		return nil, domain.WrapStore("count users", err)
	}
	if out.TotalMeasurements, err = s.reports.CountMeasurements(ctx); err != nil {
		return nil, domain.WrapStore("count measurements", err)
	}
	week := domain.WindowStart(now, 7)
	if out.ActiveUsers7d, err = s.reports.CountActiveUsersSince(ctx, week); err != nil {
		return nil, domain.WrapStore("count active users", err)
	}
	if out.Measurements7d, err = s.reports.CountMeasurementsSince(ctx, week); err != nil {
		return nil, domain.WrapStore("count measurements 7d", err)
	}
	if out.Measurements30d, err = s.reports.CountMeasurementsSince(ctx, domain.WindowStart(now, 30)); err != nil {
		return nil, domain.WrapStore("count measurements 30d", err)
	}

	stats, err := s.reports.WeightStats(ctx)
	if err != nil {
		return nil, domain.WrapStore("weight stats", err)
	}
	out.FirstRecordAt, out.LastRecordAt = stats.First, stats.Last
	out.AvgWeight, out.MinWeight, out.MaxWeight = stats.Avg, stats.Min, stats.Max

	if out.TopUsers, err = s.reports.TopUsers(ctx, TopUsersCount); err != nil {
		return nil, domain.WrapStore("top users", err)
	}
	return out, nil
}

// UserList returns per-user summaries, most recently registered first.
func (s *ReportService) UserList(ctx context.Context, limit int) ([]domain.UserSummary, error) {
	if limit <= 0 {
		limit = DefaultUserList
	}
	if limit > MaxUserList {
		limit = MaxUserList
	}
	items, err := s.reports.ListUserSummaries(ctx, limit)
	if err != nil {
		return nil, domain.WrapStore("list users", err)
	}
	return items, nil
}

// UserDetail returns the profile, aggregates and most recent measurements of
// one user, or ErrUserNotFound.
func (s *ReportService) UserDetail(ctx context.Context, userID int64) (*UserDetail, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, domain.WrapStore("get user", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	stats, err := s.reports.UserWeightStats(ctx, userID)
	if err != nil {
		return nil, domain.WrapStore("user weight stats", err)
	}
	recent, err := s.measurements.RecentMeasurements(ctx, userID, DetailRecentCount)
	if err != nil {
		return nil, domain.WrapStore("recent measurements", err)
	}
	return &UserDetail{User: *u, Stats: stats, Recent: recent}, nil
}
