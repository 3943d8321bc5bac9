package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"weightbot/internal/adapter/memory"
	"weightbot/internal/app"
	"weightbot/internal/domain"
)

var alice = domain.User{ID: 42, Username: "alice", FirstName: "Alice"}

func newMemoryService(t *testing.T) (*app.MeasurementService, *memory.DB) {
	t.Helper()
	db := memory.New()
	return app.NewMeasurementService(db, db), db
}

func TestSubmitWeight_ValidInputs(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"30", 30},
		{"300", 300},
		{"72.5", 72.5},
		{"72,5", 72.5},
		{" 80 ", 80},
		{"99,95", 99.95},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			svc, _ := newMemoryService(t)
			ctx := context.Background()

			if _, err := svc.SubmitWeight(ctx, alice, tc.raw); err != nil {
				t.Fatalf("SubmitWeight(%q): %v", tc.raw, err)
			}
			last, err := svc.Last(ctx, alice.ID)
			if err != nil {
				t.Fatalf("Last: %v", err)
			}
			if last == nil || last.Weight != tc.want {
				t.Fatalf("expected last %v, got %+v", tc.want, last)
			}
		})
	}
}

func TestSubmitWeight_RejectedInputsLeaveHistoryUnchanged(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr error
	}{
		{"abc", domain.ErrInvalidWeight},
		{"", domain.ErrInvalidWeight},
		{"NaN", domain.ErrInvalidWeight},
		{"Inf", domain.ErrInvalidWeight},
		{"0x50", domain.ErrInvalidWeight},
		{"72kg", domain.ErrInvalidWeight},
		{"400", domain.ErrWeightOutOfRange},
		{"29.99", domain.ErrWeightOutOfRange},
		{"300.01", domain.ErrWeightOutOfRange},
		{"-70", domain.ErrWeightOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			svc, _ := newMemoryService(t)
			ctx := context.Background()
			if _, err := svc.SubmitWeight(ctx, alice, "70"); err != nil {
				t.Fatalf("seed: %v", err)
			}
			before, _ := svc.History(ctx, alice.ID, 10)

			res, err := svc.SubmitWeight(ctx, alice, tc.raw)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if res != nil {
				t.Errorf("expected nil result, got %+v", res)
			}

			after, _ := svc.History(ctx, alice.ID, 10)
			if len(after) != len(before) || after[0] != before[0] {
				t.Errorf("history changed: before %+v, after %+v", before, after)
			}
		})
	}
}

func TestSubmitWeight_RejectedInputCreatesNoRows(t *testing.T) {
	svc, db := newMemoryService(t)
	ctx := context.Background()

	if _, err := svc.SubmitWeight(ctx, alice, "abc"); !errors.Is(err, domain.ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight, got %v", err)
	}
	if _, err := svc.SubmitWeight(ctx, alice, "400"); !errors.Is(err, domain.ErrWeightOutOfRange) {
		t.Fatalf("expected ErrWeightOutOfRange, got %v", err)
	}
	n, _ := db.CountMeasurements(ctx)
	if n != 0 {
		t.Errorf("expected 0 measurements, got %d", n)
	}
	u, _ := db.GetUser(ctx, alice.ID)
	if u != nil {
		t.Errorf("expected no user row after rejected input, got %+v", u)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	svc, db := newMemoryService(t)
	ctx := context.Background()
	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	svc.WithClock(fixedClock(first))
	if err := svc.Register(ctx, alice); err != nil {
		t.Fatalf("Register: %v", err)
	}
	svc.WithClock(fixedClock(first.Add(48 * time.Hour)))
	renamed := alice
	renamed.FirstName = "Changed"
	if err := svc.Register(ctx, renamed); err != nil {
		t.Fatalf("Register again: %v", err)
	}

	n, _ := db.CountUsers(ctx)
	if n != 1 {
		t.Fatalf("expected 1 user, got %d", n)
	}
	u, _ := db.GetUser(ctx, alice.ID)
	if !u.CreatedAt.Equal(first) {
		t.Errorf("registration time changed: %v", u.CreatedAt)
	}
	if u.FirstName != "Alice" {
		t.Errorf("profile mutated: %+v", u)
	}
}

func TestDeleteLast_RestoresPrevious(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()

	res, err := svc.SubmitWeight(ctx, alice, "81")
	if err != nil {
		t.Fatalf("SubmitWeight: %v", err)
	}
	if !res.First() {
		t.Error("expected first measurement")
	}
	deleted, err := svc.DeleteLast(ctx, alice.ID)
	if err != nil {
		t.Fatalf("DeleteLast: %v", err)
	}
	if deleted == nil || deleted.Weight != 81 {
		t.Fatalf("unexpected deleted row %+v", deleted)
	}
	if last, _ := svc.Last(ctx, alice.ID); last != nil {
		t.Errorf("expected no measurement, got %+v", last)
	}

	again, err := svc.DeleteLast(ctx, alice.ID)
	if err != nil || again != nil {
		t.Errorf("expected no-op delete, got %+v, %v", again, err)
	}
}

func TestHistory_OrderingAndLimit(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)

	for i, raw := range []string{"70", "71", "72", "73", "74"} {
		svc.WithClock(fixedClock(base.Add(time.Duration(i) * time.Hour)))
		if _, err := svc.SubmitWeight(ctx, alice, raw); err != nil {
			t.Fatalf("SubmitWeight: %v", err)
		}
	}
	// Same timestamp as the previous one; the later insert must sort first.
	if _, err := svc.SubmitWeight(ctx, alice, "75"); err != nil {
		t.Fatalf("SubmitWeight: %v", err)
	}

	items, err := svc.History(ctx, alice.ID, 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	want := []float64{75, 74, 73}
	for i, m := range items {
		if m.Weight != want[i] {
			t.Errorf("item %d: expected %v, got %v", i, want[i], m.Weight)
		}
		if i > 0 {
			prev := items[i-1]
			if m.At.After(prev.At) || (m.At.Equal(prev.At) && m.ID > prev.ID) {
				t.Errorf("items %d and %d out of order", i-1, i)
			}
		}
	}

	all, _ := svc.History(ctx, alice.ID, 0)
	if len(all) != 6 {
		t.Errorf("expected default limit to return all 6, got %d", len(all))
	}
}

func TestHistory_LimitBounds(t *testing.T) {
	var got []int
	repo := &mockMeasurementRepo{
		recentFn: func(_ context.Context, _ int64, limit int) ([]domain.Measurement, error) {
			got = append(got, limit)
			return nil, nil
		},
	}
	svc := app.NewMeasurementService(&mockUserRepo{}, repo)
	for _, limit := range []int{-1, 0, 5, 1000} {
		if _, err := svc.History(context.Background(), 1, limit); err != nil {
			t.Fatalf("History(%d): %v", limit, err)
		}
	}
	want := []int{app.DefaultHistoryLimit, app.DefaultHistoryLimit, 5, app.MaxHistoryLimit}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: expected limit %d, got %d", i, want[i], got[i])
		}
	}
}

func TestScenario_SubmitDeltaDelete(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 10, 5, 0, 0, 0, time.UTC)

	svc.WithClock(fixedClock(base))
	if _, err := svc.SubmitWeight(ctx, alice, "70.0"); err != nil {
		t.Fatalf("SubmitWeight: %v", err)
	}
	svc.WithClock(fixedClock(base.Add(time.Hour)))
	res, err := svc.SubmitWeight(ctx, alice, "72.5")
	if err != nil {
		t.Fatalf("SubmitWeight: %v", err)
	}
	if res.Previous == nil || res.Previous.Weight != 70.0 {
		t.Fatalf("expected previous 70.0, got %+v", res.Previous)
	}
	d, trend := res.Delta()
	if got := domain.FormatDelta(d); got != "+2.5" {
		t.Errorf("expected delta +2.5, got %s", got)
	}
	if trend != domain.Increase {
		t.Errorf("expected increase, got %v", trend)
	}

	last, _ := svc.Last(ctx, alice.ID)
	if last == nil || last.Weight != 72.5 {
		t.Fatalf("expected last 72.5, got %+v", last)
	}
	hist, _ := svc.History(ctx, alice.ID, 10)
	if len(hist) != 2 || hist[0].Weight != 72.5 || hist[1].Weight != 70.0 {
		t.Fatalf("unexpected history %+v", hist)
	}

	deleted, err := svc.DeleteLast(ctx, alice.ID)
	if err != nil {
		t.Fatalf("DeleteLast: %v", err)
	}
	if deleted == nil || deleted.Weight != 72.5 {
		t.Fatalf("expected deleted 72.5, got %+v", deleted)
	}
	last, _ = svc.Last(ctx, alice.ID)
	if last == nil || last.Weight != 70.0 {
		t.Fatalf("expected last 70.0 after delete, got %+v", last)
	}
}

func TestClear(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()
	for _, raw := range []string{"70", "71", "72"} {
		if _, err := svc.SubmitWeight(ctx, alice, raw); err != nil {
			t.Fatalf("SubmitWeight: %v", err)
		}
	}
	n, err := svc.Clear(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 removed, got %d", n)
	}
	if last, _ := svc.Last(ctx, alice.ID); last != nil {
		t.Errorf("expected empty history, got %+v", last)
	}
}

func TestSubmitWeight_StoreErrors(t *testing.T) {
	down := errors.New("disk I/O error")
	tests := []struct {
		name  string
		users *mockUserRepo
		repo  *mockMeasurementRepo
	}{
		{
			name:  "register fails",
			users: &mockUserRepo{upsertFn: func(context.Context, domain.User) error { return down }},
			repo:  &mockMeasurementRepo{},
		},
		{
			name:  "latest fails",
			users: &mockUserRepo{},
			repo: &mockMeasurementRepo{latestFn: func(context.Context, int64) (*domain.Measurement, error) {
				return nil, down
			}},
		},
		{
			name:  "insert fails",
			users: &mockUserRepo{},
			repo: &mockMeasurementRepo{insertFn: func(context.Context, int64, float64, time.Time) (int64, error) {
				return 0, down
			}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := app.NewMeasurementService(tc.users, tc.repo)
			_, err := svc.SubmitWeight(context.Background(), alice, "70")
			if !errors.Is(err, domain.ErrStoreUnavailable) {
				t.Fatalf("expected ErrStoreUnavailable, got %v", err)
			}
			if !errors.Is(err, down) {
				t.Errorf("expected cause to be preserved, got %v", err)
			}
		})
	}
}

func TestSubmitWeight_UnknownUserIsNotAStoreOutage(t *testing.T) {
	repo := &mockMeasurementRepo{
		insertFn: func(context.Context, int64, float64, time.Time) (int64, error) {
			return 0, domain.ErrUnknownUser
		},
	}
	svc := app.NewMeasurementService(&mockUserRepo{}, repo)
	_, err := svc.SubmitWeight(context.Background(), alice, "70")
	if !errors.Is(err, domain.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		t.Error("ErrUnknownUser must not be reported as a store outage")
	}
}

func TestSubmitWeight_UsesServiceClock(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.FixedZone("X", 3600))
	var stored time.Time
	repo := &mockMeasurementRepo{
		insertFn: func(_ context.Context, _ int64, _ float64, t time.Time) (int64, error) {
			stored = t
			return 9, nil
		},
	}
	svc := app.NewMeasurementService(&mockUserRepo{}, repo).WithClock(fixedClock(at))
	res, err := svc.SubmitWeight(context.Background(), alice, "70")
	if err != nil {
		t.Fatalf("SubmitWeight: %v", err)
	}
	if !stored.Equal(at) || stored.Location() != time.UTC {
		t.Errorf("expected UTC %v, got %v", at.UTC(), stored)
	}
	if res.Saved.ID != 9 || res.Saved.UserID != alice.ID {
		t.Errorf("unexpected saved row %+v", res.Saved)
	}
}

func TestHistoryChange(t *testing.T) {
	items := []domain.Measurement{{Weight: 72}, {Weight: 71}, {Weight: 74.5}}
	change, trend, ok := app.HistoryChange(items)
	if !ok {
		t.Fatal("expected ok")
	}
	if domain.FormatDelta(change) != "-2.5" || trend != domain.Decrease {
		t.Errorf("expected -2.5 decrease, got %v %v", change, trend)
	}
	if _, _, ok := app.HistoryChange(items[:1]); ok {
		t.Error("expected not ok for a single item")
	}
}
