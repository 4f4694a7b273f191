package recurring

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/database"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
)

func TestNextRunDate(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		interval string
		want     string
	}{
		{"weekly", "2024-01-01", model.IntervalWeekly, "2024-01-08"},
		{"monthly", "2024-03-15", model.IntervalMonthly, "2024-04-15"},
		{"yearly", "2024-06-01", model.IntervalYearly, "2025-06-01"},
		// AddDate normalization: Jan 31 + 1 month overflows Feb into March.
		{"monthly from jan 31", "2024-01-31", model.IntervalMonthly, "2024-03-02"},
		{"monthly from oct 31", "2024-10-31", model.IntervalMonthly, "2024-12-01"},
		// Leap day + 1 year lands on Mar 1 of a non-leap year.
		{"yearly from leap day", "2024-02-29", model.IntervalYearly, "2025-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := time.Parse("2006-01-02", tt.start)
			if err != nil {
				t.Fatalf("parse start: %v", err)
			}
			got, err := NextRunDate(start, tt.interval)
			if err != nil {
				t.Fatalf("next run date: %v", err)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("NextRunDate(%s, %s) = %s, want %s",
					tt.start, tt.interval, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestNextRunDateUnknownInterval(t *testing.T) {
	if _, err := NextRunDate(time.Now(), "daily"); err == nil {
		t.Error("expected error for unsupported interval")
	}
}

type fixture struct {
	db          *sql.DB
	recurring   *store.RecurringStore
	txns        *store.TransactionStore
	households  *store.HouseholdStore
	processor   *Processor
	householdID int64
	userID      int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hs := store.NewHouseholdStore(db)
	us := store.NewUserStore(db)
	rs := store.NewRecurringStore(db)

	h, err := hs.Create("Test Household", "EUR")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	u, err := us.Create("alice@example.com", "Alice", "secret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := hs.AddMember(h.ID, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("add member: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	return &fixture{
		db:          db,
		recurring:   rs,
		txns:        store.NewTransactionStore(db),
		households:  hs,
		processor:   NewProcessor(rs, hs, logger),
		householdID: h.ID,
		userID:      u.ID,
	}
}

func (f *fixture) createTemplate(t *testing.T, interval string, nextRun time.Time, active bool) *model.RecurringTemplate {
	t.Helper()
	tmpl, err := f.recurring.Create(model.RecurringTemplate{
		HouseholdID: f.householdID,
		UserID:      f.userID,
		Kind:        model.KindExpense,
		Amount:      decimal.RequireFromString("50"),
		Description: "Gym membership",
		Interval:    interval,
		NextRunDate: nextRun,
		Active:      active,
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tmpl
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRunMaterializesDueTemplate(t *testing.T) {
	f := setup(t)
	tmpl := f.createTemplate(t, model.IntervalWeekly, date(2024, 1, 1), true)
	now := date(2024, 1, 3)

	res, err := f.processor.Run(context.Background(), f.householdID, now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Processed != 1 {
		t.Fatalf("processed = %d, want 1", res.Processed)
	}

	txns, err := f.txns.List(scope.Household(f.householdID), store.TransactionFilter{})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txns))
	}
	got := txns[0]
	if !got.OccurredAt.Equal(date(2024, 1, 1)) {
		t.Errorf("occurred_at = %s, want the scheduled date 2024-01-01", got.OccurredAt)
	}
	if got.Amount.StringFixed(2) != "50.00" {
		t.Errorf("amount = %s, want 50.00", got.Amount)
	}
	if !got.IsRecurring {
		t.Error("generated transaction should be marked recurring")
	}
	if got.Currency != "EUR" {
		t.Errorf("currency = %q, want household currency EUR", got.Currency)
	}
	if got.ID == 0 {
		t.Error("generated transaction must have its own identity")
	}

	updated, err := f.recurring.GetByID(scope.Household(f.householdID), tmpl.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if !updated.NextRunDate.Equal(date(2024, 1, 8)) {
		t.Errorf("next_run_date = %s, want 2024-01-08", updated.NextRunDate)
	}
}

func TestRunIsIdempotentWithinPeriod(t *testing.T) {
	f := setup(t)
	f.createTemplate(t, model.IntervalWeekly, date(2024, 1, 1), true)
	now := date(2024, 1, 3)

	if _, err := f.processor.Run(context.Background(), f.householdID, now); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := f.processor.Run(context.Background(), f.householdID, now)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Processed != 0 || res.Skipped != 0 {
		t.Errorf("second run = %+v, want no work", res)
	}

	txns, err := f.txns.List(scope.Household(f.householdID), store.TransactionFilter{})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("transactions = %d, want exactly 1 after two runs", len(txns))
	}
}

func TestRunSkipsInactiveTemplates(t *testing.T) {
	f := setup(t)
	f.createTemplate(t, model.IntervalWeekly, date(2024, 1, 1), false)

	res, err := f.processor.Run(context.Background(), f.householdID, date(2024, 6, 1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("processed = %d, want 0 for inactive template", res.Processed)
	}

	txns, err := f.txns.List(scope.Household(f.householdID), store.TransactionFilter{})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("transactions = %d, want 0", len(txns))
	}
}

func TestRunCatchesUpOnePeriodPerInvocation(t *testing.T) {
	f := setup(t)
	tmpl := f.createTemplate(t, model.IntervalWeekly, date(2024, 1, 1), true)
	// Two missed weeks: each run materializes one occurrence.
	now := date(2024, 1, 15)

	for i, wantNext := range []time.Time{date(2024, 1, 8), date(2024, 1, 15)} {
		res, err := f.processor.Run(context.Background(), f.householdID, now)
		if err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
		if res.Processed != 1 {
			t.Fatalf("run %d processed = %d, want 1", i+1, res.Processed)
		}
		updated, err := f.recurring.GetByID(scope.Household(f.householdID), tmpl.ID)
		if err != nil {
			t.Fatalf("get template: %v", err)
		}
		if !updated.NextRunDate.Equal(wantNext) {
			t.Errorf("run %d next_run_date = %s, want %s", i+1, updated.NextRunDate, wantNext)
		}
	}
}

func TestMaterializeRejectsStaleSnapshot(t *testing.T) {
	f := setup(t)
	f.createTemplate(t, model.IntervalWeekly, date(2024, 1, 1), true)

	due, err := f.recurring.ListDue(scope.Household(f.householdID), date(2024, 1, 3))
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due = %d, want 1", len(due))
	}
	stale := due[0]

	applied, err := f.recurring.Materialize(stale, date(2024, 1, 8), "EUR")
	if err != nil || !applied {
		t.Fatalf("first materialize: applied=%v err=%v", applied, err)
	}

	// Same snapshot again: the conditional advance must not match.
	applied, err = f.recurring.Materialize(stale, date(2024, 1, 8), "EUR")
	if err != nil {
		t.Fatalf("second materialize: %v", err)
	}
	if applied {
		t.Error("stale snapshot was applied; occurrence double-processed")
	}

	txns, err := f.txns.List(scope.Household(f.householdID), store.TransactionFilter{})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("transactions = %d, want 1", len(txns))
	}
}

func TestMaterializeIsAtomic(t *testing.T) {
	f := setup(t)
	tmpl := f.createTemplate(t, model.IntervalWeekly, date(2024, 1, 1), true)

	// Force the transaction insert to fail after the schedule advance has
	// succeeded inside the same database transaction.
	if _, err := f.db.Exec(
		`CREATE TRIGGER boom BEFORE INSERT ON transactions BEGIN SELECT RAISE(ABORT, 'boom'); END`,
	); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := f.processor.Run(context.Background(), f.householdID, date(2024, 1, 3)); err == nil {
		t.Fatal("expected run to surface the injected failure")
	}

	// Neither write may be visible.
	updated, err := f.recurring.GetByID(scope.Household(f.householdID), tmpl.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if !updated.NextRunDate.Equal(date(2024, 1, 1)) {
		t.Errorf("next_run_date = %s, want unchanged 2024-01-01", updated.NextRunDate)
	}

	// Clearing the fault lets the next invocation retry naturally.
	if _, err := f.db.Exec(`DROP TRIGGER boom`); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	res, err := f.processor.Run(context.Background(), f.householdID, date(2024, 1, 3))
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if res.Processed != 1 {
		t.Errorf("retry processed = %d, want 1", res.Processed)
	}
}

func TestSchedulerSweepsAllHouseholds(t *testing.T) {
	f := setup(t)
	f.createTemplate(t, model.IntervalWeekly, date(2024, 1, 1), true)

	logger := slog.New(slog.DiscardHandler)
	s := NewScheduler(f.processor, f.households, time.Hour, logger)
	s.Start(context.Background())
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		txns, err := f.txns.List(scope.Household(f.householdID), store.TransactionFilter{})
		if err != nil {
			t.Fatalf("list transactions: %v", err)
		}
		if len(txns) >= 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("scheduler never materialized the due template")
}
