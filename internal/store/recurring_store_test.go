package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
)

func seedTemplate(t *testing.T, rs *RecurringStore, h *model.Household, u *model.User, nextRun time.Time, active bool) *model.RecurringTemplate {
	t.Helper()
	tmpl, err := rs.Create(model.RecurringTemplate{
		HouseholdID: h.ID,
		UserID:      u.ID,
		Kind:        model.KindExpense,
		Amount:      decimal.NewFromInt(50),
		Description: "Internet",
		Interval:    "monthly",
		NextRunDate: nextRun,
		Active:      active,
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tmpl
}

func TestRecurringListDue(t *testing.T) {
	db := setupDB(t)
	h, u := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	rs := NewRecurringStore(db)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	due := seedTemplate(t, rs, h, u, now.AddDate(0, 0, -3), true)
	seedTemplate(t, rs, h, u, now.AddDate(0, 0, 3), true)   // future
	seedTemplate(t, rs, h, u, now.AddDate(0, 0, -3), false) // inactive

	got, err := rs.ListDue(householdScope(h), now)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(got) != 1 || got[0].ID != due.ID {
		t.Fatalf("ListDue = %+v, want only template %d", got, due.ID)
	}
}

func TestRecurringSetActive(t *testing.T) {
	db := setupDB(t)
	h, u := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	rs := NewRecurringStore(db)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	sc := householdScope(h)

	tmpl := seedTemplate(t, rs, h, u, now.AddDate(0, 0, -1), true)

	if err := rs.SetActive(sc, tmpl.ID, false); err != nil {
		t.Fatalf("set active: %v", err)
	}
	got, err := rs.ListDue(sc, now)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("deactivated template still due: %+v", got)
	}

	if err := rs.SetActive(sc, tmpl.ID, true); err != nil {
		t.Fatalf("set active: %v", err)
	}
	got, err = rs.ListDue(sc, now)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("reactivated template not due: %+v", got)
	}
}
