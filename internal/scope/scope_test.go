package scope

import (
	"errors"
	"reflect"
	"testing"
)

func TestHouseholdWhere(t *testing.T) {
	sql, args, err := Household(42).Where()
	if err != nil {
		t.Fatalf("where: %v", err)
	}
	if sql != "WHERE household_id = ?" {
		t.Errorf("sql = %q", sql)
	}
	if !reflect.DeepEqual(args, []any{int64(42)}) {
		t.Errorf("args = %v", args)
	}
	if got := Household(42).HouseholdID(); got != 42 {
		t.Errorf("HouseholdID = %d, want 42", got)
	}
}

func TestOwnerWhere(t *testing.T) {
	sql, args, err := Owner(42, 7).Where()
	if err != nil {
		t.Fatalf("where: %v", err)
	}
	if sql != "WHERE household_id = ? AND user_id = ?" {
		t.Errorf("sql = %q", sql)
	}
	if !reflect.DeepEqual(args, []any{int64(42), int64(7)}) {
		t.Errorf("args = %v", args)
	}
}

func TestClauseOrder(t *testing.T) {
	sql, args, err := Owner(1, 2).Where(
		Filter("kind = ?", "expense"),
		Filter("occurred_at >= ?", "2024-01-01"),
		OrderBy("occurred_at DESC"),
		Limit(50),
	)
	if err != nil {
		t.Fatalf("where: %v", err)
	}
	want := "WHERE household_id = ? AND user_id = ? AND kind = ? AND occurred_at >= ? ORDER BY occurred_at DESC LIMIT ?"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	wantArgs := []any{int64(1), int64(2), "expense", "2024-01-01", 50}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestMissingHouseholdFailsClosed(t *testing.T) {
	sql, args, err := Household(0).Where(Filter("kind = ?", "income"))
	if !errors.Is(err, ErrMissingHousehold) {
		t.Fatalf("err = %v, want ErrMissingHousehold", err)
	}
	if !errors.Is(err, ErrScope) {
		t.Error("missing household should match ErrScope")
	}
	if sql != "" || args != nil {
		t.Errorf("expected no SQL on scope violation, got %q %v", sql, args)
	}
}

func TestMissingUserFailsClosed(t *testing.T) {
	_, _, err := Owner(42, 0).Where()
	if !errors.Is(err, ErrMissingUser) {
		t.Fatalf("err = %v, want ErrMissingUser", err)
	}
	if !errors.Is(err, ErrScope) {
		t.Error("missing user should match ErrScope")
	}
}

func TestHouseholdScopeIgnoresUser(t *testing.T) {
	// The shared-ledger view deliberately omits the owner filter; the
	// household filter is still mandatory.
	if err := Household(9).Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	sql, _, err := Household(9).Where()
	if err != nil {
		t.Fatalf("where: %v", err)
	}
	if sql != "WHERE household_id = ?" {
		t.Errorf("sql = %q", sql)
	}
}
