package store

import (
	"database/sql"
	"testing"

	"github.com/munsif3/family-expense-tracker-sub001/internal/database"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedHousehold creates a household with one admin user and returns both.
func seedHousehold(t *testing.T, db *sql.DB, name, currency, email string) (*model.Household, *model.User) {
	t.Helper()
	hs := NewHouseholdStore(db)
	us := NewUserStore(db)

	h, err := hs.Create(name, currency)
	if err != nil {
		t.Fatalf("create household %q: %v", name, err)
	}
	u, err := us.Create(email, "Test User", "correct horse battery")
	if err != nil {
		t.Fatalf("create user %q: %v", email, err)
	}
	if _, err := hs.AddMember(h.ID, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("add member: %v", err)
	}
	return h, u
}

func householdScope(h *model.Household) scope.Scope {
	return scope.Household(h.ID)
}
