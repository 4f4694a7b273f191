package store

import (
	"testing"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
)

func TestInviteCreateAndGetByToken(t *testing.T) {
	db := setupDB(t)
	h, _ := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	is := NewInviteStore(db)

	inv, err := is.Create(h.ID, "  Bob@Example.COM ", model.RoleUser)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if inv.Email != "bob@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", inv.Email)
	}

	got, err := is.GetByToken(inv.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.HouseholdID != h.ID || got.Role != model.RoleUser {
		t.Fatalf("GetByToken = %+v", got)
	}
}

func TestInviteGetByTokenAccepted(t *testing.T) {
	db := setupDB(t)
	h, _ := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	is := NewInviteStore(db)

	inv, err := is.Create(h.ID, "bob@example.com", model.RoleUser)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if err := is.MarkAccepted(inv.ID); err != nil {
		t.Fatalf("mark accepted: %v", err)
	}

	got, err := is.GetByToken(inv.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Fatal("accepted invite should not be returned")
	}
}

func TestInviteExpiry(t *testing.T) {
	db := setupDB(t)
	h, _ := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	is := NewInviteStore(db)

	inv, err := is.Create(h.ID, "bob@example.com", model.RoleUser)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if _, err := db.Exec(`UPDATE invites SET expires_at = datetime('now', '-1 day') WHERE id = ?`, inv.ID); err != nil {
		t.Fatalf("expire invite: %v", err)
	}

	got, err := is.GetByToken(inv.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Fatal("expired invite should not be returned")
	}

	count, err := is.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}
}
