package store

import (
	"errors"
	"testing"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
)

func TestHouseholdNameUniqueCaseInsensitive(t *testing.T) {
	db := setupDB(t)
	hs := NewHouseholdStore(db)

	if _, err := hs.Create("Nguyen Family", "USD"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := hs.Create("NGUYEN FAMILY", "EUR")
	if !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestHouseholdGetByNameLower(t *testing.T) {
	db := setupDB(t)
	hs := NewHouseholdStore(db)

	created, err := hs.Create("Nguyen Family", "USD")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := hs.GetByNameLower("nguyen family")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("GetByNameLower = %+v, want id %d", got, created.ID)
	}
}

func TestHouseholdMembers(t *testing.T) {
	db := setupDB(t)
	h, admin := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	hs := NewHouseholdStore(db)
	us := NewUserStore(db)

	bob, err := us.Create("bob@example.com", "Bob", "correct horse battery")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if _, err := hs.AddMember(h.ID, bob.ID, model.RoleUser); err != nil {
		t.Fatalf("add member: %v", err)
	}

	members, err := hs.ListMembers(h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}

	m, err := hs.GetMember(h.ID, admin.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil || m.Role != model.RoleAdmin {
		t.Fatalf("admin member = %+v", m)
	}

	promoted, err := hs.UpdateMemberRole(h.ID, bob.ID, model.RoleAdmin)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if promoted.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want admin", promoted.Role)
	}

	if err := hs.RemoveMember(h.ID, bob.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	gone, err := hs.GetMember(h.ID, bob.ID)
	if err != nil {
		t.Fatalf("get removed member: %v", err)
	}
	if gone != nil {
		t.Fatal("member still present after removal")
	}
}

func TestHouseholdSeedDefaults(t *testing.T) {
	db := setupDB(t)
	h, _ := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	hs := NewHouseholdStore(db)

	if err := hs.SeedDefaults(h.ID); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}

	cats, err := NewCategoryStore(db).List(householdScope(h))
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) == 0 {
		t.Error("expected seeded categories")
	}

	pms, err := NewPaymentMethodStore(db).List(householdScope(h))
	if err != nil {
		t.Fatalf("list payment methods: %v", err)
	}
	if len(pms) == 0 {
		t.Error("expected seeded payment methods")
	}
}

func TestHouseholdDeleteCascades(t *testing.T) {
	db := setupDB(t)
	h, _ := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	hs := NewHouseholdStore(db)

	if err := hs.Delete(h.ID); err != nil {
		t.Fatalf("delete household: %v", err)
	}
	got, err := hs.GetByID(h.ID)
	if err != nil {
		t.Fatalf("get deleted household: %v", err)
	}
	if got != nil {
		t.Fatal("household still present after delete")
	}
	members, err := hs.ListMembers(h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("members survived household delete: %+v", members)
	}
}

func TestHouseholdListIDs(t *testing.T) {
	db := setupDB(t)
	a, _ := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	b, _ := seedHousehold(t, db, "Beta", "EUR", "b@example.com")
	hs := NewHouseholdStore(db)

	ids, err := hs.ListIDs()
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2 entries", ids)
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[a.ID] || !seen[b.ID] {
		t.Errorf("ids = %v, want both %d and %d", ids, a.ID, b.ID)
	}
}
