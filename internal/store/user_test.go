package store

import "testing"

func TestUserCreateAndVerifyPassword(t *testing.T) {
	db := setupDB(t)
	us := NewUserStore(db)

	u, err := us.Create("Alice@Example.com", "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", u.Email)
	}
	if u.PasswordHash == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}

	if !us.VerifyPassword(u, "correct horse battery") {
		t.Error("correct password rejected")
	}
	if us.VerifyPassword(u, "wrong password") {
		t.Error("wrong password accepted")
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := setupDB(t)
	us := NewUserStore(db)

	created, err := us.Create("alice@example.com", "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := us.GetByEmail("ALICE@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("GetByEmail = %+v, want id %d", got, created.ID)
	}

	missing, err := us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if missing != nil {
		t.Fatalf("got %+v, want nil for unknown email", missing)
	}
}

func TestUserUpdateAndDelete(t *testing.T) {
	db := setupDB(t)
	us := NewUserStore(db)

	u, err := us.Create("alice@example.com", "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	renamed, err := us.Update(u.ID, "Alice Nguyen")
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if renamed.Name != "Alice Nguyen" {
		t.Errorf("Name = %q, want Alice Nguyen", renamed.Name)
	}

	if err := us.Delete(u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	gone, err := us.GetByID(u.ID)
	if err != nil {
		t.Fatalf("get deleted user: %v", err)
	}
	if gone != nil {
		t.Fatal("user still present after delete")
	}
}
