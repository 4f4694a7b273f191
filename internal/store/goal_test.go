package store

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

func TestGoalContributeMarksAchieved(t *testing.T) {
	db := setupDB(t)
	h, _ := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	gs := NewGoalStore(db)
	sc := householdScope(h)

	goal, err := gs.Create(h.ID, "Vacation", decimal.NewFromInt(1000), nil)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if goal.Achieved {
		t.Fatal("new goal should not be achieved")
	}

	goal, err = gs.Contribute(sc, goal.ID, decimal.NewFromInt(400))
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if !goal.SavedAmount.Equal(decimal.NewFromInt(400)) {
		t.Errorf("SavedAmount = %s, want 400", goal.SavedAmount)
	}
	if goal.Achieved {
		t.Error("goal achieved before reaching target")
	}

	goal, err = gs.Contribute(sc, goal.ID, decimal.NewFromInt(600))
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if !goal.SavedAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("SavedAmount = %s, want 1000", goal.SavedAmount)
	}
	if !goal.Achieved {
		t.Error("goal should be achieved at target")
	}
}

func TestGoalContributeCrossHousehold(t *testing.T) {
	db := setupDB(t)
	a, _ := seedHousehold(t, db, "Alpha", "USD", "a@example.com")
	b, _ := seedHousehold(t, db, "Beta", "EUR", "b@example.com")
	gs := NewGoalStore(db)

	goal, err := gs.Create(a.ID, "Vacation", decimal.NewFromInt(1000), nil)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	got, err := gs.Contribute(scope.Household(b.ID), goal.ID, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if got != nil {
		t.Fatalf("foreign contribute returned %+v, want nil", got)
	}

	goal, err = gs.GetByID(householdScope(a), goal.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if !goal.SavedAmount.IsZero() {
		t.Errorf("SavedAmount = %s, want 0 after foreign contribute", goal.SavedAmount)
	}
}
