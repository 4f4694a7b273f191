package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/database"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
)

type fixture struct {
	svc        *Service
	sc         scope.Scope
	household  *model.Household
	user       *model.User
	txns       *store.TransactionStore
	budgets    *store.BudgetStore
	categories *store.CategoryStore
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
	h, err := hs.Create("Alpha", "USD")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	u, err := us.Create("a@example.com", "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := hs.AddMember(h.ID, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("add member: %v", err)
	}

	f := &fixture{
		household:  h,
		user:       u,
		sc:         scope.Household(h.ID),
		txns:       store.NewTransactionStore(db),
		budgets:    store.NewBudgetStore(db),
		categories: store.NewCategoryStore(db),
	}
	f.svc = NewService(f.txns, f.budgets, f.categories)
	return f
}

func (f *fixture) spend(t *testing.T, amount int64, categoryID *int64, day int) {
	t.Helper()
	f.add(t, model.KindExpense, amount, categoryID, day)
}

func (f *fixture) earn(t *testing.T, amount int64, day int) {
	t.Helper()
	f.add(t, model.KindIncome, amount, nil, day)
}

func (f *fixture) add(t *testing.T, kind string, amount int64, categoryID *int64, day int) {
	t.Helper()
	_, err := f.txns.Create(model.Transaction{
		HouseholdID: f.household.ID,
		UserID:      f.user.ID,
		Kind:        kind,
		Amount:      decimal.NewFromInt(amount),
		Currency:    "USD",
		CategoryID:  categoryID,
		OccurredAt:  time.Date(2026, 4, day, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
}

func TestMonthRange(t *testing.T) {
	from, to, err := MonthRange("2026-04")
	if err != nil {
		t.Fatalf("month range: %v", err)
	}
	if !from.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", from)
	}
	if !to.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("to = %v", to)
	}

	if _, _, err := MonthRange("April 2026"); err == nil {
		t.Error("expected error for malformed month")
	}
}

func TestMonthlySummary(t *testing.T) {
	f := setup(t)
	f.earn(t, 3000, 1)
	f.spend(t, 1200, nil, 5)
	f.spend(t, 300, nil, 20)

	// Outside the month, must not count.
	_, err := f.txns.Create(model.Transaction{
		HouseholdID: f.household.ID,
		UserID:      f.user.ID,
		Kind:        model.KindExpense,
		Amount:      decimal.NewFromInt(999),
		Currency:    "USD",
		OccurredAt:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	sum, err := f.svc.MonthlySummary(f.sc, "2026-04")
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if !sum.Income.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Income = %s, want 3000", sum.Income)
	}
	if !sum.Expense.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expense = %s, want 1500", sum.Expense)
	}
	if !sum.Net.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Net = %s, want 1500", sum.Net)
	}
	if sum.Count != 3 {
		t.Errorf("Count = %d, want 3", sum.Count)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	f := setup(t)
	groceries, err := f.categories.Create(f.household.ID, "Groceries", model.KindExpense, 0)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	f.spend(t, 100, &groceries.ID, 2)
	f.spend(t, 50, &groceries.ID, 9)
	f.spend(t, 75, nil, 4)
	f.earn(t, 2000, 1) // income never appears in the breakdown

	breakdown, err := f.svc.CategoryBreakdown(f.sc, "2026-04")
	if err != nil {
		t.Fatalf("category breakdown: %v", err)
	}
	if len(breakdown) != 2 {
		t.Fatalf("breakdown = %+v, want 2 buckets", breakdown)
	}

	byName := map[string]CategoryTotal{}
	for _, ct := range breakdown {
		byName[ct.CategoryName] = ct
	}
	g := byName["Groceries"]
	if !g.Total.Equal(decimal.NewFromInt(150)) || g.Count != 2 {
		t.Errorf("Groceries = %+v, want total 150 count 2", g)
	}
	u := byName["Uncategorized"]
	if !u.Total.Equal(decimal.NewFromInt(75)) || u.CategoryID != nil {
		t.Errorf("Uncategorized = %+v, want total 75 with nil category", u)
	}
}

func TestBudgetReport(t *testing.T) {
	f := setup(t)
	groceries, err := f.categories.Create(f.household.ID, "Groceries", model.KindExpense, 0)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := f.budgets.Create(f.household.ID, &groceries.ID, decimal.NewFromInt(200), "monthly"); err != nil {
		t.Fatalf("create category budget: %v", err)
	}
	if _, err := f.budgets.Create(f.household.ID, nil, decimal.NewFromInt(250), "monthly"); err != nil {
		t.Fatalf("create overall budget: %v", err)
	}

	f.spend(t, 180, &groceries.ID, 3)
	f.spend(t, 120, nil, 10)

	progress, err := f.svc.BudgetReport(f.sc, "2026-04")
	if err != nil {
		t.Fatalf("budget report: %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("progress = %+v, want 2 entries", progress)
	}

	for _, p := range progress {
		if p.Budget.CategoryID != nil {
			if !p.Spent.Equal(decimal.NewFromInt(180)) {
				t.Errorf("category Spent = %s, want 180", p.Spent)
			}
			if !p.Remaining.Equal(decimal.NewFromInt(20)) {
				t.Errorf("category Remaining = %s, want 20", p.Remaining)
			}
			if p.Exceeded {
				t.Error("category budget not exceeded at 180/200")
			}
		} else {
			if !p.Spent.Equal(decimal.NewFromInt(300)) {
				t.Errorf("overall Spent = %s, want 300", p.Spent)
			}
			if !p.Exceeded {
				t.Error("overall budget exceeded at 300/250")
			}
		}
	}
}
