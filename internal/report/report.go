// Package report produces spending summaries for dashboards: monthly
// totals, per-category breakdowns, and budget progress. Totals are computed
// in decimal from the ledger rows rather than in SQL, so amounts never pass
// through floating point.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
)

type Service struct {
	txns       *store.TransactionStore
	budgets    *store.BudgetStore
	categories *store.CategoryStore
}

func NewService(ts *store.TransactionStore, bs *store.BudgetStore, cs *store.CategoryStore) *Service {
	return &Service{txns: ts, budgets: bs, categories: cs}
}

// MonthRange returns [start, end) for a month given as "2006-01".
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// Summary is one month's totals for a household.
type Summary struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}

func (s *Service) MonthlySummary(sc scope.Scope, month string) (*Summary, error) {
	from, to, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	txns, err := s.txns.List(sc, store.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list month transactions: %w", err)
	}

	sum := &Summary{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range txns {
		switch t.Kind {
		case model.KindIncome:
			sum.Income = sum.Income.Add(t.Amount)
		case model.KindExpense:
			sum.Expense = sum.Expense.Add(t.Amount)
		}
		sum.Count++
	}
	sum.Net = sum.Income.Sub(sum.Expense)
	return sum, nil
}

// CategoryTotal is one category's spend for a month.
type CategoryTotal struct {
	CategoryID   *int64          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}

// CategoryBreakdown totals expense spending per category for a month.
// Uncategorized spending appears under a nil category id.
func (s *Service) CategoryBreakdown(sc scope.Scope, month string) ([]CategoryTotal, error) {
	from, to, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	txns, err := s.txns.List(sc, store.TransactionFilter{Kind: model.KindExpense, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list month expenses: %w", err)
	}
	categories, err := s.categories.List(sc)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	totals := make(map[int64]*CategoryTotal)
	order := []int64{}
	for _, t := range txns {
		var key int64
		if t.CategoryID != nil {
			key = *t.CategoryID
		}
		ct, ok := totals[key]
		if !ok {
			ct = &CategoryTotal{Total: decimal.Zero}
			if t.CategoryID != nil {
				id := *t.CategoryID
				ct.CategoryID = &id
				ct.CategoryName = names[id]
			} else {
				ct.CategoryName = "Uncategorized"
			}
			totals[key] = ct
			order = append(order, key)
		}
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, key := range order {
		out = append(out, *totals[key])
	}
	return out, nil
}

// BudgetProgress compares a budget's cap with the month's actual spend.
type BudgetProgress struct {
	Budget    model.Budget    `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Exceeded  bool            `json:"exceeded"`
}

func (s *Service) BudgetReport(sc scope.Scope, month string) ([]BudgetProgress, error) {
	from, to, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgets.List(sc)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	txns, err := s.txns.List(sc, store.TransactionFilter{Kind: model.KindExpense, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list month expenses: %w", err)
	}

	total := decimal.Zero
	byCategory := make(map[int64]decimal.Decimal)
	for _, t := range txns {
		total = total.Add(t.Amount)
		if t.CategoryID != nil {
			byCategory[*t.CategoryID] = byCategory[*t.CategoryID].Add(t.Amount)
		}
	}

	out := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		spent := total
		if b.CategoryID != nil {
			spent = byCategory[*b.CategoryID]
		}
		out = append(out, BudgetProgress{
			Budget:    b,
			Spent:     spent,
			Remaining: b.Amount.Sub(spent),
			Exceeded:  spent.GreaterThan(b.Amount),
		})
	}
	return out, nil
}
