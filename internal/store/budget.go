package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type BudgetStore struct {
	db *sql.DB
}

func NewBudgetStore(db *sql.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

func scanBudget(scanner interface{ Scan(...any) error }) (*model.Budget, error) {
	var b model.Budget
	var categoryID sql.NullInt64
	err := scanner.Scan(&b.ID, &b.HouseholdID, &categoryID, &b.Amount, &b.Period, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		b.CategoryID = &categoryID.Int64
	}
	return &b, nil
}

const budgetCols = `id, household_id, category_id, amount, period, created_at, updated_at`

func (s *BudgetStore) Create(householdID int64, categoryID *int64, amount decimal.Decimal, period string) (*model.Budget, error) {
	if period == "" {
		period = "monthly"
	}
	result, err := s.db.Exec(
		`INSERT INTO budgets (household_id, category_id, amount, period) VALUES (?, ?, ?, ?)`,
		householdID, nullInt(categoryID), amount, period,
	)
	if err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(scope.Household(householdID), id)
}

func (s *BudgetStore) GetByID(sc scope.Scope, id int64) (*model.Budget, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+budgetCols+` FROM budgets `+where, args...)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *BudgetStore) List(sc scope.Scope) ([]model.Budget, error) {
	where, args, err := sc.Where(scope.OrderBy("category_id IS NOT NULL, category_id ASC"))
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+budgetCols+` FROM budgets `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (s *BudgetStore) Update(sc scope.Scope, id int64, categoryID *int64, amount decimal.Decimal, period string) (*model.Budget, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`UPDATE budgets SET category_id = ?, amount = ?, period = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append([]any{nullInt(categoryID), amount, period}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return s.GetByID(sc, id)
}

func (s *BudgetStore) Delete(sc scope.Scope, id int64) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM budgets `+where, args...)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}
