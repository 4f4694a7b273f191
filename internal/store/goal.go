package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

func scanGoal(scanner interface{ Scan(...any) error }) (*model.Goal, error) {
	var g model.Goal
	var targetDate sql.NullTime
	var achieved int
	err := scanner.Scan(
		&g.ID, &g.HouseholdID, &g.Name, &g.TargetAmount, &g.SavedAmount,
		&targetDate, &achieved, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Achieved = achieved != 0
	if targetDate.Valid {
		g.TargetDate = &targetDate.Time
	}
	return &g, nil
}

const goalCols = `id, household_id, name, target_amount, saved_amount, target_date, achieved, created_at, updated_at`

func (s *GoalStore) Create(householdID int64, name string, target decimal.Decimal, targetDate *time.Time) (*model.Goal, error) {
	var td sql.NullTime
	if targetDate != nil {
		td = sql.NullTime{Time: targetDate.UTC(), Valid: true}
	}
	result, err := s.db.Exec(
		`INSERT INTO goals (household_id, name, target_amount, target_date) VALUES (?, ?, ?, ?)`,
		householdID, name, target, td,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(scope.Household(householdID), id)
}

func (s *GoalStore) GetByID(sc scope.Scope, id int64) (*model.Goal, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+goalCols+` FROM goals `+where, args...)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (s *GoalStore) List(sc scope.Scope) ([]model.Goal, error) {
	where, args, err := sc.Where(scope.OrderBy("achieved ASC, target_date ASC, name ASC"))
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+goalCols+` FROM goals `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *GoalStore) Update(sc scope.Scope, id int64, name string, target decimal.Decimal, targetDate *time.Time) (*model.Goal, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	var td sql.NullTime
	if targetDate != nil {
		td = sql.NullTime{Time: targetDate.UTC(), Valid: true}
	}
	_, err = s.db.Exec(
		`UPDATE goals SET name = ?, target_amount = ?, target_date = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append([]any{name, target, td}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return s.GetByID(sc, id)
}

// Contribute adds to a goal's saved amount and marks it achieved when the
// target is reached, in one transaction.
func (s *GoalStore) Contribute(sc scope.Scope, id int64, amount decimal.Decimal) (*model.Goal, error) {
	goal, err := s.GetByID(sc, id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}

	newSaved := goal.SavedAmount.Add(amount)
	achieved := 0
	if newSaved.GreaterThanOrEqual(goal.TargetAmount) {
		achieved = 1
	}

	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`UPDATE goals SET saved_amount = ?, achieved = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append([]any{newSaved, achieved}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("contribute to goal: %w", err)
	}
	return s.GetByID(sc, id)
}

func (s *GoalStore) Delete(sc scope.Scope, id int64) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM goals `+where, args...)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}
