package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type RecurringStore struct {
	db *sql.DB
}

func NewRecurringStore(db *sql.DB) *RecurringStore {
	return &RecurringStore{db: db}
}

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.RecurringTemplate, error) {
	var t model.RecurringTemplate
	var categoryID sql.NullInt64
	var active int

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.UserID, &t.Kind, &t.Amount, &categoryID,
		&t.Description, &t.Interval, &t.NextRunDate, &active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Active = active != 0
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	return &t, nil
}

const templateCols = `id, household_id, user_id, kind, amount, category_id, description, interval, next_run_date, active, created_at, updated_at`

func (s *RecurringStore) Create(t model.RecurringTemplate) (*model.RecurringTemplate, error) {
	result, err := s.db.Exec(
		`INSERT INTO recurring_templates
		 (household_id, user_id, kind, amount, category_id, description, interval, next_run_date, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.HouseholdID, t.UserID, t.Kind, t.Amount, nullInt(t.CategoryID),
		t.Description, t.Interval, t.NextRunDate.UTC(), boolInt(t.Active),
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(scope.Household(t.HouseholdID), id)
}

func (s *RecurringStore) GetByID(sc scope.Scope, id int64) (*model.RecurringTemplate, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+templateCols+` FROM recurring_templates `+where, args...)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *RecurringStore) List(sc scope.Scope) ([]model.RecurringTemplate, error) {
	where, args, err := sc.Where(scope.OrderBy("next_run_date ASC, id ASC"))
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+templateCols+` FROM recurring_templates `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.RecurringTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// ListDue returns active templates whose next run is at or before now.
func (s *RecurringStore) ListDue(sc scope.Scope, now time.Time) ([]model.RecurringTemplate, error) {
	where, args, err := sc.Where(
		scope.Filter("active = 1"),
		scope.Filter("next_run_date <= ?", now.UTC()),
		scope.OrderBy("next_run_date ASC, id ASC"),
	)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+templateCols+` FROM recurring_templates `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list due templates: %w", err)
	}
	defer rows.Close()

	var templates []model.RecurringTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *RecurringStore) Update(sc scope.Scope, id int64, t model.RecurringTemplate) (*model.RecurringTemplate, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	setArgs := []any{
		t.Kind, t.Amount, nullInt(t.CategoryID), t.Description, t.Interval,
		t.NextRunDate.UTC(), boolInt(t.Active),
	}
	_, err = s.db.Exec(
		`UPDATE recurring_templates SET kind = ?, amount = ?, category_id = ?, description = ?, interval = ?,
		 next_run_date = ?, active = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append(setArgs, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.GetByID(sc, id)
}

func (s *RecurringStore) SetActive(sc scope.Scope, id int64, active bool) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE recurring_templates SET active = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append([]any{boolInt(active)}, args...)...,
	)
	if err != nil {
		return fmt.Errorf("set template active: %w", err)
	}
	return nil
}

func (s *RecurringStore) Delete(sc scope.Scope, id int64) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM recurring_templates `+where, args...)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// Materialize creates the ledger transaction for one due occurrence of a
// template and advances the template's schedule, in a single database
// transaction. The schedule advance is a conditional update keyed on the
// template's observed next_run_date: if another run advanced it first, zero
// rows match, the whole transaction rolls back, and Materialize reports
// (false, nil) so the caller counts the occurrence as already handled.
func (s *RecurringStore) Materialize(tmpl model.RecurringTemplate, next time.Time, currency string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE recurring_templates SET next_run_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND household_id = ? AND active = 1 AND next_run_date = ?`,
		next.UTC(), tmpl.ID, tmpl.HouseholdID, tmpl.NextRunDate.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("advance schedule: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Stale snapshot: deactivated or already materialized elsewhere.
		return false, nil
	}

	// The generated transaction is dated at the scheduled occurrence, not
	// at the time the job happened to run.
	_, err = tx.Exec(
		`INSERT INTO transactions
		 (household_id, user_id, kind, amount, currency, category_id, occurred_at, description, is_recurring)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		tmpl.HouseholdID, tmpl.UserID, tmpl.Kind, tmpl.Amount, currency,
		nullInt(tmpl.CategoryID), tmpl.NextRunDate.UTC(), tmpl.Description,
	)
	if err != nil {
		return false, fmt.Errorf("insert generated transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit materialization: %w", err)
	}
	return true, nil
}
