package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.Transaction, error) {
	var t model.Transaction
	var categoryID, paymentMethodID, tripID, spentBy sql.NullInt64
	var isRecurring, isPersonal int

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.UserID, &t.Kind, &t.Amount, &t.Currency,
		&categoryID, &paymentMethodID, &tripID, &t.OccurredAt, &t.Description,
		&isRecurring, &isPersonal, &spentBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.IsRecurring = isRecurring != 0
	t.IsPersonal = isPersonal != 0
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if paymentMethodID.Valid {
		t.PaymentMethodID = &paymentMethodID.Int64
	}
	if tripID.Valid {
		t.TripID = &tripID.Int64
	}
	if spentBy.Valid {
		t.SpentBy = &spentBy.Int64
	}
	return &t, nil
}

const transactionCols = `id, household_id, user_id, kind, amount, currency, category_id, payment_method_id, trip_id, occurred_at, description, is_recurring, is_personal, spent_by, created_at, updated_at`

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *TransactionStore) Create(t model.Transaction) (*model.Transaction, error) {
	result, err := s.db.Exec(
		`INSERT INTO transactions
		 (household_id, user_id, kind, amount, currency, category_id, payment_method_id, trip_id, occurred_at, description, is_recurring, is_personal, spent_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.HouseholdID, t.UserID, t.Kind, t.Amount, t.Currency,
		nullInt(t.CategoryID), nullInt(t.PaymentMethodID), nullInt(t.TripID),
		t.OccurredAt.UTC(), t.Description, boolInt(t.IsRecurring), boolInt(t.IsPersonal), nullInt(t.SpentBy),
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(scope.Household(t.HouseholdID), id)
}

func (s *TransactionStore) GetByID(sc scope.Scope, id int64) (*model.Transaction, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+transactionCols+` FROM transactions `+where, args...)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// TransactionFilter narrows List beyond the mandatory scope.
type TransactionFilter struct {
	Kind       string
	CategoryID int64
	TripID     int64
	From       time.Time
	To         time.Time
	Limit      int
}

func (s *TransactionStore) List(sc scope.Scope, f TransactionFilter) ([]model.Transaction, error) {
	var clauses []scope.Clause
	if f.Kind != "" {
		clauses = append(clauses, scope.Filter("kind = ?", f.Kind))
	}
	if f.CategoryID != 0 {
		clauses = append(clauses, scope.Filter("category_id = ?", f.CategoryID))
	}
	if f.TripID != 0 {
		clauses = append(clauses, scope.Filter("trip_id = ?", f.TripID))
	}
	if !f.From.IsZero() {
		clauses = append(clauses, scope.Filter("occurred_at >= ?", f.From.UTC()))
	}
	if !f.To.IsZero() {
		clauses = append(clauses, scope.Filter("occurred_at < ?", f.To.UTC()))
	}
	clauses = append(clauses, scope.OrderBy("occurred_at DESC, id DESC"))
	if f.Limit > 0 {
		clauses = append(clauses, scope.Limit(f.Limit))
	}

	where, args, err := sc.Where(clauses...)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT `+transactionCols+` FROM transactions `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (s *TransactionStore) Update(sc scope.Scope, id int64, t model.Transaction) (*model.Transaction, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	setArgs := []any{
		t.Kind, t.Amount, t.Currency, nullInt(t.CategoryID), nullInt(t.PaymentMethodID),
		nullInt(t.TripID), t.OccurredAt.UTC(), t.Description, boolInt(t.IsPersonal), nullInt(t.SpentBy),
	}
	_, err = s.db.Exec(
		`UPDATE transactions SET kind = ?, amount = ?, currency = ?, category_id = ?, payment_method_id = ?,
		 trip_id = ?, occurred_at = ?, description = ?, is_personal = ?, spent_by = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append(setArgs, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return s.GetByID(sc, id)
}

func (s *TransactionStore) Delete(sc scope.Scope, id int64) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM transactions `+where, args...)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}
