package store

import (
	"database/sql"
	"fmt"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type PaymentMethodStore struct {
	db *sql.DB
}

func NewPaymentMethodStore(db *sql.DB) *PaymentMethodStore {
	return &PaymentMethodStore{db: db}
}

func scanPaymentMethod(scanner interface{ Scan(...any) error }) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.Name, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const paymentMethodCols = `id, household_id, name, sort_order, created_at, updated_at`

func (s *PaymentMethodStore) Create(householdID int64, name string, sortOrder int) (*model.PaymentMethod, error) {
	result, err := s.db.Exec(
		`INSERT INTO payment_methods (household_id, name, sort_order) VALUES (?, ?, ?)`,
		householdID, name, sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment method: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(scope.Household(householdID), id)
}

func (s *PaymentMethodStore) GetByID(sc scope.Scope, id int64) (*model.PaymentMethod, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+paymentMethodCols+` FROM payment_methods `+where, args...)
	m, err := scanPaymentMethod(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment method: %w", err)
	}
	return m, nil
}

func (s *PaymentMethodStore) List(sc scope.Scope) ([]model.PaymentMethod, error) {
	where, args, err := sc.Where(scope.OrderBy("sort_order ASC, name ASC"))
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+paymentMethodCols+` FROM payment_methods `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []model.PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, *m)
	}
	return methods, rows.Err()
}

func (s *PaymentMethodStore) Update(sc scope.Scope, id int64, name string, sortOrder int) (*model.PaymentMethod, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`UPDATE payment_methods SET name = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append([]any{name, sortOrder}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update payment method: %w", err)
	}
	return s.GetByID(sc, id)
}

func (s *PaymentMethodStore) Delete(sc scope.Scope, id int64) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM payment_methods `+where, args...)
	if err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	return nil
}
