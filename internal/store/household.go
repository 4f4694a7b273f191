package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
)

// ErrNameTaken is returned when a household name is already in use
// (case-insensitive).
var ErrNameTaken = errors.New("household name already taken")

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.Name, &h.NameLower, &h.Currency, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHouseholdMember(scanner interface{ Scan(...any) error }) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const householdCols = `id, name, name_lower, currency, created_at, updated_at`
const householdMemberCols = `id, household_id, user_id, role, created_at, updated_at`

func (s *HouseholdStore) Create(name, currency string) (*model.Household, error) {
	if currency == "" {
		currency = "USD"
	}
	nameLower := strings.ToLower(strings.TrimSpace(name))
	existing, err := s.GetByNameLower(nameLower)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrNameTaken
	}

	result, err := s.db.Exec(
		`INSERT INTO households (name, name_lower, currency) VALUES (?, ?, ?)`,
		strings.TrimSpace(name), nameLower, currency,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByNameLower(nameLower string) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE name_lower = ?`, nameLower)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by name: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) Update(id int64, name, currency string) (*model.Household, error) {
	_, err := s.db.Exec(
		`UPDATE households SET name = ?, name_lower = ?, currency = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(name)), currency, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return nil
}

func (s *HouseholdStore) AddMember(householdID, userID int64, role string) (*model.HouseholdMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO household_members (household_id, user_id, role) VALUES (?, ?, ?)`,
		householdID, userID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+householdMemberCols+` FROM household_members WHERE id = ?`, id)
	return scanHouseholdMember(row)
}

func (s *HouseholdStore) RemoveMember(householdID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *HouseholdStore) GetMember(householdID, userID int64) (*model.HouseholdMember, error) {
	row := s.db.QueryRow(
		`SELECT `+householdMemberCols+` FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	)
	m, err := scanHouseholdMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *HouseholdStore) ListMembers(householdID int64) ([]model.HouseholdMember, error) {
	rows, err := s.db.Query(
		`SELECT `+householdMemberCols+` FROM household_members WHERE household_id = ? ORDER BY created_at ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.HouseholdMember
	for rows.Next() {
		m, err := scanHouseholdMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *HouseholdStore) ListHouseholdsForUser(userID int64) ([]model.Household, error) {
	rows, err := s.db.Query(
		`SELECT h.`+strings.ReplaceAll(householdCols, ", ", ", h.")+`
		 FROM households h
		 JOIN household_members hm ON h.id = hm.household_id
		 WHERE hm.user_id = ?
		 ORDER BY h.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list households for user: %w", err)
	}
	defer rows.Close()

	var households []model.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		households = append(households, *h)
	}
	return households, rows.Err()
}

func (s *HouseholdStore) UpdateMemberRole(householdID, userID int64, role string) (*model.HouseholdMember, error) {
	_, err := s.db.Exec(
		`UPDATE household_members SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE household_id = ? AND user_id = ?`,
		role, householdID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update member role: %w", err)
	}
	return s.GetMember(householdID, userID)
}

// ListIDs returns every household id. Used by the recurring scheduler.
func (s *HouseholdStore) ListIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM households ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list household ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan household id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SeedDefaults inserts default categories and payment methods for a new
// household in a single transaction.
func (s *HouseholdStore) SeedDefaults(householdID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	categories := []struct {
		name      string
		kind      string
		sortOrder int
	}{
		{"Groceries", model.KindExpense, 1},
		{"Rent & Utilities", model.KindExpense, 2},
		{"Transport", model.KindExpense, 3},
		{"Dining Out", model.KindExpense, 4},
		{"Health", model.KindExpense, 5},
		{"Entertainment", model.KindExpense, 6},
		{"Travel", model.KindExpense, 7},
		{"Other", model.KindExpense, 8},
		{"Salary", model.KindIncome, 9},
		{"Other Income", model.KindIncome, 10},
	}
	for _, c := range categories {
		if _, err := tx.Exec(
			`INSERT INTO categories (household_id, name, kind, sort_order) VALUES (?, ?, ?, ?)`,
			householdID, c.name, c.kind, c.sortOrder,
		); err != nil {
			return fmt.Errorf("seed category %q: %w", c.name, err)
		}
	}

	methods := []struct {
		name      string
		sortOrder int
	}{
		{"Cash", 1}, {"Debit Card", 2}, {"Credit Card", 3}, {"Bank Transfer", 4},
	}
	for _, m := range methods {
		if _, err := tx.Exec(
			`INSERT INTO payment_methods (household_id, name, sort_order) VALUES (?, ?, ?)`,
			householdID, m.name, m.sortOrder,
		); err != nil {
			return fmt.Errorf("seed payment method %q: %w", m.name, err)
		}
	}

	return tx.Commit()
}
