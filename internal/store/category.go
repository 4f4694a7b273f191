package store

import (
	"database/sql"
	"fmt"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.Kind, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, household_id, name, kind, sort_order, created_at, updated_at`

func (s *CategoryStore) Create(householdID int64, name, kind string, sortOrder int) (*model.Category, error) {
	result, err := s.db.Exec(
		`INSERT INTO categories (household_id, name, kind, sort_order) VALUES (?, ?, ?, ?)`,
		householdID, name, kind, sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(scope.Household(householdID), id)
}

func (s *CategoryStore) GetByID(sc scope.Scope, id int64) (*model.Category, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories `+where, args...)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) List(sc scope.Scope) ([]model.Category, error) {
	where, args, err := sc.Where(scope.OrderBy("sort_order ASC, name ASC"))
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+categoryCols+` FROM categories `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *CategoryStore) Update(sc scope.Scope, id int64, name, kind string, sortOrder int) (*model.Category, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`UPDATE categories SET name = ?, kind = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append([]any{name, kind, sortOrder}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.GetByID(sc, id)
}

func (s *CategoryStore) Delete(sc scope.Scope, id int64) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM categories `+where, args...)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
