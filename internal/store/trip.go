package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type TripStore struct {
	db *sql.DB
}

func NewTripStore(db *sql.DB) *TripStore {
	return &TripStore{db: db}
}

func scanTrip(scanner interface{ Scan(...any) error }) (*model.Trip, error) {
	var t model.Trip
	var start, end sql.NullTime
	err := scanner.Scan(&t.ID, &t.HouseholdID, &t.Name, &start, &end, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		t.StartDate = &start.Time
	}
	if end.Valid {
		t.EndDate = &end.Time
	}
	return &t, nil
}

const tripCols = `id, household_id, name, start_date, end_date, created_at, updated_at`

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: p.UTC(), Valid: true}
}

func (s *TripStore) Create(householdID int64, name string, start, end *time.Time) (*model.Trip, error) {
	result, err := s.db.Exec(
		`INSERT INTO trips (household_id, name, start_date, end_date) VALUES (?, ?, ?, ?)`,
		householdID, name, nullTime(start), nullTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("insert trip: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(scope.Household(householdID), id)
}

func (s *TripStore) GetByID(sc scope.Scope, id int64) (*model.Trip, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+tripCols+` FROM trips `+where, args...)
	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

func (s *TripStore) List(sc scope.Scope) ([]model.Trip, error) {
	where, args, err := sc.Where(scope.OrderBy("start_date DESC, name ASC"))
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+tripCols+` FROM trips `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []model.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (s *TripStore) Update(sc scope.Scope, id int64, name string, start, end *time.Time) (*model.Trip, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`UPDATE trips SET name = ?, start_date = ?, end_date = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append([]any{name, nullTime(start), nullTime(end)}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}
	return s.GetByID(sc, id)
}

func (s *TripStore) Delete(sc scope.Scope, id int64) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM trips `+where, args...)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}
