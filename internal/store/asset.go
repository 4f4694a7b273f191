package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type AssetStore struct {
	db *sql.DB
}

func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

func scanAsset(scanner interface{ Scan(...any) error }) (*model.Asset, error) {
	var a model.Asset
	err := scanner.Scan(&a.ID, &a.HouseholdID, &a.Name, &a.Kind, &a.Value, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const assetCols = `id, household_id, name, kind, value, created_at, updated_at`

func (s *AssetStore) Create(householdID int64, name, kind string, value decimal.Decimal) (*model.Asset, error) {
	result, err := s.db.Exec(
		`INSERT INTO assets (household_id, name, kind, value) VALUES (?, ?, ?, ?)`,
		householdID, name, kind, value,
	)
	if err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(scope.Household(householdID), id)
}

func (s *AssetStore) GetByID(sc scope.Scope, id int64) (*model.Asset, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+assetCols+` FROM assets `+where, args...)
	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

func (s *AssetStore) List(sc scope.Scope) ([]model.Asset, error) {
	where, args, err := sc.Where(scope.OrderBy("kind ASC, name ASC"))
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+assetCols+` FROM assets `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

func (s *AssetStore) Update(sc scope.Scope, id int64, name, kind string, value decimal.Decimal) (*model.Asset, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`UPDATE assets SET name = ?, kind = ?, value = ?, updated_at = CURRENT_TIMESTAMP `+where,
		append([]any{name, kind, value}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("update asset: %w", err)
	}
	return s.GetByID(sc, id)
}

func (s *AssetStore) Delete(sc scope.Scope, id int64) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM assets `+where, args...)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}
