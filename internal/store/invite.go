package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
)

const inviteTTL = 7 * 24 * time.Hour

type InviteStore struct {
	db *sql.DB
}

func NewInviteStore(db *sql.DB) *InviteStore {
	return &InviteStore{db: db}
}

func scanInvite(scanner interface{ Scan(...any) error }) (*model.Invite, error) {
	var i model.Invite
	var accepted int
	err := scanner.Scan(&i.ID, &i.Token, &i.HouseholdID, &i.Email, &i.Role, &accepted, &i.ExpiresAt, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	i.Accepted = accepted != 0
	return &i, nil
}

const inviteCols = `id, token, household_id, email, role, accepted, expires_at, created_at`

func (s *InviteStore) Create(householdID int64, email, role string) (*model.Invite, error) {
	token := uuid.NewString()
	expiresAt := time.Now().UTC().Add(inviteTTL)

	result, err := s.db.Exec(
		`INSERT INTO invites (token, household_id, email, role, expires_at) VALUES (?, ?, ?, ?, ?)`,
		token, householdID, strings.ToLower(strings.TrimSpace(email)), role, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invite: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+inviteCols+` FROM invites WHERE id = ?`, id)
	return scanInvite(row)
}

// GetByToken returns a pending invite, or nil if it is missing, accepted, or
// expired.
func (s *InviteStore) GetByToken(token string) (*model.Invite, error) {
	row := s.db.QueryRow(
		`SELECT `+inviteCols+` FROM invites WHERE token = ? AND accepted = 0 AND expires_at > datetime('now')`,
		token,
	)
	i, err := scanInvite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invite by token: %w", err)
	}
	return i, nil
}

func (s *InviteStore) MarkAccepted(id int64) error {
	_, err := s.db.Exec(`UPDATE invites SET accepted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	return nil
}

func (s *InviteStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM invites WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, fmt.Errorf("delete expired invites: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
