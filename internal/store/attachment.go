package store

import (
	"database/sql"
	"fmt"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type AttachmentStore struct {
	db *sql.DB
}

func NewAttachmentStore(db *sql.DB) *AttachmentStore {
	return &AttachmentStore{db: db}
}

func scanAttachment(scanner interface{ Scan(...any) error }) (*model.Attachment, error) {
	var a model.Attachment
	err := scanner.Scan(
		&a.ID, &a.TransactionID, &a.HouseholdID, &a.FileName,
		&a.ContentType, &a.SizeBytes, &a.ObjectKey, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const attachmentCols = `id, transaction_id, household_id, file_name, content_type, size_bytes, object_key, created_at`

func (s *AttachmentStore) Create(a model.Attachment) (*model.Attachment, error) {
	result, err := s.db.Exec(
		`INSERT INTO attachments (transaction_id, household_id, file_name, content_type, size_bytes, object_key)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.TransactionID, a.HouseholdID, a.FileName, a.ContentType, a.SizeBytes, a.ObjectKey,
	)
	if err != nil {
		return nil, fmt.Errorf("insert attachment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(scope.Household(a.HouseholdID), id)
}

func (s *AttachmentStore) GetByID(sc scope.Scope, id int64) (*model.Attachment, error) {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+attachmentCols+` FROM attachments `+where, args...)
	a, err := scanAttachment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return a, nil
}

func (s *AttachmentStore) ListByTransaction(sc scope.Scope, transactionID int64) ([]model.Attachment, error) {
	where, args, err := sc.Where(
		scope.Filter("transaction_id = ?", transactionID),
		scope.OrderBy("created_at ASC, id ASC"),
	)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+attachmentCols+` FROM attachments `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []model.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, *a)
	}
	return attachments, rows.Err()
}

func (s *AttachmentStore) Delete(sc scope.Scope, id int64) error {
	where, args, err := sc.Where(scope.Filter("id = ?", id))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM attachments `+where, args...)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}
