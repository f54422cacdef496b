package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/storage"
)

const billColumns = "id, name, date, status, share_code, creator_id, created_at"

// CreateBill persists a new bill.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Date.IsZero() {
		bill.Date = time.Now()
	}
	if bill.Status == "" {
		bill.Status = models.BillStatusActive
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO bills ("+billColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.Name, bill.Date.Unix(), string(bill.Status), bill.ShareCode, bill.CreatorID, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	return s.getBill(ctx, "id", billID)
}

// GetBillByShareCode retrieves a bill by its public share code.
func (s *SQLiteStore) GetBillByShareCode(ctx context.Context, code string) (*models.Bill, error) {
	return s.getBill(ctx, "share_code", code)
}

func (s *SQLiteStore) getBill(ctx context.Context, column, value string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE "+column+" = ?", value)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bill %s=%s", storage.ErrNotFound, column, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListBillsByCreator returns a user's bills, oldest first.
func (s *SQLiteStore) ListBillsByCreator(ctx context.Context, creatorID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE creator_id = ? ORDER BY created_at",
		creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// UpdateBill updates a bill's name, date and status.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET name = ?, date = ?, status = ? WHERE id = ?",
		bill.Name, bill.Date.Unix(), string(bill.Status), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: bill %s", storage.ErrNotFound, bill.ID)
	}
	return nil
}

// DeleteBill removes a bill; items, participants, charges and payment
// records cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: bill %s", storage.ErrNotFound, billID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var date int64
	var status string
	if err := row.Scan(&bill.ID, &bill.Name, &date, &status, &bill.ShareCode, &bill.CreatorID, &bill.CreatedAt); err != nil {
		return nil, err
	}
	bill.Date = time.Unix(date, 0).UTC()
	bill.Status = models.BillStatus(status)
	return bill, nil
}
