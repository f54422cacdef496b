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

// GetPaymentInfo retrieves the bank details for a bill.
func (s *SQLiteStore) GetPaymentInfo(ctx context.Context, billID string) (*models.PaymentInfo, error) {
	info := &models.PaymentInfo{}
	var bankName, accountNumber, accountName sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, bill_id, bank_name, account_number, account_name, created_at FROM payment_info WHERE bill_id = ?",
		billID,
	).Scan(&info.ID, &info.BillID, &bankName, &accountNumber, &accountName, &info.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: payment info for bill %s", storage.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment info: %w", err)
	}
	info.BankName = bankName.String
	info.AccountNumber = accountNumber.String
	info.AccountName = accountName.String
	return info, nil
}

// UpsertPaymentInfo creates or replaces the bank details for a bill.
func (s *SQLiteStore) UpsertPaymentInfo(ctx context.Context, info *models.PaymentInfo) error {
	if info.ID == "" {
		info.ID = uuid.New().String()
	}
	if info.CreatedAt == 0 {
		info.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_info (id, bill_id, bank_name, account_number, account_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(bill_id) DO UPDATE SET
		   bank_name = excluded.bank_name,
		   account_number = excluded.account_number,
		   account_name = excluded.account_name`,
		info.ID, info.BillID, info.BankName, info.AccountNumber, info.AccountName, info.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert payment info: %w", err)
	}
	return nil
}

// GetPaymentStatuses returns the payment status rows for a bill's
// participants. Participants without a row simply have no entry.
func (s *SQLiteStore) GetPaymentStatuses(ctx context.Context, billID string) ([]models.PaymentStatus, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ps.id, ps.participant_id, ps.is_paid, ps.paid_at, ps.created_at
		 FROM payment_status ps
		 JOIN participants p ON p.id = ps.participant_id
		 WHERE p.bill_id = ?`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment statuses: %w", err)
	}
	defer rows.Close()

	var statuses []models.PaymentStatus
	for rows.Next() {
		var st models.PaymentStatus
		var isPaid int
		var paidAt sql.NullInt64
		if err := rows.Scan(&st.ID, &st.ParticipantID, &isPaid, &paidAt, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment status: %w", err)
		}
		st.IsPaid = isPaid != 0
		if paidAt.Valid {
			t := time.Unix(paidAt.Int64, 0).UTC()
			st.PaidAt = &t
		}
		statuses = append(statuses, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment statuses: %w", err)
	}
	return statuses, nil
}

// SetPaymentStatus creates or updates the payment status for a
// participant and returns the resulting record. paidAt is stored as
// given: the service layer sets it on the unpaid-to-paid transition and
// clears it on the way back.
func (s *SQLiteStore) SetPaymentStatus(ctx context.Context, participantID string, isPaid bool, paidAt *time.Time) (*models.PaymentStatus, error) {
	st := &models.PaymentStatus{
		ID:            uuid.New().String(),
		ParticipantID: participantID,
		IsPaid:        isPaid,
		PaidAt:        paidAt,
		CreatedAt:     time.Now().Unix(),
	}

	var paidAtVal any
	if paidAt != nil {
		paidAtVal = paidAt.Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_status (id, participant_id, is_paid, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(participant_id) DO UPDATE SET
		   is_paid = excluded.is_paid,
		   paid_at = excluded.paid_at`,
		st.ID, st.ParticipantID, boolToInt(isPaid), paidAtVal, st.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set payment status: %w", err)
	}
	return st, nil
}
