package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/storage"
)

// CreateCharge persists a new bill-level charge.
func (s *SQLiteStore) CreateCharge(ctx context.Context, c *models.Charge) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO charges (id, bill_id, type, value, is_percentage, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.BillID, string(c.Type), c.Value.String(), boolToInt(c.IsPercentage), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert charge: %w", err)
	}
	return nil
}

// GetCharges returns a bill's charges in insertion order. The split
// engine re-sorts them by type precedence; insertion order only breaks
// ties within a type.
func (s *SQLiteStore) GetCharges(ctx context.Context, billID string) ([]models.Charge, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, bill_id, type, value, is_percentage, created_at FROM charges WHERE bill_id = ? ORDER BY created_at, id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get charges: %w", err)
	}
	defer rows.Close()

	var charges []models.Charge
	for rows.Next() {
		var c models.Charge
		var typ, value string
		var isPercentage int
		if err := rows.Scan(&c.ID, &c.BillID, &typ, &value, &isPercentage, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan charge: %w", err)
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("corrupt charge value %q: %w", value, err)
		}
		c.Type = models.ChargeType(typ)
		c.Value = d
		c.IsPercentage = isPercentage != 0
		charges = append(charges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate charges: %w", err)
	}
	return charges, nil
}

// UpdateCharge updates a charge's type, value and percentage flag.
func (s *SQLiteStore) UpdateCharge(ctx context.Context, c *models.Charge) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE charges SET type = ?, value = ?, is_percentage = ? WHERE id = ?",
		string(c.Type), c.Value.String(), boolToInt(c.IsPercentage), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update charge: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: charge %s", storage.ErrNotFound, c.ID)
	}
	return nil
}

// DeleteCharge removes a charge.
func (s *SQLiteStore) DeleteCharge(ctx context.Context, chargeID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM charges WHERE id = ?", chargeID)
	if err != nil {
		return fmt.Errorf("failed to delete charge: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: charge %s", storage.ErrNotFound, chargeID)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
