package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/models"
)

// CreateAssignment persists a single item claim.
func (s *SQLiteStore) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO item_assignments (id, item_id, participant_id, amount, created_at) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.ItemID, a.ParticipantID, a.Amount.String(), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

// DeleteAssignment removes a participant's claim on an item.
func (s *SQLiteStore) DeleteAssignment(ctx context.Context, itemID, participantID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM item_assignments WHERE item_id = ? AND participant_id = ?",
		itemID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// DeleteAssignmentsForItem removes every claim on an item. Called when
// an item is edited so stale amounts never linger.
func (s *SQLiteStore) DeleteAssignmentsForItem(ctx context.Context, itemID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM item_assignments WHERE item_id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete assignments for item: %w", err)
	}
	return nil
}

// ReplaceItemAssignments swaps the full claim set for an item in one
// transaction. This backs the equal-split batch operation: last write
// wins when two participants race on the same item.
func (s *SQLiteStore) ReplaceItemAssignments(ctx context.Context, itemID string, assignments []models.Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM item_assignments WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}

	now := time.Now().Unix()
	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if a.CreatedAt == 0 {
			a.CreatedAt = now
		}
		a.ItemID = itemID

		_, err := tx.ExecContext(ctx,
			"INSERT INTO item_assignments (id, item_id, participant_id, amount, created_at) VALUES (?, ?, ?, ?, ?)",
			a.ID, a.ItemID, a.ParticipantID, a.Amount.String(), a.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetAssignments returns every assignment on the bill's items, in claim
// order.
func (s *SQLiteStore) GetAssignments(ctx context.Context, billID string) ([]models.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.item_id, a.participant_id, a.amount, a.created_at
		 FROM item_assignments a
		 JOIN bill_items i ON i.id = a.item_id
		 WHERE i.bill_id = ?
		 ORDER BY a.created_at, a.id`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		var amount string
		if err := rows.Scan(&a.ID, &a.ItemID, &a.ParticipantID, &amount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		a.Amount = d
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}
