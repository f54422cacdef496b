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

// CreateParticipant persists a new participant (registered or guest).
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	var userID any
	if p.UserID != "" {
		userID = p.UserID
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO participants (id, bill_id, user_id, display_name, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.BillID, userID, p.DisplayName, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// GetParticipant retrieves a participant by ID.
func (s *SQLiteStore) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, bill_id, user_id, display_name, created_at FROM participants WHERE id = ?",
		id,
	)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: participant %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// GetParticipants returns a bill's participants in join order.
func (s *SQLiteStore) GetParticipants(ctx context.Context, billID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, bill_id, user_id, display_name, created_at FROM participants WHERE bill_id = ? ORDER BY created_at, id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	p := &models.Participant{}
	var userID sql.NullString
	if err := row.Scan(&p.ID, &p.BillID, &userID, &p.DisplayName, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.UserID = userID.String
	return p, nil
}
