package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/storage"
)

// CreateItem persists a new line item.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO bill_items (id, bill_id, name, unit_price, quantity, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		item.ID, item.BillID, item.Name, item.UnitPrice.String(), item.Quantity, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// GetItem retrieves a single item by ID.
func (s *SQLiteStore) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, bill_id, name, unit_price, quantity, created_at FROM bill_items WHERE id = ?",
		itemID,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %s", storage.ErrNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// GetItems returns a bill's items in insertion order.
func (s *SQLiteStore) GetItems(ctx context.Context, billID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, bill_id, name, unit_price, quantity, created_at FROM bill_items WHERE bill_id = ? ORDER BY created_at, id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// UpdateItem updates an item's name, price and quantity.
func (s *SQLiteStore) UpdateItem(ctx context.Context, item *models.Item) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bill_items SET name = ?, unit_price = ?, quantity = ? WHERE id = ?",
		item.Name, item.UnitPrice.String(), item.Quantity, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: item %s", storage.ErrNotFound, item.ID)
	}
	return nil
}

// DeleteItem removes an item; its assignments cascade.
func (s *SQLiteStore) DeleteItem(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bill_items WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: item %s", storage.ErrNotFound, itemID)
	}
	return nil
}

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var unitPrice string
	if err := row.Scan(&item.ID, &item.BillID, &item.Name, &unitPrice, &item.Quantity, &item.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(unitPrice)
	if err != nil {
		return nil, fmt.Errorf("corrupt unit_price %q: %w", unitPrice, err)
	}
	item.UnitPrice = d
	return item, nil
}
