// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/splityuk/splityuk/internal/models"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for bill storage operations. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer. All monetary values are persisted
// as exact decimal strings, never as floats.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Bills.
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	GetBillByShareCode(ctx context.Context, code string) (*models.Bill, error)
	ListBillsByCreator(ctx context.Context, creatorID string) ([]models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error
	DeleteBill(ctx context.Context, billID string) error

	// Items.
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	GetItems(ctx context.Context, billID string) ([]models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, itemID string) error

	// Participants.
	CreateParticipant(ctx context.Context, p *models.Participant) error
	GetParticipant(ctx context.Context, id string) (*models.Participant, error)
	GetParticipants(ctx context.Context, billID string) ([]models.Participant, error)

	// Assignments. ReplaceItemAssignments swaps an item's full claim set
	// in one transaction (the equal-split batch operation).
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	DeleteAssignment(ctx context.Context, itemID, participantID string) error
	DeleteAssignmentsForItem(ctx context.Context, itemID string) error
	ReplaceItemAssignments(ctx context.Context, itemID string, assignments []models.Assignment) error
	GetAssignments(ctx context.Context, billID string) ([]models.Assignment, error)

	// Charges.
	CreateCharge(ctx context.Context, c *models.Charge) error
	GetCharges(ctx context.Context, billID string) ([]models.Charge, error)
	UpdateCharge(ctx context.Context, c *models.Charge) error
	DeleteCharge(ctx context.Context, chargeID string) error

	// Payment info and status.
	GetPaymentInfo(ctx context.Context, billID string) (*models.PaymentInfo, error)
	UpsertPaymentInfo(ctx context.Context, info *models.PaymentInfo) error
	GetPaymentStatuses(ctx context.Context, billID string) ([]models.PaymentStatus, error)
	SetPaymentStatus(ctx context.Context, participantID string, isPaid bool, paidAt *time.Time) (*models.PaymentStatus, error)

	// Groups.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsByCreator(ctx context.Context, creatorID string) ([]models.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error

	// Close releases any resources held by the store.
	Close() error
}
