package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the lifecycle state of a bill.
type BillStatus string

const (
	BillStatusDraft   BillStatus = "draft"
	BillStatusActive  BillStatus = "active"
	BillStatusSettled BillStatus = "settled"
)

// Bill represents a single shared-expense event. Items, charges and
// participants hang off it; the share code lets guests join without an
// account.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Name is the human-readable title of the bill.
	Name string

	// Date is when the expense happened.
	Date time.Time

	// Status is draft, active or settled. A settled bill is locked:
	// items and charges become read-only at the service layer.
	Status BillStatus

	// ShareCode is the public join token for guest participants.
	ShareCode string

	// CreatorID references the user who owns the bill.
	CreatorID string

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// Locked reports whether the bill rejects item/charge mutation.
func (b *Bill) Locked() bool {
	return b.Status == BillStatusSettled
}

// Item is a single priced line on a bill.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// BillID is the owning bill.
	BillID string

	// Name is the item description (e.g. "Nasi Goreng").
	Name string

	// UnitPrice is the exact decimal price of one unit.
	UnitPrice decimal.Decimal

	// Quantity is the number of units, always >= 1.
	Quantity int

	// CreatedAt is the Unix timestamp when the item was added.
	CreatedAt int64
}

// LineTotal is unit price times quantity.
func (i *Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Participant is a person with a claim/owing relationship to a bill,
// either a registered user or a share-code guest.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// BillID is the bill this participant belongs to.
	BillID string

	// UserID is the linked account, empty for guests. Guest identity is
	// an opaque participant id the client persists locally; the server
	// never inspects how it was stored.
	UserID string

	// DisplayName is shown in settlement views and the share summary.
	DisplayName string

	// CreatedAt is the Unix timestamp when the participant joined.
	CreatedAt int64
}

// Guest reports whether the participant has no linked account.
func (p *Participant) Guest() bool {
	return p.UserID == ""
}

// Assignment records that a participant owes an amount for an item.
// Several assignments may reference the same item (partial or equal
// splits); their sum should not exceed the item's line total, but that
// is advisory only and checked by the split package, not storage.
type Assignment struct {
	// ID is the unique identifier for the assignment (UUID format).
	ID string

	// ItemID is the claimed item.
	ItemID string

	// ParticipantID is who owes the amount.
	ParticipantID string

	// Amount is the exact decimal share of the item's line total.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the claim was made.
	CreatedAt int64
}
