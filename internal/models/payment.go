package models

import "time"

// PaymentInfo holds the bank details the creator shares so participants
// can transfer their share. One record per bill.
type PaymentInfo struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// BillID is the owning bill.
	BillID string

	BankName      string
	AccountNumber string
	AccountName   string

	// CreatedAt is the Unix timestamp when the info was first saved.
	CreatedAt int64
}

// PaymentStatus tracks whether a participant has paid their share.
// One logical record per participant per bill, independent of the
// assignment data. Mutated only by the bill creator.
type PaymentStatus struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// ParticipantID is who this status belongs to.
	ParticipantID string

	// IsPaid marks the share as settled.
	IsPaid bool

	// PaidAt is set when IsPaid transitions to true and cleared when it
	// is set back to false.
	PaidAt *time.Time

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}
