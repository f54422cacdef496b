package models

import "github.com/shopspring/decimal"

// ChargeType is a closed enumeration of bill-level adjustments.
// The application order of charges is determined by the type, never by
// insertion order; the precedence table lives in the split package.
type ChargeType string

const (
	ChargeDiscount ChargeType = "discount"
	ChargeTax      ChargeType = "tax"
	ChargeService  ChargeType = "service"
	ChargeOther    ChargeType = "other"
)

// Valid reports whether t is one of the known charge types.
func (t ChargeType) Valid() bool {
	switch t {
	case ChargeDiscount, ChargeTax, ChargeService, ChargeOther:
		return true
	}
	return false
}

// Label is the Indonesian display name used in breakdowns and the UI.
func (t ChargeType) Label() string {
	switch t {
	case ChargeTax:
		return "Pajak"
	case ChargeService:
		return "Layanan"
	case ChargeDiscount:
		return "Diskon"
	default:
		return "Lainnya"
	}
}

// Charge is a tax/service/discount/other adjustment applied to the item
// subtotal.
type Charge struct {
	// ID is the unique identifier for the charge (UUID format).
	ID string

	// BillID is the owning bill.
	BillID string

	// Type decides the application order and the sign (discounts reduce
	// the running total).
	Type ChargeType

	// Value is either a percentage (e.g. 10 for 10%) or a fixed decimal
	// amount, depending on IsPercentage.
	Value decimal.Decimal

	// IsPercentage selects percentage-of-running-total semantics.
	IsPercentage bool

	// CreatedAt is the Unix timestamp when the charge was added. Also
	// the tie-break for charges of the same type (insertion order).
	CreatedAt int64
}
