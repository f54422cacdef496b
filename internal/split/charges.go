package split

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/money"
)

// chargePrecedence is the fixed application order for charges. Discounts
// apply first so later percentage charges compound on the reduced total.
// The order is owned here, not inferred from insertion or map iteration.
var chargePrecedence = map[models.ChargeType]int{
	models.ChargeDiscount: 0,
	models.ChargeTax:      1,
	models.ChargeService:  2,
	models.ChargeOther:    3,
}

var hundred = decimal.NewFromInt(100)

// ChargeLine is one applied charge in a composition breakdown.
type ChargeLine struct {
	ChargeID string
	Label    string
	Delta    decimal.Decimal
}

// Composition is the result of applying a bill's charges to its subtotal.
type Composition struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
	Lines    []ChargeLine
}

// ApplyCharges applies charges to subtotal in fixed type precedence
// (discount, tax, service, other), stable within a type by insertion order.
// Percentage charges apply to the running total after prior charges, not to
// the original subtotal, and each delta is rounded to the currency scale
// before it is added, so Total always equals Subtotal plus the sum of the
// returned line deltas.
//
// A negative value on a non-discount charge is passed through as-is and
// produces a negative delta.
func ApplyCharges(subtotal decimal.Decimal, charges []models.Charge) Composition {
	sorted := make([]models.Charge, len(charges))
	copy(sorted, charges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return chargePrecedence[sorted[i].Type] < chargePrecedence[sorted[j].Type]
	})

	total := subtotal.Round(money.Scale)
	lines := make([]ChargeLine, 0, len(sorted))
	for _, charge := range sorted {
		var delta decimal.Decimal
		if charge.IsPercentage {
			delta = total.Mul(charge.Value).Div(hundred).Round(money.Scale)
		} else {
			delta = charge.Value.Round(money.Scale)
		}
		if charge.Type == models.ChargeDiscount {
			delta = delta.Neg()
		}
		total = total.Add(delta)
		lines = append(lines, ChargeLine{
			ChargeID: charge.ID,
			Label:    chargeLabel(charge),
			Delta:    delta,
		})
	}

	return Composition{
		Subtotal: subtotal.Round(money.Scale),
		Total:    total,
		Lines:    lines,
	}
}

// chargeLabel renders a display label like "Pajak (10%)" or "Diskon (Rp 5.000)".
func chargeLabel(c models.Charge) string {
	if c.IsPercentage {
		return fmt.Sprintf("%s (%s%%)", c.Type.Label(), c.Value.String())
	}
	return fmt.Sprintf("%s (%s)", c.Type.Label(), money.Format(c.Value))
}
