// Package split implements the settlement calculation engine: equal-split
// allocation, ordered charge composition, assignment aggregation and the
// settlement view. Everything here is pure computation over caller-supplied
// snapshots; there is no IO, no caching and no hidden state, so identical
// inputs always produce identical outputs.
package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/money"
)

// ErrNoParticipants indicates an equal split was requested with nobody to
// split across.
var ErrNoParticipants = errors.New("equal split needs at least one participant")

// Share is one participant's portion of an equal split.
type Share struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// AllocateEqual distributes total across the given participants with no
// currency unit lost or created. Each participant gets the integer-cent
// floor of total/count; the leftover cents (always fewer than count) go one
// each to the first participants in input order. The positional tie-break
// keeps the result reproducible for a given participant order.
func AllocateEqual(total decimal.Decimal, participantIDs []string) ([]Share, error) {
	if len(participantIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: split total %s is negative", money.ErrInvalidAmount, total)
	}

	cents := money.Cents(total)
	count := int64(len(participantIDs))
	base := cents / count
	remainder := cents - base*count

	shares := make([]Share, len(participantIDs))
	for i, id := range participantIDs {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[i] = Share{ParticipantID: id, Amount: money.FromCents(c)}
	}
	return shares, nil
}
