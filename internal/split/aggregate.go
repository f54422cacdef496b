package split

import (
	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/money"
)

// ItemShare is one assignment's contribution to a participant total.
type ItemShare struct {
	ItemID   string
	ItemName string
	Amount   decimal.Decimal
}

// ParticipantTotal is what one participant owes across the whole bill,
// with the itemized breakdown behind it.
type ParticipantTotal struct {
	ParticipantID   string
	ParticipantName string
	Amount          decimal.Decimal
	Items           []ItemShare
}

// Aggregate computes each participant's owed total from the assignment
// snapshot. The output preserves the participants' input order; assignments
// referencing unknown items or participants are skipped. Callers re-invoke
// it with a fresh snapshot after every claim round trip, so it must stay
// stateless and deterministic.
func Aggregate(items []models.Item, participants []models.Participant, assignments []models.Assignment) []ParticipantTotal {
	itemsByID := make(map[string]models.Item, len(items))
	for _, it := range items {
		itemsByID[it.ID] = it
	}

	totals := make([]ParticipantTotal, len(participants))
	index := make(map[string]int, len(participants))
	for i, p := range participants {
		totals[i] = ParticipantTotal{
			ParticipantID:   p.ID,
			ParticipantName: p.DisplayName,
			Amount:          money.Zero,
		}
		index[p.ID] = i
	}

	for _, a := range assignments {
		item, ok := itemsByID[a.ItemID]
		if !ok {
			continue
		}
		i, ok := index[a.ParticipantID]
		if !ok {
			continue
		}
		totals[i].Amount = totals[i].Amount.Add(a.Amount)
		totals[i].Items = append(totals[i].Items, ItemShare{
			ItemID:   item.ID,
			ItemName: item.Name,
			Amount:   a.Amount,
		})
	}

	return totals
}

// AssignedTotal sums the assignment amounts referencing the given item.
func AssignedTotal(itemID string, assignments []models.Assignment) decimal.Decimal {
	total := money.Zero
	for _, a := range assignments {
		if a.ItemID == itemID {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// UnclaimedItems returns the items no assignment references.
func UnclaimedItems(items []models.Item, assignments []models.Assignment) []models.Item {
	claimed := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		claimed[a.ItemID] = struct{}{}
	}

	var unclaimed []models.Item
	for _, it := range items {
		if _, ok := claimed[it.ID]; !ok {
			unclaimed = append(unclaimed, it)
		}
	}
	return unclaimed
}

// IsFullyAssigned reports whether the item's assignments cover its line
// total. The comparison is exact decimal, not floating point: an equally
// split item must compare fully assigned, never a cent short.
func IsFullyAssigned(item models.Item, assignments []models.Assignment) bool {
	return AssignedTotal(item.ID, assignments).GreaterThanOrEqual(item.LineTotal())
}

// IsOverAssigned reports whether the item's assignments exceed its line
// total. Over-assignment is a tolerated transient state during editing, so
// this is a queryable condition, not an error.
func IsOverAssigned(item models.Item, assignments []models.Assignment) bool {
	return AssignedTotal(item.ID, assignments).GreaterThan(item.LineTotal())
}

// OverAssignedItems returns the items whose assignments exceed their line
// totals, for the UI to warn about.
func OverAssignedItems(items []models.Item, assignments []models.Assignment) []models.Item {
	var over []models.Item
	for _, it := range items {
		if IsOverAssigned(it, assignments) {
			over = append(over, it)
		}
	}
	return over
}
