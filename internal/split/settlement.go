package split

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/money"
)

// SettlementEntry is one row of the "who owes how much, who has paid"
// summary.
type SettlementEntry struct {
	ParticipantID   string
	ParticipantName string
	Amount          decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
}

// BuildSettlement left-joins aggregated totals with payment statuses by
// participant id. A participant without a status record settles to
// unpaid with a nil PaidAt. Output order follows the totals' order.
func BuildSettlement(totals []ParticipantTotal, statuses []models.PaymentStatus) []SettlementEntry {
	byParticipant := make(map[string]models.PaymentStatus, len(statuses))
	for _, s := range statuses {
		byParticipant[s.ParticipantID] = s
	}

	entries := make([]SettlementEntry, len(totals))
	for i, t := range totals {
		entry := SettlementEntry{
			ParticipantID:   t.ParticipantID,
			ParticipantName: t.ParticipantName,
			Amount:          t.Amount,
		}
		if s, ok := byParticipant[t.ParticipantID]; ok {
			entry.IsPaid = s.IsPaid
			entry.PaidAt = s.PaidAt
		}
		entries[i] = entry
	}
	return entries
}

// FormatSummary renders a settlement as shareable text: bill name header,
// one line per participant, fixed footer. The same input always renders
// byte-identical output.
func FormatSummary(billName string, entries []SettlementEntry) string {
	lines := []string{
		"📝 *" + billName + "*",
		"",
		"Tagihan per orang:",
		"",
	}

	for _, e := range entries {
		lines = append(lines, "• "+e.ParticipantName+": "+money.Format(e.Amount))
	}

	lines = append(lines, "", "_Dibuat dengan SplitYuk_")

	return strings.Join(lines, "\n")
}
