package split

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/models"
)

func TestBuildSettlement(t *testing.T) {
	paidAt := time.Date(2025, 3, 14, 19, 30, 0, 0, time.UTC)
	totals := []ParticipantTotal{
		{ParticipantID: "p1", ParticipantName: "Ayu", Amount: decimal.NewFromInt(30000)},
		{ParticipantID: "p2", ParticipantName: "Budi", Amount: decimal.NewFromInt(25000)},
	}
	statuses := []models.PaymentStatus{
		{ParticipantID: "p1", IsPaid: true, PaidAt: &paidAt},
	}

	entries := BuildSettlement(totals, statuses)

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	if !entries[0].IsPaid || entries[0].PaidAt == nil || !entries[0].PaidAt.Equal(paidAt) {
		t.Errorf("p1 entry = %+v, want paid at %s", entries[0], paidAt)
	}

	// No payment status row: defaults to unpaid with nil PaidAt.
	if entries[1].IsPaid || entries[1].PaidAt != nil {
		t.Errorf("p2 entry = %+v, want unpaid with nil PaidAt", entries[1])
	}

	if !entries[1].Amount.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("p2 amount = %s, want 25000", entries[1].Amount)
	}
}

func TestFormatSummary(t *testing.T) {
	entries := []SettlementEntry{
		{ParticipantName: "Ayu", Amount: decimal.NewFromInt(30000)},
		{ParticipantName: "Budi", Amount: decimal.NewFromInt(25000)},
		{ParticipantName: "Citra", Amount: decimal.NewFromInt(0)},
	}

	want := "📝 *Makan Malam Tim*\n" +
		"\n" +
		"Tagihan per orang:\n" +
		"\n" +
		"• Ayu: Rp 30.000\n" +
		"• Budi: Rp 25.000\n" +
		"• Citra: Rp 0\n" +
		"\n" +
		"_Dibuat dengan SplitYuk_"

	got := FormatSummary("Makan Malam Tim", entries)
	if got != want {
		t.Errorf("summary mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	// Byte-identical on repeat renders; the share feature snapshots this.
	if again := FormatSummary("Makan Malam Tim", entries); again != got {
		t.Error("summary is not deterministic")
	}
}
