package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splityuk-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Tester", Email: email, PasswordHash: "x"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func createTestBill(t *testing.T, store *SQLiteStore, creatorID, code string) *models.Bill {
	t.Helper()
	bill := &models.Bill{Name: "Makan Siang", ShareCode: code, CreatorID: creatorID}
	if err := store.CreateBill(context.Background(), bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	return bill
}

func TestSQLiteStoreBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "ayu@example.com")

	t.Run("CreateBill generates ID, status and timestamps", func(t *testing.T) {
		bill := createTestBill(t, store, user.ID, "ABC234")

		if bill.ID == "" {
			t.Error("Expected bill ID to be generated")
		}
		if bill.Status != models.BillStatusActive {
			t.Errorf("Expected status active, got %s", bill.Status)
		}
		if bill.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetBill and GetBillByShareCode retrieve the same bill", func(t *testing.T) {
		bill := createTestBill(t, store, user.ID, "DEF567")

		byID, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		byCode, err := store.GetBillByShareCode(ctx, "DEF567")
		if err != nil {
			t.Fatalf("GetBillByShareCode failed: %v", err)
		}
		if byID.ID != byCode.ID || byID.Name != "Makan Siang" {
			t.Errorf("bill mismatch: %+v vs %+v", byID, byCode)
		}
	})

	t.Run("GetBill returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetBill(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("UpdateBill changes status", func(t *testing.T) {
		bill := createTestBill(t, store, user.ID, "GHJ892")
		bill.Status = models.BillStatusSettled
		if err := store.UpdateBill(ctx, bill); err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}

		got, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.Status != models.BillStatusSettled {
			t.Errorf("status = %s, want settled", got.Status)
		}
	})

	t.Run("ListBillsByCreator returns only that user's bills", func(t *testing.T) {
		other := createTestUser(t, store, "budi@example.com")
		createTestBill(t, store, other.ID, "KLM345")

		bills, err := store.ListBillsByCreator(ctx, other.ID)
		if err != nil {
			t.Fatalf("ListBillsByCreator failed: %v", err)
		}
		if len(bills) != 1 {
			t.Errorf("got %d bills, want 1", len(bills))
		}
	})

	t.Run("DeleteBill cascades to items and participants", func(t *testing.T) {
		bill := createTestBill(t, store, user.ID, "NPQ678")
		item := &models.Item{BillID: bill.ID, Name: "Soto", UnitPrice: decimal.NewFromInt(20000), Quantity: 1}
		if err := store.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}
		p := &models.Participant{BillID: bill.ID, DisplayName: "Ayu"}
		if err := store.CreateParticipant(ctx, p); err != nil {
			t.Fatalf("CreateParticipant failed: %v", err)
		}

		if err := store.DeleteBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		if _, err := store.GetItem(ctx, item.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("item survived bill delete: %v", err)
		}
		if _, err := store.GetParticipant(ctx, p.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("participant survived bill delete: %v", err)
		}
	})
}

func TestSQLiteStoreItemsAndAssignments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "citra@example.com")
	bill := createTestBill(t, store, user.ID, "RST234")

	item := &models.Item{BillID: bill.ID, Name: "Nasi Goreng", UnitPrice: decimal.RequireFromString("25000"), Quantity: 2}
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	p1 := &models.Participant{BillID: bill.ID, DisplayName: "Ayu"}
	p2 := &models.Participant{BillID: bill.ID, DisplayName: "Budi"}
	for _, p := range []*models.Participant{p1, p2} {
		if err := store.CreateParticipant(ctx, p); err != nil {
			t.Fatalf("CreateParticipant failed: %v", err)
		}
	}

	t.Run("unit price round-trips as exact decimal", func(t *testing.T) {
		got, err := store.GetItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if !got.UnitPrice.Equal(decimal.RequireFromString("25000")) {
			t.Errorf("unit price = %s, want 25000", got.UnitPrice)
		}
		if !got.LineTotal().Equal(decimal.RequireFromString("50000")) {
			t.Errorf("line total = %s, want 50000", got.LineTotal())
		}
	})

	t.Run("ReplaceItemAssignments swaps the claim set", func(t *testing.T) {
		first := []models.Assignment{
			{ParticipantID: p1.ID, Amount: decimal.RequireFromString("50000")},
		}
		if err := store.ReplaceItemAssignments(ctx, item.ID, first); err != nil {
			t.Fatalf("ReplaceItemAssignments failed: %v", err)
		}

		second := []models.Assignment{
			{ParticipantID: p1.ID, Amount: decimal.RequireFromString("25000")},
			{ParticipantID: p2.ID, Amount: decimal.RequireFromString("25000")},
		}
		if err := store.ReplaceItemAssignments(ctx, item.ID, second); err != nil {
			t.Fatalf("ReplaceItemAssignments failed: %v", err)
		}

		assignments, err := store.GetAssignments(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetAssignments failed: %v", err)
		}
		if len(assignments) != 2 {
			t.Fatalf("got %d assignments, want 2", len(assignments))
		}
		for _, a := range assignments {
			if !a.Amount.Equal(decimal.RequireFromString("25000")) {
				t.Errorf("assignment amount = %s, want 25000", a.Amount)
			}
		}
	})

	t.Run("DeleteAssignment removes one participant's claim", func(t *testing.T) {
		if err := store.DeleteAssignment(ctx, item.ID, p2.ID); err != nil {
			t.Fatalf("DeleteAssignment failed: %v", err)
		}
		assignments, err := store.GetAssignments(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetAssignments failed: %v", err)
		}
		if len(assignments) != 1 || assignments[0].ParticipantID != p1.ID {
			t.Errorf("assignments = %+v, want only p1", assignments)
		}
	})

	t.Run("DeleteAssignmentsForItem clears stale claims on edit", func(t *testing.T) {
		if err := store.DeleteAssignmentsForItem(ctx, item.ID); err != nil {
			t.Fatalf("DeleteAssignmentsForItem failed: %v", err)
		}
		assignments, err := store.GetAssignments(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetAssignments failed: %v", err)
		}
		if len(assignments) != 0 {
			t.Errorf("got %d assignments, want 0", len(assignments))
		}
	})
}

func TestSQLiteStoreCharges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "dewi@example.com")
	bill := createTestBill(t, store, user.ID, "UVW567")

	charge := &models.Charge{
		BillID:       bill.ID,
		Type:         models.ChargeTax,
		Value:        decimal.NewFromInt(10),
		IsPercentage: true,
	}
	if err := store.CreateCharge(ctx, charge); err != nil {
		t.Fatalf("CreateCharge failed: %v", err)
	}

	charges, err := store.GetCharges(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetCharges failed: %v", err)
	}
	if len(charges) != 1 || charges[0].Type != models.ChargeTax || !charges[0].IsPercentage {
		t.Fatalf("charges = %+v", charges)
	}

	charge.Type = models.ChargeService
	charge.IsPercentage = false
	charge.Value = decimal.NewFromInt(5000)
	if err := store.UpdateCharge(ctx, charge); err != nil {
		t.Fatalf("UpdateCharge failed: %v", err)
	}

	charges, err = store.GetCharges(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetCharges failed: %v", err)
	}
	if charges[0].Type != models.ChargeService || charges[0].IsPercentage || !charges[0].Value.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("updated charge = %+v", charges[0])
	}

	if err := store.DeleteCharge(ctx, charge.ID); err != nil {
		t.Fatalf("DeleteCharge failed: %v", err)
	}
	if err := store.DeleteCharge(ctx, charge.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorePayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "eka@example.com")
	bill := createTestBill(t, store, user.ID, "XYZ892")
	p := &models.Participant{BillID: bill.ID, DisplayName: "Ayu"}
	if err := store.CreateParticipant(ctx, p); err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}

	t.Run("payment info upsert overwrites", func(t *testing.T) {
		info := &models.PaymentInfo{BillID: bill.ID, BankName: "BCA", AccountNumber: "1234567890", AccountName: "Ayu"}
		if err := store.UpsertPaymentInfo(ctx, info); err != nil {
			t.Fatalf("UpsertPaymentInfo failed: %v", err)
		}

		info.BankName = "Mandiri"
		if err := store.UpsertPaymentInfo(ctx, info); err != nil {
			t.Fatalf("UpsertPaymentInfo failed: %v", err)
		}

		got, err := store.GetPaymentInfo(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetPaymentInfo failed: %v", err)
		}
		if got.BankName != "Mandiri" {
			t.Errorf("bank = %s, want Mandiri", got.BankName)
		}
	})

	t.Run("payment status transitions set and clear paid_at", func(t *testing.T) {
		paidAt := time.Now().UTC().Truncate(time.Second)
		if _, err := store.SetPaymentStatus(ctx, p.ID, true, &paidAt); err != nil {
			t.Fatalf("SetPaymentStatus failed: %v", err)
		}

		statuses, err := store.GetPaymentStatuses(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetPaymentStatuses failed: %v", err)
		}
		if len(statuses) != 1 || !statuses[0].IsPaid || statuses[0].PaidAt == nil {
			t.Fatalf("statuses = %+v, want one paid with PaidAt", statuses)
		}
		if !statuses[0].PaidAt.Equal(paidAt) {
			t.Errorf("paid_at = %s, want %s", statuses[0].PaidAt, paidAt)
		}

		if _, err := store.SetPaymentStatus(ctx, p.ID, false, nil); err != nil {
			t.Fatalf("SetPaymentStatus failed: %v", err)
		}
		statuses, err = store.GetPaymentStatuses(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetPaymentStatuses failed: %v", err)
		}
		if len(statuses) != 1 || statuses[0].IsPaid || statuses[0].PaidAt != nil {
			t.Errorf("statuses = %+v, want one unpaid with nil PaidAt", statuses)
		}
	})
}

func TestSQLiteStoreGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "fitri@example.com")

	group := &models.Group{
		Name:      "Anak Kos",
		CreatorID: user.ID,
		Members: []models.GroupMember{
			{DisplayName: "Ayu"},
			{DisplayName: "Budi", UserID: user.ID},
		},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Name != "Anak Kos" || len(got.Members) != 2 {
		t.Errorf("group = %+v", got)
	}

	groups, err := store.ListGroupsByCreator(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListGroupsByCreator failed: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Members) != 2 {
		t.Errorf("groups = %+v", groups)
	}

	if err := store.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
