package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splityuk/splityuk/internal/auth"
	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/storage"
	"github.com/splityuk/splityuk/internal/storage/sqlite"
)

func newTestEnv(t *testing.T) (*BillService, storage.Store) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splityuk-service-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBillService(store, logger), store
}

func registerUser(t *testing.T, store storage.Store, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Tester", Email: email, PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestCreateBill(t *testing.T) {
	svc, store := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")

	bill, creator, err := svc.CreateBill(ctx, user.ID, "Makan Malam Tim", "Ayu", time.Now())
	require.NoError(t, err)

	assert.Len(t, bill.ShareCode, auth.ShareCodeLength)
	assert.Equal(t, models.BillStatusActive, bill.Status)
	assert.Equal(t, user.ID, creator.UserID)
	assert.Equal(t, "Ayu", creator.DisplayName)

	participants, err := store.GetParticipants(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)
}

func TestCreateBillRequiresName(t *testing.T) {
	svc, store := newTestEnv(t)
	user := registerUser(t, store, "ayu@example.com")

	_, _, err := svc.CreateBill(context.Background(), user.ID, "", "Ayu", time.Now())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJoinByShareCode(t *testing.T) {
	svc, store := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")
	bill, _, err := svc.CreateBill(ctx, user.ID, "Makan Siang", "Ayu", time.Now())
	require.NoError(t, err)

	t.Run("guest gets a participant id", func(t *testing.T) {
		joined, guest, err := svc.Join(ctx, bill.ShareCode, "Budi", "")
		require.NoError(t, err)

		assert.Equal(t, bill.ID, joined.ID)
		assert.NotEmpty(t, guest.ID)
		assert.True(t, guest.Guest())
	})

	t.Run("registered user joining twice gets the same participant", func(t *testing.T) {
		other := registerUser(t, store, "citra@example.com")

		_, first, err := svc.Join(ctx, bill.ShareCode, "Citra", other.ID)
		require.NoError(t, err)
		_, second, err := svc.Join(ctx, bill.ShareCode, "Citra", other.ID)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		_, _, err := svc.Join(ctx, "ZZZZZZ", "Dewi", "")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestItemEditingClearsClaims(t *testing.T) {
	svc, store := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")
	bill, creator, err := svc.CreateBill(ctx, user.ID, "Makan Siang", "Ayu", time.Now())
	require.NoError(t, err)
	viewer := Viewer{UserID: user.ID}

	item, err := svc.AddItem(ctx, bill.ID, user.ID, "Nasi Goreng", decimal.RequireFromString("25000"), 2)
	require.NoError(t, err)

	_, err = svc.ClaimItem(ctx, item.ID, creator.ID, decimal.RequireFromString("50000"), viewer)
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, item.ID, user.ID, "Nasi Goreng Spesial", decimal.RequireFromString("30000"), 2)
	require.NoError(t, err)

	assignments, err := store.GetAssignments(ctx, bill.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments, "stale claims must not survive an item edit")
}

func TestSettledBillIsLocked(t *testing.T) {
	svc, store := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")
	bill, creator, err := svc.CreateBill(ctx, user.ID, "Makan Siang", "Ayu", time.Now())
	require.NoError(t, err)
	viewer := Viewer{UserID: user.ID}

	item, err := svc.AddItem(ctx, bill.ID, user.ID, "Soto", decimal.RequireFromString("20000"), 1)
	require.NoError(t, err)

	_, err = svc.UpdateBill(ctx, bill.ID, user.ID, "", time.Time{}, models.BillStatusSettled)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, bill.ID, user.ID, "Es Teh", decimal.RequireFromString("5000"), 1)
	assert.ErrorIs(t, err, ErrBillLocked)

	_, err = svc.ClaimItem(ctx, item.ID, creator.ID, decimal.RequireFromString("20000"), viewer)
	assert.ErrorIs(t, err, ErrBillLocked)

	// Unlocking reopens the bill.
	_, err = svc.UpdateBill(ctx, bill.ID, user.ID, "", time.Time{}, models.BillStatusActive)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, bill.ID, user.ID, "Es Teh", decimal.RequireFromString("5000"), 1)
	assert.NoError(t, err)
}

func TestItemAndChargeMutationIsCreatorOnly(t *testing.T) {
	svc, store := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")
	stranger := registerUser(t, store, "budi@example.com")
	bill, _, err := svc.CreateBill(ctx, user.ID, "Makan Siang", "Ayu", time.Now())
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, bill.ID, stranger.ID, "Soto", decimal.RequireFromString("20000"), 1)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AddCharge(ctx, bill.ID, stranger.ID, models.ChargeTax, decimal.NewFromInt(10), true)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.DeleteBill(ctx, bill.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetBillAccess(t *testing.T) {
	svc, store := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")
	stranger := registerUser(t, store, "budi@example.com")
	bill, _, err := svc.CreateBill(ctx, user.ID, "Makan Siang", "Ayu", time.Now())
	require.NoError(t, err)

	_, err = svc.GetBill(ctx, bill.ID, Viewer{UserID: stranger.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, guest, err := svc.Join(ctx, bill.ShareCode, "Budi", "")
	require.NoError(t, err)

	detail, err := svc.GetBill(ctx, bill.ID, Viewer{ParticipantID: guest.ID})
	require.NoError(t, err)
	assert.Len(t, detail.Participants, 2)

	// The share-code view needs no identity at all.
	public, err := svc.GetBillByShareCode(ctx, bill.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, bill.ID, public.Bill.ID)
}

func TestSplitItemEqually(t *testing.T) {
	svc, store := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")
	bill, creator, err := svc.CreateBill(ctx, user.ID, "Makan Siang", "Ayu", time.Now())
	require.NoError(t, err)
	viewer := Viewer{UserID: user.ID}

	_, guest1, err := svc.Join(ctx, bill.ShareCode, "Budi", "")
	require.NoError(t, err)
	_, guest2, err := svc.Join(ctx, bill.ShareCode, "Citra", "")
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, bill.ID, user.ID, "Paket Nasi", decimal.RequireFromString("10000"), 1)
	require.NoError(t, err)

	ids := []string{creator.ID, guest1.ID, guest2.ID}
	assignments, err := svc.SplitItemEqually(ctx, item.ID, ids, viewer)
	require.NoError(t, err)
	require.Len(t, assignments, 3)

	// First participant absorbs the remainder; shares sum to the line total.
	assert.True(t, assignments[0].Amount.Equal(decimal.RequireFromString("3333.34")), "got %s", assignments[0].Amount)
	assert.True(t, assignments[1].Amount.Equal(decimal.RequireFromString("3333.33")))
	assert.True(t, assignments[2].Amount.Equal(decimal.RequireFromString("3333.33")))

	sum := decimal.Zero
	for _, a := range assignments {
		sum = sum.Add(a.Amount)
	}
	assert.True(t, sum.Equal(item.LineTotal()))

	// Re-splitting replaces, never stacks.
	_, err = svc.SplitItemEqually(ctx, item.ID, ids, viewer)
	require.NoError(t, err)
	stored, err := store.GetAssignments(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	t.Run("unknown participant is rejected", func(t *testing.T) {
		_, err := svc.SplitItemEqually(ctx, item.ID, []string{"not-a-participant"}, viewer)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestSettlementFlow(t *testing.T) {
	svc, store := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")
	bill, creator, err := svc.CreateBill(ctx, user.ID, "Makan Malam Tim", "Ayu", time.Now())
	require.NoError(t, err)
	viewer := Viewer{UserID: user.ID}

	_, guest, err := svc.Join(ctx, bill.ShareCode, "Budi", "")
	require.NoError(t, err)

	item1, err := svc.AddItem(ctx, bill.ID, user.ID, "Nasi Goreng", decimal.RequireFromString("60000"), 1)
	require.NoError(t, err)
	item2, err := svc.AddItem(ctx, bill.ID, user.ID, "Es Teh", decimal.RequireFromString("40000"), 1)
	require.NoError(t, err)

	// Charges compound in type order on the running total:
	// 100000 - 5% = 95000, + 10% = 104500, + 2% = 106590.
	_, err = svc.AddCharge(ctx, bill.ID, user.ID, models.ChargeTax, decimal.NewFromInt(10), true)
	require.NoError(t, err)
	_, err = svc.AddCharge(ctx, bill.ID, user.ID, models.ChargeDiscount, decimal.NewFromInt(5), true)
	require.NoError(t, err)
	_, err = svc.AddCharge(ctx, bill.ID, user.ID, models.ChargeService, decimal.NewFromInt(2), true)
	require.NoError(t, err)

	_, err = svc.ClaimItem(ctx, item1.ID, creator.ID, decimal.RequireFromString("60000"), viewer)
	require.NoError(t, err)
	_, err = svc.ClaimItem(ctx, item2.ID, guest.ID, decimal.RequireFromString("40000"), viewer)
	require.NoError(t, err)

	settlement, err := svc.GetSettlement(ctx, bill.ID, viewer)
	require.NoError(t, err)

	assert.True(t, settlement.Composition.Subtotal.Equal(decimal.RequireFromString("100000")))
	assert.True(t, settlement.Composition.Total.Equal(decimal.RequireFromString("106590")), "got %s", settlement.Composition.Total)

	require.Len(t, settlement.Entries, 2)
	assert.Equal(t, "Ayu", settlement.Entries[0].ParticipantName)
	assert.True(t, settlement.Entries[0].Amount.Equal(decimal.RequireFromString("60000")))
	assert.False(t, settlement.Entries[0].IsPaid)
	assert.Nil(t, settlement.Entries[0].PaidAt)
	assert.Empty(t, settlement.Unclaimed)
	assert.Empty(t, settlement.OverClaimed)

	t.Run("payment status transitions", func(t *testing.T) {
		status, err := svc.SetPaymentStatus(ctx, bill.ID, guest.ID, user.ID, true)
		require.NoError(t, err)
		assert.True(t, status.IsPaid)
		require.NotNil(t, status.PaidAt)
		firstPaidAt := *status.PaidAt

		// Re-marking paid keeps the original timestamp.
		again, err := svc.SetPaymentStatus(ctx, bill.ID, guest.ID, user.ID, true)
		require.NoError(t, err)
		require.NotNil(t, again.PaidAt)
		assert.True(t, again.PaidAt.Equal(firstPaidAt))

		// Unmarking clears it.
		cleared, err := svc.SetPaymentStatus(ctx, bill.ID, guest.ID, user.ID, false)
		require.NoError(t, err)
		assert.False(t, cleared.IsPaid)
		assert.Nil(t, cleared.PaidAt)

		// Only the creator flips payment statuses.
		_, err = svc.SetPaymentStatus(ctx, bill.ID, guest.ID, "someone-else", true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("summary text", func(t *testing.T) {
		text, err := svc.SettlementSummary(ctx, bill.ID, viewer)
		require.NoError(t, err)
		assert.Contains(t, text, "📝 *Makan Malam Tim*")
		assert.Contains(t, text, "• Ayu: Rp 60.000")
		assert.Contains(t, text, "• Budi: Rp 40.000")
		assert.Contains(t, text, "_Dibuat dengan SplitYuk_")
	})
}

func TestSetPaymentInfo(t *testing.T) {
	svc, store := newTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, store, "ayu@example.com")
	bill, _, err := svc.CreateBill(ctx, user.ID, "Makan Siang", "Ayu", time.Now())
	require.NoError(t, err)

	_, err = svc.SetPaymentInfo(ctx, bill.ID, "someone-else", "BCA", "123", "Ayu")
	assert.ErrorIs(t, err, ErrForbidden)

	info, err := svc.SetPaymentInfo(ctx, bill.ID, user.ID, "BCA", "1234567890", "Ayu")
	require.NoError(t, err)
	assert.Equal(t, "BCA", info.BankName)

	detail, err := svc.GetBill(ctx, bill.ID, Viewer{UserID: user.ID})
	require.NoError(t, err)
	require.NotNil(t, detail.PaymentInfo)
	assert.Equal(t, "1234567890", detail.PaymentInfo.AccountNumber)
}
