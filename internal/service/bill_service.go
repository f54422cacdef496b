package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splityuk/splityuk/internal/auth"
	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/money"
	"github.com/splityuk/splityuk/internal/split"
	"github.com/splityuk/splityuk/internal/storage"
)

// shareCodeAttempts bounds the retry loop on a share code collision.
const shareCodeAttempts = 5

// Viewer identifies the caller of a bill operation: a registered user
// (from the session token), a guest (from the participant id header), or
// both when a registered user joined via share code.
type Viewer struct {
	UserID        string
	ParticipantID string
}

// BillDetail is the full state of a bill in one read: the record, its
// items, participants, claims, charges and the charge composition over
// the current subtotal.
type BillDetail struct {
	Bill         *models.Bill
	Items        []models.Item
	Participants []models.Participant
	Assignments  []models.Assignment
	Charges      []models.Charge
	Composition  split.Composition
	PaymentInfo  *models.PaymentInfo
}

// Settlement is the who-owes-what view of a bill.
type Settlement struct {
	Bill        *models.Bill
	Entries     []split.SettlementEntry
	Composition split.Composition
	Unclaimed   []models.Item
	OverClaimed []models.Item
}

// BillService owns the bill lifecycle: creation, items, charges, guest
// joins, claims and settlement.
type BillService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewBillService creates a bill service backed by the given store.
func NewBillService(store storage.Store, logger *slog.Logger) *BillService {
	return &BillService{store: store, logger: logger}
}

// CreateBill creates a bill with a fresh share code and adds the creator
// as its first participant.
func (s *BillService) CreateBill(ctx context.Context, creatorID, name, creatorName string, date time.Time) (*models.Bill, *models.Participant, error) {
	if creatorID == "" {
		return nil, nil, auth.ErrMissingToken
	}
	if name == "" {
		return nil, nil, fmt.Errorf("%w: bill name is required", ErrValidation)
	}
	if creatorName == "" {
		creatorName = "Pembuat"
	}

	bill := &models.Bill{
		Name:      name,
		Date:      date,
		CreatorID: creatorID,
	}

	// Share codes are short, so collisions are possible. Retry with a
	// fresh code instead of surfacing the UNIQUE violation.
	var err error
	for attempt := 0; attempt < shareCodeAttempts; attempt++ {
		bill.ShareCode, err = auth.NewShareCode()
		if err != nil {
			return nil, nil, err
		}
		if _, lookupErr := s.store.GetBillByShareCode(ctx, bill.ShareCode); errors.Is(lookupErr, storage.ErrNotFound) {
			break
		}
		bill.ShareCode = ""
	}
	if bill.ShareCode == "" {
		return nil, nil, fmt.Errorf("failed to generate unique share code after %d attempts", shareCodeAttempts)
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		s.logger.Error("CreateBill failed", "error", err)
		return nil, nil, err
	}

	creator := &models.Participant{
		BillID:      bill.ID,
		UserID:      creatorID,
		DisplayName: creatorName,
	}
	if err := s.store.CreateParticipant(ctx, creator); err != nil {
		s.logger.Error("CreateBill: failed to add creator participant", "bill_id", bill.ID, "error", err)
		return nil, nil, err
	}

	s.logger.Info("Bill created", "bill_id", bill.ID, "share_code", bill.ShareCode)
	return bill, creator, nil
}

// ListBills returns the bills the user created, oldest first.
func (s *BillService) ListBills(ctx context.Context, userID string) ([]models.Bill, error) {
	return s.store.ListBillsByCreator(ctx, userID)
}

// GetBill loads the full bill state for an authorized viewer.
func (s *BillService) GetBill(ctx context.Context, billID string, viewer Viewer) (*BillDetail, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, bill, &viewer)
}

// GetBillByShareCode loads the full bill state for anyone holding the
// share code. This backs the public join page, so there is no viewer
// check.
func (s *BillService) GetBillByShareCode(ctx context.Context, code string) (*BillDetail, error) {
	bill, err := s.store.GetBillByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, bill, nil)
}

func (s *BillService) loadDetail(ctx context.Context, bill *models.Bill, viewer *Viewer) (*BillDetail, error) {
	participants, err := s.store.GetParticipants(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	if viewer != nil && !canView(bill, participants, *viewer) {
		return nil, ErrForbidden
	}

	items, err := s.store.GetItems(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.store.GetAssignments(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	charges, err := s.store.GetCharges(ctx, bill.ID)
	if err != nil {
		return nil, err
	}

	detail := &BillDetail{
		Bill:         bill,
		Items:        items,
		Participants: participants,
		Assignments:  assignments,
		Charges:      charges,
		Composition:  split.ApplyCharges(subtotalOf(items), charges),
	}

	info, err := s.store.GetPaymentInfo(ctx, bill.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	detail.PaymentInfo = info

	return detail, nil
}

// UpdateBill changes a bill's name, date or status. Creator only. Moving
// the status to settled locks the bill; moving it back unlocks it.
func (s *BillService) UpdateBill(ctx context.Context, billID, userID, name string, date time.Time, status models.BillStatus) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if userID == "" || bill.CreatorID != userID {
		return nil, ErrForbidden
	}

	switch status {
	case "":
		status = bill.Status
	case models.BillStatusDraft, models.BillStatusActive, models.BillStatusSettled:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if name != "" {
		bill.Name = name
	}
	if !date.IsZero() {
		bill.Date = date
	}
	bill.Status = status

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, err
	}
	s.logger.Info("Bill updated", "bill_id", bill.ID, "status", bill.Status)
	return bill, nil
}

// DeleteBill removes a bill and everything hanging off it. Creator only.
func (s *BillService) DeleteBill(ctx context.Context, billID, userID string) error {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return err
	}
	if userID == "" || bill.CreatorID != userID {
		return ErrForbidden
	}
	return s.store.DeleteBill(ctx, billID)
}

// AddItem adds a priced line to an unlocked bill. Creator only.
func (s *BillService) AddItem(ctx context.Context, billID, userID, name string, unitPrice decimal.Decimal, quantity int) (*models.Item, error) {
	bill, err := s.requireEditableBill(ctx, billID, userID)
	if err != nil {
		return nil, err
	}
	if err := validateItem(name, unitPrice, quantity); err != nil {
		return nil, err
	}

	item := &models.Item{
		BillID:    bill.ID,
		Name:      name,
		UnitPrice: unitPrice.Round(money.Scale),
		Quantity:  quantity,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem edits an item and clears its existing claims: amounts
// computed against the old price or quantity must never linger.
func (s *BillService) UpdateItem(ctx context.Context, itemID, userID, name string, unitPrice decimal.Decimal, quantity int) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireEditableBill(ctx, item.BillID, userID); err != nil {
		return nil, err
	}
	if err := validateItem(name, unitPrice, quantity); err != nil {
		return nil, err
	}

	item.Name = name
	item.UnitPrice = unitPrice.Round(money.Scale)
	item.Quantity = quantity
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	if err := s.store.DeleteAssignmentsForItem(ctx, itemID); err != nil {
		return nil, err
	}
	s.logger.Info("Item updated, claims cleared", "item_id", itemID)
	return item, nil
}

// DeleteItem removes an item; its claims cascade away with it.
func (s *BillService) DeleteItem(ctx context.Context, itemID, userID string) error {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if _, err := s.requireEditableBill(ctx, item.BillID, userID); err != nil {
		return err
	}
	return s.store.DeleteItem(ctx, itemID)
}

// AddCharge attaches a tax, service, discount or other charge to an
// unlocked bill. Creator only.
func (s *BillService) AddCharge(ctx context.Context, billID, userID string, chargeType models.ChargeType, value decimal.Decimal, isPercentage bool) (*models.Charge, error) {
	bill, err := s.requireEditableBill(ctx, billID, userID)
	if err != nil {
		return nil, err
	}
	if !chargeType.Valid() {
		return nil, fmt.Errorf("%w: unknown charge type %q", ErrValidation, chargeType)
	}

	charge := &models.Charge{
		BillID:       bill.ID,
		Type:         chargeType,
		Value:        value,
		IsPercentage: isPercentage,
	}
	if err := s.store.CreateCharge(ctx, charge); err != nil {
		return nil, err
	}
	return charge, nil
}

// UpdateCharge edits a charge on an unlocked bill. Creator only.
func (s *BillService) UpdateCharge(ctx context.Context, chargeID, billID, userID string, chargeType models.ChargeType, value decimal.Decimal, isPercentage bool) (*models.Charge, error) {
	if _, err := s.requireEditableBill(ctx, billID, userID); err != nil {
		return nil, err
	}
	if !chargeType.Valid() {
		return nil, fmt.Errorf("%w: unknown charge type %q", ErrValidation, chargeType)
	}
	if err := s.requireChargeOnBill(ctx, chargeID, billID); err != nil {
		return nil, err
	}

	charge := &models.Charge{
		ID:           chargeID,
		BillID:       billID,
		Type:         chargeType,
		Value:        value,
		IsPercentage: isPercentage,
	}
	if err := s.store.UpdateCharge(ctx, charge); err != nil {
		return nil, err
	}
	return charge, nil
}

// DeleteCharge removes a charge from an unlocked bill. Creator only.
func (s *BillService) DeleteCharge(ctx context.Context, chargeID, billID, userID string) error {
	if _, err := s.requireEditableBill(ctx, billID, userID); err != nil {
		return err
	}
	if err := s.requireChargeOnBill(ctx, chargeID, billID); err != nil {
		return err
	}
	return s.store.DeleteCharge(ctx, chargeID)
}

// requireChargeOnBill rejects charge ids that belong to another bill.
func (s *BillService) requireChargeOnBill(ctx context.Context, chargeID, billID string) error {
	charges, err := s.store.GetCharges(ctx, billID)
	if err != nil {
		return err
	}
	for _, c := range charges {
		if c.ID == chargeID {
			return nil
		}
	}
	return fmt.Errorf("%w: charge %s on bill %s", storage.ErrNotFound, chargeID, billID)
}

// Join adds the caller to a bill via its share code and returns the
// participant record. The participant id is the guest's identity: the
// client persists it and echoes it on later requests. A registered user
// who already joined gets their existing participant back instead of a
// duplicate.
func (s *BillService) Join(ctx context.Context, code, displayName, userID string) (*models.Bill, *models.Participant, error) {
	if displayName == "" {
		return nil, nil, fmt.Errorf("%w: display name is required", ErrValidation)
	}

	bill, err := s.store.GetBillByShareCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	participants, err := s.store.GetParticipants(ctx, bill.ID)
	if err != nil {
		return nil, nil, err
	}
	if userID != "" {
		for i := range participants {
			if participants[i].UserID == userID {
				return bill, &participants[i], nil
			}
		}
	}

	p := &models.Participant{
		BillID:      bill.ID,
		UserID:      userID,
		DisplayName: displayName,
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		return nil, nil, err
	}

	s.logger.Info("Participant joined", "bill_id", bill.ID, "participant_id", p.ID, "guest", p.Guest())
	return bill, p, nil
}

// ClaimItem records that a participant owes an amount for an item. The
// claimer must be a participant of the item's bill; any bill participant
// may claim on behalf of another. Over-assignment is tolerated, it shows
// up in the settlement view rather than failing here.
func (s *BillService) ClaimItem(ctx context.Context, itemID, participantID string, amount decimal.Decimal, viewer Viewer) (*models.Assignment, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	bill, participants, err := s.requireClaimableBill(ctx, item.BillID, viewer)
	if err != nil {
		return nil, err
	}
	if !isParticipantOf(participants, participantID) {
		return nil, fmt.Errorf("%w: participant %s is not on bill %s", ErrValidation, participantID, bill.ID)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: claim amount is negative", money.ErrInvalidAmount)
	}

	// One claim per participant per item: replace rather than stack.
	if err := s.store.DeleteAssignment(ctx, itemID, participantID); err != nil {
		return nil, err
	}
	a := &models.Assignment{
		ItemID:        itemID,
		ParticipantID: participantID,
		Amount:        amount.Round(money.Scale),
	}
	if err := s.store.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UnclaimItem removes a participant's claim on an item.
func (s *BillService) UnclaimItem(ctx context.Context, itemID, participantID string, viewer Viewer) error {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if _, _, err := s.requireClaimableBill(ctx, item.BillID, viewer); err != nil {
		return err
	}
	return s.store.DeleteAssignment(ctx, itemID, participantID)
}

// SplitItemEqually replaces an item's claim set with an equal split of
// its line total across the given participants. The fractional remainder
// lands on the first participants in the list, so the shares always sum
// back to the exact line total.
func (s *BillService) SplitItemEqually(ctx context.Context, itemID string, participantIDs []string, viewer Viewer) ([]models.Assignment, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	bill, participants, err := s.requireClaimableBill(ctx, item.BillID, viewer)
	if err != nil {
		return nil, err
	}
	for _, id := range participantIDs {
		if !isParticipantOf(participants, id) {
			return nil, fmt.Errorf("%w: participant %s is not on bill %s", ErrValidation, id, bill.ID)
		}
	}

	shares, err := split.AllocateEqual(item.LineTotal(), participantIDs)
	if err != nil {
		return nil, err
	}

	assignments := make([]models.Assignment, len(shares))
	for i, share := range shares {
		assignments[i] = models.Assignment{
			ItemID:        itemID,
			ParticipantID: share.ParticipantID,
			Amount:        share.Amount,
		}
	}
	if err := s.store.ReplaceItemAssignments(ctx, itemID, assignments); err != nil {
		return nil, err
	}

	s.logger.Info("Item split equally", "item_id", itemID, "participants", len(participantIDs))
	return assignments, nil
}

// SetPaymentInfo sets or replaces the bank details shown to payers.
// Creator only.
func (s *BillService) SetPaymentInfo(ctx context.Context, billID, userID, bankName, accountNumber, accountName string) (*models.PaymentInfo, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if userID == "" || bill.CreatorID != userID {
		return nil, ErrForbidden
	}

	info := &models.PaymentInfo{
		BillID:        billID,
		BankName:      bankName,
		AccountNumber: accountNumber,
		AccountName:   accountName,
	}
	if err := s.store.UpsertPaymentInfo(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

// SetPaymentStatus marks a participant paid or unpaid. Creator only.
// The paid timestamp is set on the unpaid-to-paid transition and cleared
// on the way back; re-marking an already paid participant keeps the
// original timestamp.
func (s *BillService) SetPaymentStatus(ctx context.Context, billID, participantID, userID string, isPaid bool) (*models.PaymentStatus, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if userID == "" || bill.CreatorID != userID {
		return nil, ErrForbidden
	}

	participant, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if participant.BillID != billID {
		return nil, fmt.Errorf("%w: participant %s is not on bill %s", ErrValidation, participantID, billID)
	}

	var paidAt *time.Time
	if isPaid {
		// Second precision: paid_at is stored as a Unix timestamp.
		now := time.Now().UTC().Truncate(time.Second)
		paidAt = &now
		statuses, err := s.store.GetPaymentStatuses(ctx, billID)
		if err != nil {
			return nil, err
		}
		for _, st := range statuses {
			if st.ParticipantID == participantID && st.IsPaid && st.PaidAt != nil {
				paidAt = st.PaidAt
				break
			}
		}
	}

	status, err := s.store.SetPaymentStatus(ctx, participantID, isPaid, paidAt)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Payment status set", "bill_id", billID, "participant_id", participantID, "is_paid", isPaid)
	return status, nil
}

// GetSettlement builds the who-owes-what view: per-participant totals
// aggregated from claims, left-joined with payment statuses, plus the
// bill-level charge composition and the items still unclaimed or claimed
// past their line total.
func (s *BillService) GetSettlement(ctx context.Context, billID string, viewer Viewer) (*Settlement, error) {
	detail, err := s.GetBill(ctx, billID, viewer)
	if err != nil {
		return nil, err
	}

	statuses, err := s.store.GetPaymentStatuses(ctx, billID)
	if err != nil {
		return nil, err
	}

	totals := split.Aggregate(detail.Items, detail.Participants, detail.Assignments)
	return &Settlement{
		Bill:        detail.Bill,
		Entries:     split.BuildSettlement(totals, statuses),
		Composition: detail.Composition,
		Unclaimed:   split.UnclaimedItems(detail.Items, detail.Assignments),
		OverClaimed: split.OverAssignedItems(detail.Items, detail.Assignments),
	}, nil
}

// SettlementSummary renders the settlement as shareable text.
func (s *BillService) SettlementSummary(ctx context.Context, billID string, viewer Viewer) (string, error) {
	settlement, err := s.GetSettlement(ctx, billID, viewer)
	if err != nil {
		return "", err
	}
	return split.FormatSummary(settlement.Bill.Name, settlement.Entries), nil
}

// requireEditableBill loads a bill and checks the caller may mutate its
// items and charges: creator only, and never on a settled bill.
func (s *BillService) requireEditableBill(ctx context.Context, billID, userID string) (*models.Bill, error) {
	if userID == "" {
		return nil, auth.ErrMissingToken
	}
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.CreatorID != userID {
		return nil, ErrForbidden
	}
	if bill.Locked() {
		return nil, ErrBillLocked
	}
	return bill, nil
}

// requireClaimableBill loads a bill and checks the viewer may change
// claims: any bill participant (or the creator), never on a settled bill.
func (s *BillService) requireClaimableBill(ctx context.Context, billID string, viewer Viewer) (*models.Bill, []models.Participant, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, nil, err
	}
	participants, err := s.store.GetParticipants(ctx, bill.ID)
	if err != nil {
		return nil, nil, err
	}
	if !canView(bill, participants, viewer) {
		return nil, nil, ErrForbidden
	}
	if bill.Locked() {
		return nil, nil, ErrBillLocked
	}
	return bill, participants, nil
}

// canView reports whether the viewer is the creator or one of the bill's
// participants, by account id or by guest participant id.
func canView(bill *models.Bill, participants []models.Participant, v Viewer) bool {
	if v.UserID != "" && v.UserID == bill.CreatorID {
		return true
	}
	for _, p := range participants {
		if v.ParticipantID != "" && p.ID == v.ParticipantID {
			return true
		}
		if v.UserID != "" && p.UserID == v.UserID {
			return true
		}
	}
	return false
}

func isParticipantOf(participants []models.Participant, participantID string) bool {
	for _, p := range participants {
		if p.ID == participantID {
			return true
		}
	}
	return false
}

func validateItem(name string, unitPrice decimal.Decimal, quantity int) error {
	if name == "" {
		return fmt.Errorf("%w: item name is required", ErrValidation)
	}
	if unitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price is negative", money.ErrInvalidAmount)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	return nil
}

func subtotalOf(items []models.Item) decimal.Decimal {
	subtotal := money.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal())
	}
	return subtotal
}
