package http

import (
	"time"

	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/money"
	"github.com/splityuk/splityuk/internal/service"
	"github.com/splityuk/splityuk/internal/split"
)

// All monetary fields cross the wire as exact decimal strings, never as
// JSON numbers.

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type billResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	ShareCode string `json:"shareCode"`
	CreatorID string `json:"creatorId"`
	CreatedAt int64  `json:"createdAt"`
}

func toBillResponse(b *models.Bill) billResponse {
	return billResponse{
		ID:        b.ID,
		Name:      b.Name,
		Date:      b.Date.UTC().Format(time.RFC3339),
		Status:    string(b.Status),
		ShareCode: b.ShareCode,
		CreatorID: b.CreatorID,
		CreatedAt: b.CreatedAt,
	}
}

type itemResponse struct {
	ID        string `json:"id"`
	BillID    string `json:"billId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

func toItemResponse(i *models.Item) itemResponse {
	return itemResponse{
		ID:        i.ID,
		BillID:    i.BillID,
		Name:      i.Name,
		UnitPrice: i.UnitPrice.String(),
		Quantity:  i.Quantity,
		LineTotal: i.LineTotal().String(),
	}
}

type participantResponse struct {
	ID          string `json:"id"`
	BillID      string `json:"billId"`
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName"`
	Guest       bool   `json:"guest"`
}

func toParticipantResponse(p *models.Participant) participantResponse {
	return participantResponse{
		ID:          p.ID,
		BillID:      p.BillID,
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Guest:       p.Guest(),
	}
}

type assignmentResponse struct {
	ID            string `json:"id"`
	ItemID        string `json:"itemId"`
	ParticipantID string `json:"participantId"`
	Amount        string `json:"amount"`
}

func toAssignmentResponse(a *models.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:            a.ID,
		ItemID:        a.ItemID,
		ParticipantID: a.ParticipantID,
		Amount:        a.Amount.String(),
	}
}

type chargeResponse struct {
	ID           string `json:"id"`
	BillID       string `json:"billId"`
	Type         string `json:"type"`
	Value        string `json:"value"`
	IsPercentage bool   `json:"isPercentage"`
}

func toChargeResponse(c *models.Charge) chargeResponse {
	return chargeResponse{
		ID:           c.ID,
		BillID:       c.BillID,
		Type:         string(c.Type),
		Value:        c.Value.String(),
		IsPercentage: c.IsPercentage,
	}
}

type chargeLineResponse struct {
	ChargeID string `json:"chargeId"`
	Label    string `json:"label"`
	Delta    string `json:"delta"`
}

type compositionResponse struct {
	Subtotal string               `json:"subtotal"`
	Total    string               `json:"total"`
	Lines    []chargeLineResponse `json:"lines"`
}

func toCompositionResponse(c split.Composition) compositionResponse {
	lines := make([]chargeLineResponse, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = chargeLineResponse{ChargeID: l.ChargeID, Label: l.Label, Delta: l.Delta.String()}
	}
	return compositionResponse{
		Subtotal: c.Subtotal.String(),
		Total:    c.Total.String(),
		Lines:    lines,
	}
}

type paymentInfoResponse struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

type billDetailResponse struct {
	Bill         billResponse          `json:"bill"`
	Items        []itemResponse        `json:"items"`
	Participants []participantResponse `json:"participants"`
	Assignments  []assignmentResponse  `json:"assignments"`
	Charges      []chargeResponse      `json:"charges"`
	Composition  compositionResponse   `json:"composition"`
	PaymentInfo  *paymentInfoResponse  `json:"paymentInfo,omitempty"`
}

func toBillDetailResponse(d *service.BillDetail) billDetailResponse {
	resp := billDetailResponse{
		Bill:         toBillResponse(d.Bill),
		Items:        make([]itemResponse, len(d.Items)),
		Participants: make([]participantResponse, len(d.Participants)),
		Assignments:  make([]assignmentResponse, len(d.Assignments)),
		Charges:      make([]chargeResponse, len(d.Charges)),
		Composition:  toCompositionResponse(d.Composition),
	}
	for i := range d.Items {
		resp.Items[i] = toItemResponse(&d.Items[i])
	}
	for i := range d.Participants {
		resp.Participants[i] = toParticipantResponse(&d.Participants[i])
	}
	for i := range d.Assignments {
		resp.Assignments[i] = toAssignmentResponse(&d.Assignments[i])
	}
	for i := range d.Charges {
		resp.Charges[i] = toChargeResponse(&d.Charges[i])
	}
	if d.PaymentInfo != nil {
		resp.PaymentInfo = &paymentInfoResponse{
			BankName:      d.PaymentInfo.BankName,
			AccountNumber: d.PaymentInfo.AccountNumber,
			AccountName:   d.PaymentInfo.AccountName,
		}
	}
	return resp
}

type settlementEntryResponse struct {
	ParticipantID   string     `json:"participantId"`
	ParticipantName string     `json:"participantName"`
	Amount          string     `json:"amount"`
	AmountDisplay   string     `json:"amountDisplay"`
	IsPaid          bool       `json:"isPaid"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
}

type settlementResponse struct {
	BillID      string                    `json:"billId"`
	BillName    string                    `json:"billName"`
	Entries     []settlementEntryResponse `json:"entries"`
	Composition compositionResponse       `json:"composition"`
	Unclaimed   []itemResponse            `json:"unclaimedItems"`
	OverClaimed []itemResponse            `json:"overClaimedItems"`
}

func toSettlementResponse(s *service.Settlement) settlementResponse {
	resp := settlementResponse{
		BillID:      s.Bill.ID,
		BillName:    s.Bill.Name,
		Entries:     make([]settlementEntryResponse, len(s.Entries)),
		Composition: toCompositionResponse(s.Composition),
		Unclaimed:   make([]itemResponse, len(s.Unclaimed)),
		OverClaimed: make([]itemResponse, len(s.OverClaimed)),
	}
	for i, e := range s.Entries {
		resp.Entries[i] = settlementEntryResponse{
			ParticipantID:   e.ParticipantID,
			ParticipantName: e.ParticipantName,
			Amount:          e.Amount.String(),
			AmountDisplay:   money.Format(e.Amount),
			IsPaid:          e.IsPaid,
			PaidAt:          e.PaidAt,
		}
	}
	for i := range s.Unclaimed {
		resp.Unclaimed[i] = toItemResponse(&s.Unclaimed[i])
	}
	for i := range s.OverClaimed {
		resp.OverClaimed[i] = toItemResponse(&s.OverClaimed[i])
	}
	return resp
}

type groupMemberResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName"`
}

type groupResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	CreatorID string                `json:"creatorId"`
	Members   []groupMemberResponse `json:"members"`
	CreatedAt int64                 `json:"createdAt"`
}

func toGroupResponse(g *models.Group) groupResponse {
	members := make([]groupMemberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = groupMemberResponse{ID: m.ID, UserID: m.UserID, DisplayName: m.DisplayName}
	}
	return groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatorID: g.CreatorID,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}
