package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/splityuk/splityuk/internal/middleware"
	"github.com/splityuk/splityuk/internal/models"
	"github.com/splityuk/splityuk/internal/money"
	"github.com/splityuk/splityuk/internal/qr"
	"github.com/splityuk/splityuk/internal/service"
)

// BillHandler exposes the bill lifecycle: bills, items, charges, claims,
// payment tracking and the settlement views.
type BillHandler struct {
	svc     *service.BillService
	baseURL string
}

// NewBillHandler creates the bill handler. baseURL is used to build
// share links and QR payloads.
func NewBillHandler(svc *service.BillService, baseURL string) *BillHandler {
	return &BillHandler{svc: svc, baseURL: baseURL}
}

// Routes registers the authenticated bill endpoints. Read and claim
// endpoints sit behind optional auth, so the viewer may also be a guest
// identified by the participant header.
func (h *BillHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)

	r.Route("/{billID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.update)
		r.Delete("/", h.delete)

		r.Post("/items", h.addItem)
		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Put("/", h.updateItem)
			r.Delete("/", h.deleteItem)
			r.Post("/claims", h.claim)
			r.Delete("/claims/{participantID}", h.unclaim)
			r.Post("/split", h.splitEqually)
		})

		r.Post("/charges", h.addCharge)
		r.Put("/charges/{chargeID}", h.updateCharge)
		r.Delete("/charges/{chargeID}", h.deleteCharge)

		r.Put("/payment-info", h.setPaymentInfo)
		r.Put("/participants/{participantID}/payment", h.setPaymentStatus)

		r.Get("/settlement", h.settlement)
		r.Get("/settlement/summary", h.settlementSummary)
	})
}

// JoinRoutes registers the public share-code endpoints.
func (h *BillHandler) JoinRoutes(r chi.Router) {
	r.Get("/{code}", h.getByShareCode)
	r.Post("/{code}", h.join)
	r.Get("/{code}/qr", h.shareQR)
}

func viewerFrom(r *http.Request) service.Viewer {
	return service.Viewer{
		UserID:        middleware.GetUserID(r.Context()),
		ParticipantID: middleware.GetParticipantID(r.Context()),
	}
}

type createBillRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

func (h *BillHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be RFC 3339"})
			return
		}
		date = parsed
	}

	bill, creator, err := h.svc.CreateBill(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.DisplayName, date)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Bill    billResponse        `json:"bill"`
		Creator participantResponse `json:"creator"`
	}{toBillResponse(bill), toParticipantResponse(creator)})
}

func (h *BillHandler) list(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.ListBills(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]billResponse, len(bills))
	for i := range bills {
		resp[i] = toBillResponse(&bills[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BillHandler) get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetBill(r.Context(), chi.URLParam(r, "billID"), viewerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDetailResponse(detail))
}

type updateBillRequest struct {
	Name   string `json:"name,omitempty"`
	Date   string `json:"date,omitempty"`
	Status string `json:"status"`
}

func (h *BillHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be RFC 3339"})
			return
		}
		date = parsed
	}

	bill, err := h.svc.UpdateBill(r.Context(), chi.URLParam(r, "billID"), middleware.GetUserID(r.Context()),
		req.Name, date, models.BillStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

func (h *BillHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBill(r.Context(), chi.URLParam(r, "billID"), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type itemRequest struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

func (h *BillHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	price, err := money.Parse(req.UnitPrice)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.svc.AddItem(r.Context(), chi.URLParam(r, "billID"), middleware.GetUserID(r.Context()),
		req.Name, price, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *BillHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	price, err := money.Parse(req.UnitPrice)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.svc.UpdateItem(r.Context(), chi.URLParam(r, "itemID"), middleware.GetUserID(r.Context()),
		req.Name, price, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *BillHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteItem(r.Context(), chi.URLParam(r, "itemID"), middleware.GetUserID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chargeRequest struct {
	Type         string `json:"type"`
	Value        string `json:"value"`
	IsPercentage bool   `json:"isPercentage"`
}

func (h *BillHandler) addCharge(w http.ResponseWriter, r *http.Request) {
	var req chargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	value, err := money.Parse(req.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	charge, err := h.svc.AddCharge(r.Context(), chi.URLParam(r, "billID"), middleware.GetUserID(r.Context()),
		models.ChargeType(req.Type), value, req.IsPercentage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChargeResponse(charge))
}

func (h *BillHandler) updateCharge(w http.ResponseWriter, r *http.Request) {
	var req chargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	value, err := money.Parse(req.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	charge, err := h.svc.UpdateCharge(r.Context(), chi.URLParam(r, "chargeID"), chi.URLParam(r, "billID"),
		middleware.GetUserID(r.Context()), models.ChargeType(req.Type), value, req.IsPercentage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChargeResponse(charge))
}

func (h *BillHandler) deleteCharge(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteCharge(r.Context(), chi.URLParam(r, "chargeID"), chi.URLParam(r, "billID"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type claimRequest struct {
	ParticipantID string `json:"participantId"`
	Amount        string `json:"amount"`
}

func (h *BillHandler) claim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	assignment, err := h.svc.ClaimItem(r.Context(), chi.URLParam(r, "itemID"), req.ParticipantID, amount, viewerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentResponse(assignment))
}

func (h *BillHandler) unclaim(w http.ResponseWriter, r *http.Request) {
	err := h.svc.UnclaimItem(r.Context(), chi.URLParam(r, "itemID"), chi.URLParam(r, "participantID"), viewerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type splitRequest struct {
	ParticipantIDs []string `json:"participantIds"`
}

func (h *BillHandler) splitEqually(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	assignments, err := h.svc.SplitItemEqually(r.Context(), chi.URLParam(r, "itemID"), req.ParticipantIDs, viewerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]assignmentResponse, len(assignments))
	for i := range assignments {
		resp[i] = toAssignmentResponse(&assignments[i])
	}
	writeJSON(w, http.StatusCreated, resp)
}

type paymentInfoRequest struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

func (h *BillHandler) setPaymentInfo(w http.ResponseWriter, r *http.Request) {
	var req paymentInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	info, err := h.svc.SetPaymentInfo(r.Context(), chi.URLParam(r, "billID"), middleware.GetUserID(r.Context()),
		req.BankName, req.AccountNumber, req.AccountName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentInfoResponse{
		BankName:      info.BankName,
		AccountNumber: info.AccountNumber,
		AccountName:   info.AccountName,
	})
}

type paymentStatusRequest struct {
	IsPaid bool `json:"isPaid"`
}

func (h *BillHandler) setPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req paymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	status, err := h.svc.SetPaymentStatus(r.Context(), chi.URLParam(r, "billID"), chi.URLParam(r, "participantID"),
		middleware.GetUserID(r.Context()), req.IsPaid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ParticipantID string     `json:"participantId"`
		IsPaid        bool       `json:"isPaid"`
		PaidAt        *time.Time `json:"paidAt,omitempty"`
	}{status.ParticipantID, status.IsPaid, status.PaidAt})
}

func (h *BillHandler) settlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.svc.GetSettlement(r.Context(), chi.URLParam(r, "billID"), viewerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (h *BillHandler) settlementSummary(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.SettlementSummary(r.Context(), chi.URLParam(r, "billID"), viewerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func (h *BillHandler) getByShareCode(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetBillByShareCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDetailResponse(detail))
}

type joinRequest struct {
	DisplayName string `json:"displayName"`
}

func (h *BillHandler) join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	bill, participant, err := h.svc.Join(r.Context(), chi.URLParam(r, "code"), req.DisplayName,
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	// The participant id doubles as the guest's identity. The client
	// stores it and sends it back in the X-Participant-Id header.
	writeJSON(w, http.StatusCreated, struct {
		Bill        billResponse        `json:"bill"`
		Participant participantResponse `json:"participant"`
	}{toBillResponse(bill), toParticipantResponse(participant)})
}

func (h *BillHandler) shareQR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if _, err := h.svc.GetBillByShareCode(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}

	img, err := qr.Generate(h.baseURL+"/join/"+code, qr.DefaultSize)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}
