package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
)

type cardRequest struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Month  string `json:"month"`
	Year   string `json:"year"`
	Code   string `json:"code"`
}

// manualCapture is the card form fallback. The card is checked before the viewer,
// so an anonymous request with a malformed card still gets the card error.
func (h *handler) manualCapture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	ownerID := uuid.Nil
	if user := viewer(r); user != nil {
		ownerID = user.ID
	}

	err = h.svc.Payments.ManualCapture(r.Context(), ownerID, id, domain.Card{
		Number: req.Number,
		Name:   req.Name,
		Month:  req.Month,
		Year:   req.Year,
		Code:   req.Code,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Payment processed successfully", "order_id": id})
}

func (h *handler) startPayment(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, "Authentication required")
	if user == nil {
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	confirmationURL, err := h.svc.Payments.StartPayment(r.Context(), user.ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.Redirect(w, r, confirmationURL, http.StatusFound)
}

// paymentSuccess is where the provider sends the buyer back, it carries no session guarantees.
func (h *handler) paymentSuccess(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("order_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Order ID is missing")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	result, err := h.svc.Payments.ConfirmPayment(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if !result.Succeeded() {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   lo.FromPtr(result.Order.PaymentError),
			"orderId": id,
			"status":  string(result.Status),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Payment succeeded", "orderId": id})
}

func (h *handler) retryPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/payment/%d/", id), http.StatusFound)
}
