package transport

import (
	"errors"
	"io"
	"net/http"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
)

type orderLineRequest struct {
	ID    int64 `json:"id"`
	Count *int  `json:"count"`
}

type orderUpdateRequest struct {
	Status       string  `json:"status"`
	DeliveryType *string `json:"deliveryType"`
	PaymentType  *string `json:"paymentType"`
	City         *string `json:"city"`
	Address      *string `json:"address"`
}

const orderAuthMessage = "Authentication required"

func (h *handler) openOrders(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, orderAuthMessage)
	if user == nil {
		return
	}

	orders, err := h.svc.Orders.OpenOrders(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	c := h.converter()
	writeJSON(w, http.StatusOK, lo.Map(orders, func(o domain.Order, _ int) orderDTO {
		return c.order(o)
	}))
}

// createOrder accepts an array of lines. An empty body or array orders the basket.
func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, orderAuthMessage)
	if user == nil {
		return
	}

	var req []orderLineRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, err)
		return
	}

	lines := lo.Map(req, func(l orderLineRequest, _ int) domain.OrderLine {
		return domain.OrderLine{ProductID: l.ID, Count: lo.FromPtrOr(l.Count, 1)}
	})

	orderID, err := h.svc.Orders.Create(r.Context(), *user, lines)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"orderId": orderID})
}

func (h *handler) order(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, orderAuthMessage)
	if user == nil {
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	order, err := h.svc.Orders.Get(r.Context(), user.ID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.converter().order(order))
}

func (h *handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, orderAuthMessage)
	if user == nil {
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req orderUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	err = h.svc.Orders.Update(r.Context(), user.ID, id, domain.OrderUpdate{
		Status:       req.Status,
		DeliveryType: req.DeliveryType,
		PaymentType:  req.PaymentType,
		City:         req.City,
		Address:      req.Address,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"orderId": id})
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, orderAuthMessage)
	if user == nil {
		return
	}

	orders, err := h.svc.Orders.History(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	c := h.converter()
	writeJSON(w, http.StatusOK, lo.Map(orders, func(o domain.Order, _ int) historyDTO {
		return c.history(o)
	}))
}
