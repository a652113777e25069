package transport

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nikolayk812/storefront/internal/domain"
)

type basketRequest struct {
	ID    int64 `json:"id"`
	Count *int  `json:"count"`
}

type basketChange func(ctx context.Context, ownerID uuid.UUID, productID int64, count int) (domain.Basket, error)

func (r basketRequest) count() int {
	if r.Count == nil {
		return 1
	}
	return *r.Count
}

func (h *handler) basket(w http.ResponseWriter, r *http.Request) {
	user := requireViewer(w, r, "User not authenticated")
	if user == nil {
		return
	}

	basket, err := h.svc.Baskets.List(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.converter().basket(basket))
}

func (h *handler) addToBasket(w http.ResponseWriter, r *http.Request) {
	h.changeBasket(w, r, h.svc.Baskets.Add)
}

func (h *handler) removeFromBasket(w http.ResponseWriter, r *http.Request) {
	h.changeBasket(w, r, h.svc.Baskets.Remove)
}

func (h *handler) changeBasket(w http.ResponseWriter, r *http.Request, change basketChange) {
	user := requireViewer(w, r, "User not authenticated")
	if user == nil {
		return
	}

	var req basketRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.ID <= 0 {
		respondError(w, r, domain.NewValidationError("Product ID is required"))
		return
	}
	if err := domain.ValidateBasketChange(req.ID, req.count()); err != nil {
		respondError(w, r, err)
		return
	}

	basket, err := change(r.Context(), user.ID, req.ID, req.count())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.converter().basket(basket))
}
