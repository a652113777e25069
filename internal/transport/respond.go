package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/nikolayk812/storefront/internal/domain"
	log "github.com/sirupsen/logrus"
)

const maxJSONBody = 1 << 20

var errInvalidJSON = domain.NewValidationError("Invalid JSON")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// respondError maps a service error to its status code. Unexpected errors are logged
// and reported without detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		if len(vErr.Fields) > 0 && vErr.Message == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": vErr.Fields})
			return
		}
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, domain.ErrBasketItemNotFound):
		writeError(w, http.StatusNotFound, "Item not found in basket")
	case errors.Is(err, domain.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrPaymentRejected):
		log.WithError(err).WithField("url", r.URL.String()).Warn("payment provider rejected request")
		writeError(w, http.StatusBadGateway, "Payment provider rejected the request")
	case errors.Is(err, domain.ErrPaymentUnavailable):
		log.WithError(err).WithField("url", r.URL.String()).Warn("payment provider unavailable")
		writeError(w, http.StatusServiceUnavailable, "Payment provider is unavailable, try again later")
	default:
		log.WithError(err).WithFields(log.Fields{"method": r.Method, "url": r.URL.String()}).Error("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody)).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidJSON, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("Invalid ID")
	}
	return id, nil
}

// requireViewer writes 401 with msg and returns nil when the request is anonymous.
func requireViewer(w http.ResponseWriter, r *http.Request, msg string) *domain.User {
	user := viewer(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, msg)
	}
	return user
}
