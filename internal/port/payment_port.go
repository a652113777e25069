package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// PaymentGateway is a hosted-checkout payment provider.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req domain.PaymentRequest) (domain.Payment, error)
	FindPayment(ctx context.Context, paymentID string) (domain.Payment, error)
}
