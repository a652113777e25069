package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID int64) (domain.Order, error)

	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) (int64, error)

	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	UpdateOrderDelivery(ctx context.Context, orderID int64, update domain.OrderUpdate) error

	SetPayment(ctx context.Context, orderID int64, paymentID string) error
	SetPaymentError(ctx context.Context, orderID int64, paymentError *string) error
}
