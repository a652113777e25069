package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type BasketRepository interface {
	GetBasket(ctx context.Context, ownerID uuid.UUID) ([]domain.BasketLine, error)

	AddItem(ctx context.Context, ownerID uuid.UUID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, ownerID uuid.UUID, productID int64, quantity int) error

	Clear(ctx context.Context, ownerID uuid.UUID) error
}
