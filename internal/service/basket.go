package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
)

type BasketService struct {
	baskets port.BasketRepository
	catalog port.CatalogRepository
	clock   Clock
}

func NewBasket(baskets port.BasketRepository, catalog port.CatalogRepository, clock Clock) (*BasketService, error) {
	if baskets == nil {
		return nil, errors.New("basket repository is nil")
	}
	if catalog == nil {
		return nil, errors.New("catalog repository is nil")
	}

	return &BasketService{baskets: baskets, catalog: catalog, clock: clock}, nil
}

func (s *BasketService) List(ctx context.Context, ownerID uuid.UUID) (domain.Basket, error) {
	if ownerID == uuid.Nil {
		return domain.Basket{}, domain.ErrUnauthenticated
	}

	lines, err := s.baskets.GetBasket(ctx, ownerID)
	if err != nil {
		return domain.Basket{}, fmt.Errorf("baskets.GetBasket: %w", err)
	}

	return priceBasket(ctx, s.catalog, ownerID, lines, s.clock.Today())
}

func (s *BasketService) Add(ctx context.Context, ownerID uuid.UUID, productID int64, count int) (domain.Basket, error) {
	if ownerID == uuid.Nil {
		return domain.Basket{}, domain.ErrUnauthenticated
	}
	if err := domain.ValidateBasketChange(productID, count); err != nil {
		return domain.Basket{}, err
	}

	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return domain.Basket{}, fmt.Errorf("catalog.GetProduct: %w", err)
	}

	if err := s.baskets.AddItem(ctx, ownerID, productID, count); err != nil {
		return domain.Basket{}, fmt.Errorf("baskets.AddItem: %w", err)
	}

	return s.List(ctx, ownerID)
}

func (s *BasketService) Remove(ctx context.Context, ownerID uuid.UUID, productID int64, count int) (domain.Basket, error) {
	if ownerID == uuid.Nil {
		return domain.Basket{}, domain.ErrUnauthenticated
	}
	if err := domain.ValidateBasketChange(productID, count); err != nil {
		return domain.Basket{}, err
	}

	if err := s.baskets.RemoveItem(ctx, ownerID, productID, count); err != nil {
		return domain.Basket{}, fmt.Errorf("baskets.RemoveItem: %w", err)
	}

	return s.List(ctx, ownerID)
}

// priceBasket joins stored lines with their products and values each line on the given day.
func priceBasket(ctx context.Context, catalog port.CatalogRepository, ownerID uuid.UUID, lines []domain.BasketLine, today time.Time) (domain.Basket, error) {
	basket := domain.Basket{OwnerID: ownerID}
	if len(lines) == 0 {
		return basket, nil
	}

	productIDs := lo.Map(lines, func(line domain.BasketLine, _ int) int64 {
		return line.ProductID
	})

	products, err := catalog.GetProducts(ctx, productIDs)
	if err != nil {
		return domain.Basket{}, fmt.Errorf("catalog.GetProducts: %w", err)
	}
	byID := lo.KeyBy(products, func(p domain.Product) int64 {
		return p.ID
	})

	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			continue
		}

		basket.Items = append(basket.Items, domain.BasketItem{
			Product:   product,
			Quantity:  line.Quantity,
			Price:     product.PriceAt(today),
			AddedAt:   line.AddedAt,
			UpdatedAt: line.UpdatedAt,
		})
	}

	return basket, nil
}
