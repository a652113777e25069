package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
)

type basketRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewBasket(pool *pgxpool.Pool) port.BasketRepository {
	return &basketRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewBasketWithTx(tx pgx.Tx) port.BasketRepository {
	return &basketRepository{
		q:    db.New(tx),
		dbtx: tx,
	}
}

func (r *basketRepository) GetBasket(ctx context.Context, ownerID uuid.UUID) ([]domain.BasketLine, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.q.GetBasket(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("q.GetBasket: %w", err)
	}

	return nilSliceIfEmpty(lo.Map(rows, func(row db.BasketItem, _ int) domain.BasketLine {
		return domain.BasketLine{
			ProductID: row.ProductID,
			Quantity:  int(row.Quantity),
			AddedAt:   row.AddedAt,
			UpdatedAt: row.UpdatedAt,
		}
	})), nil
}

// AddItem increments the quantity of an existing line or creates a new one.
func (r *basketRepository) AddItem(ctx context.Context, ownerID uuid.UUID, productID int64, quantity int) error {
	if ownerID == uuid.Nil {
		return fmt.Errorf("ownerID is empty")
	}
	if err := domain.ValidateBasketChange(productID, quantity); err != nil {
		return fmt.Errorf("domain.ValidateBasketChange: %w", err)
	}

	qty, err := toQuantity(quantity)
	if err != nil {
		return err
	}

	err = r.q.AddBasketItem(ctx, db.BasketItemParams{
		UserID:    ownerID,
		ProductID: productID,
		Quantity:  qty,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("q.AddBasketItem: %w", domain.ErrProductNotFound)
		}
		// the accumulated line quantity left the int4 range
		if isNumericOutOfRange(err) {
			return fmt.Errorf("q.AddBasketItem: %w", domain.NewValidationError("Invalid product ID or count"))
		}
		return fmt.Errorf("q.AddBasketItem: %w", err)
	}

	return nil
}

// RemoveItem decrements the line quantity and deletes the line when it would drop to zero or below.
func (r *basketRepository) RemoveItem(ctx context.Context, ownerID uuid.UUID, productID int64, quantity int) error {
	if ownerID == uuid.Nil {
		return fmt.Errorf("ownerID is empty")
	}
	if err := domain.ValidateBasketChange(productID, quantity); err != nil {
		return fmt.Errorf("domain.ValidateBasketChange: %w", err)
	}

	qty, err := toQuantity(quantity)
	if err != nil {
		return err
	}

	_, err = withTx(ctx, r.dbtx, func(q *db.Queries) (struct{}, error) {
		var none struct{}

		decremented, err := q.DecrementBasketItem(ctx, db.BasketItemParams{
			UserID:    ownerID,
			ProductID: productID,
			Quantity:  qty,
		})
		if err != nil {
			return none, fmt.Errorf("q.DecrementBasketItem: %w", err)
		}
		if decremented > 0 {
			return none, nil
		}

		deleted, err := q.DeleteBasketItem(ctx, ownerID, productID)
		if err != nil {
			return none, fmt.Errorf("q.DeleteBasketItem: %w", err)
		}
		if deleted == 0 {
			return none, fmt.Errorf("q.DeleteBasketItem: %w", domain.ErrBasketItemNotFound)
		}

		return none, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func (r *basketRepository) Clear(ctx context.Context, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return fmt.Errorf("ownerID is empty")
	}

	if _, err := r.q.ClearBasket(ctx, ownerID); err != nil {
		return fmt.Errorf("q.ClearBasket: %w", err)
	}

	return nil
}
