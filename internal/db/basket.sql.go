package db

import (
	"context"

	"github.com/google/uuid"
)

const getBasket = `-- name: GetBasket :many
SELECT user_id, product_id, quantity, added_at, updated_at
FROM basket_items
WHERE user_id = $1
ORDER BY added_at, product_id
`

func (q *Queries) GetBasket(ctx context.Context, userID uuid.UUID) ([]BasketItem, error) {
	rows, err := q.db.Query(ctx, getBasket, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BasketItem
	for rows.Next() {
		var i BasketItem
		if err := rows.Scan(
			&i.UserID,
			&i.ProductID,
			&i.Quantity,
			&i.AddedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const addBasketItem = `-- name: AddBasketItem :exec
INSERT INTO basket_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id) DO UPDATE SET quantity   = basket_items.quantity + EXCLUDED.quantity,
                                                updated_at = now()
`

type BasketItemParams struct {
	UserID    uuid.UUID
	ProductID int64
	Quantity  int32
}

func (q *Queries) AddBasketItem(ctx context.Context, arg BasketItemParams) error {
	_, err := q.db.Exec(ctx, addBasketItem, arg.UserID, arg.ProductID, arg.Quantity)
	return err
}

const decrementBasketItem = `-- name: DecrementBasketItem :execrows
UPDATE basket_items
SET quantity   = quantity - $3,
    updated_at = now()
WHERE user_id = $1
  AND product_id = $2
  AND quantity > $3
`

// DecrementBasketItem affects no rows when the line is missing or would drop to zero.
func (q *Queries) DecrementBasketItem(ctx context.Context, arg BasketItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, decrementBasketItem, arg.UserID, arg.ProductID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteBasketItem = `-- name: DeleteBasketItem :execrows
DELETE
FROM basket_items
WHERE user_id = $1
  AND product_id = $2
`

func (q *Queries) DeleteBasketItem(ctx context.Context, userID uuid.UUID, productID int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteBasketItem, userID, productID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const clearBasket = `-- name: ClearBasket :execrows
DELETE
FROM basket_items
WHERE user_id = $1
`

func (q *Queries) ClearBasket(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, clearBasket, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
