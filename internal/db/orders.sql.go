package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, full_name, email, phone, delivery_type, payment_type, city, address,
       total_cost, currency, status, payment_id, payment_error, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.FullName,
		&i.Email,
		&i.Phone,
		&i.DeliveryType,
		&i.PaymentType,
		&i.City,
		&i.Address,
		&i.TotalCost,
		&i.Currency,
		&i.Status,
		&i.PaymentID,
		&i.PaymentError,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertOrder = `-- name: InsertOrder :one
INSERT INTO orders (user_id, full_name, email, phone, delivery_type, payment_type, city, address,
                    total_cost, currency, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id
`

type InsertOrderParams struct {
	UserID       uuid.UUID
	FullName     string
	Email        string
	Phone        *string
	DeliveryType string
	PaymentType  string
	City         string
	Address      string
	TotalCost    decimal.Decimal
	Currency     string
	Status       string
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.UserID,
		arg.FullName,
		arg.Email,
		arg.Phone,
		arg.DeliveryType,
		arg.PaymentType,
		arg.City,
		arg.Address,
		arg.TotalCost,
		arg.Currency,
		arg.Status,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const insertOrderItem = `-- name: InsertOrderItem :exec
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4)
`

func (q *Queries) InsertOrderItem(ctx context.Context, arg OrderItem) error {
	_, err := q.db.Exec(ctx, insertOrderItem, arg.OrderID, arg.ProductID, arg.Quantity, arg.Price)
	return err
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id int64) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id int64) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const getOrderItems = `-- name: GetOrderItems :many
SELECT order_id, product_id, quantity, price
FROM order_items
WHERE order_id = ANY ($1::bigint[])
ORDER BY order_id, product_id
`

func (q *Queries) GetOrderItems(ctx context.Context, orderIDs []int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.OrderID, &i.ProductID, &i.Quantity, &i.Price); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const searchOrders = `-- name: SearchOrders :many
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
  AND ($2::text[] IS NULL OR status = ANY ($2::text[]))
  AND ($3::timestamptz IS NULL OR created_at > $3::timestamptz)
  AND ($4::timestamptz IS NULL OR created_at < $4::timestamptz)
ORDER BY created_at DESC, id DESC
`

type SearchOrdersParams struct {
	UserID        uuid.UUID
	Statuses      []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (q *Queries) SearchOrders(ctx context.Context, arg SearchOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, searchOrders, arg.UserID, arg.Statuses, arg.CreatedAfter, arg.CreatedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :execrows
UPDATE orders
SET status     = $2,
    updated_at = now()
WHERE id = $1
`

func (q *Queries) UpdateOrderStatus(ctx context.Context, id int64, status string) (int64, error) {
	result, err := q.db.Exec(ctx, updateOrderStatus, id, status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateOrderDelivery = `-- name: UpdateOrderDelivery :execrows
UPDATE orders
SET delivery_type = COALESCE($2, delivery_type),
    payment_type  = COALESCE($3, payment_type),
    city          = COALESCE($4, city),
    address       = COALESCE($5, address),
    updated_at    = now()
WHERE id = $1
`

type UpdateOrderDeliveryParams struct {
	ID           int64
	DeliveryType *string
	PaymentType  *string
	City         *string
	Address      *string
}

func (q *Queries) UpdateOrderDelivery(ctx context.Context, arg UpdateOrderDeliveryParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateOrderDelivery, arg.ID, arg.DeliveryType, arg.PaymentType, arg.City, arg.Address)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setOrderPayment = `-- name: SetOrderPayment :execrows
UPDATE orders
SET payment_id    = $2,
    payment_error = NULL,
    updated_at    = now()
WHERE id = $1
`

func (q *Queries) SetOrderPayment(ctx context.Context, id int64, paymentID string) (int64, error) {
	result, err := q.db.Exec(ctx, setOrderPayment, id, paymentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setOrderPaymentError = `-- name: SetOrderPaymentError :execrows
UPDATE orders
SET payment_error = $2,
    updated_at    = now()
WHERE id = $1
`

func (q *Queries) SetOrderPaymentError(ctx context.Context, id int64, paymentError *string) (int64, error) {
	result, err := q.db.Exec(ctx, setOrderPaymentError, id, paymentError)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
