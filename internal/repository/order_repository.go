package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

type orderRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		dbtx: tx, // use provided transaction instead
	}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	var o domain.Order

	order, err := withTx(ctx, r.dbtx, func(q *db.Queries) (domain.Order, error) {
		dbOrder, err := q.GetOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return o, fmt.Errorf("q.GetOrder: %w", domain.ErrOrderNotFound)
			}
			return o, fmt.Errorf("q.GetOrder: %w", err)
		}

		dbOrderItems, err := q.GetOrderItems(ctx, []int64{orderID})
		if err != nil {
			return o, fmt.Errorf("q.GetOrderItems: %w", err)
		}

		domainOrder, err := mapDBOrderToDomain(dbOrder, dbOrderItems)
		if err != nil {
			return o, fmt.Errorf("mapDBOrderToDomain: %w", err)
		}

		return domainOrder, nil
	})
	if err != nil {
		return o, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

// GetOrderForUpdate locks the order row, items are not loaded.
func (r *orderRepository) GetOrderForUpdate(ctx context.Context, orderID int64) (domain.Order, error) {
	var o domain.Order

	if _, ok := r.dbtx.(pgx.Tx); !ok {
		return o, errors.New("GetOrderForUpdate requires a transaction")
	}

	dbOrder, err := r.q.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("q.GetOrderForUpdate: %w", domain.ErrOrderNotFound)
		}
		return o, fmt.Errorf("q.GetOrderForUpdate: %w", err)
	}

	o, err = mapDBOrderToDomain(dbOrder, nil)
	if err != nil {
		return o, fmt.Errorf("mapDBOrderToDomain: %w", err)
	}

	return o, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	if len(order.Items) == 0 {
		return 0, errors.New("no items in order")
	}
	if order.OwnerID == [16]byte{} {
		return 0, errors.New("ownerID is empty")
	}

	orderID, err := withTx(ctx, r.dbtx, func(q *db.Queries) (int64, error) {
		// Insert the order and get the generated order ID
		orderID, err := q.InsertOrder(ctx, db.InsertOrderParams{
			UserID:       order.OwnerID,
			FullName:     order.FullName,
			Email:        order.Email,
			Phone:        order.Phone,
			DeliveryType: order.DeliveryType,
			PaymentType:  order.PaymentType,
			City:         order.City,
			Address:      order.Address,
			TotalCost:    order.TotalCost.Amount,
			Currency:     order.TotalCost.Currency.String(),
			Status:       string(lo.Ternary(order.Status == "", domain.OrderStatusPending, order.Status)),
		})
		if err != nil {
			return 0, fmt.Errorf("q.InsertOrder: %w", err)
		}

		for _, item := range order.Items {
			qty, err := toQuantity(item.Quantity)
			if err != nil {
				return 0, fmt.Errorf("item[%d]: %w", item.ProductID, err)
			}

			arg := db.OrderItem{
				OrderID:   orderID,
				ProductID: item.ProductID,
				Quantity:  qty,
				Price:     item.Price.Amount,
			}
			if err := q.InsertOrderItem(ctx, arg); err != nil {
				return 0, fmt.Errorf("q.InsertOrderItem: %w", err)
			}
		}

		return orderID, nil
	})
	if err != nil {
		return 0, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

func mapDomainOrderFilterToDBFilter(filter domain.OrderFilter) db.SearchOrdersParams {
	statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string {
		return string(s)
	})

	params := db.SearchOrdersParams{
		UserID:   filter.OwnerID,
		Statuses: nilSliceIfEmpty(statuses),
	}

	if filter.CreatedAt != nil {
		params.CreatedAfter = filter.CreatedAt.After
		params.CreatedBefore = filter.CreatedAt.Before
	}

	return params
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	dbOrders, err := r.q.SearchOrders(ctx, mapDomainOrderFilterToDBFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("q.SearchOrders: %w", err)
	}

	if len(dbOrders) == 0 {
		return nil, nil
	}

	orderIDs := lo.Map(dbOrders, func(o db.Order, _ int) int64 { return o.ID })

	dbOrderItems, err := r.q.GetOrderItems(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	itemsByOrder := lo.GroupBy(dbOrderItems, func(item db.OrderItem) int64 { return item.OrderID })

	orders := make([]domain.Order, 0, len(dbOrders))
	for _, dbOrder := range dbOrders {
		order, err := mapDBOrderToDomain(dbOrder, itemsByOrder[dbOrder.ID])
		if err != nil {
			return nil, fmt.Errorf("mapDBOrderToDomain: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	if orderID <= 0 {
		return fmt.Errorf("orderID is empty")
	}
	if status == "" {
		return fmt.Errorf("status is empty")
	}

	rowsAffected, err := r.q.UpdateOrderStatus(ctx, orderID, string(status))
	if err != nil {
		return fmt.Errorf("q.UpdateOrderStatus: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.UpdateOrderStatus: %w", domain.ErrOrderNotFound)
	}

	return nil
}

func (r *orderRepository) UpdateOrderDelivery(ctx context.Context, orderID int64, update domain.OrderUpdate) error {
	if orderID <= 0 {
		return fmt.Errorf("orderID is empty")
	}

	if update.DeliveryType == nil && update.PaymentType == nil && update.City == nil && update.Address == nil {
		return nil
	}

	rowsAffected, err := r.q.UpdateOrderDelivery(ctx, db.UpdateOrderDeliveryParams{
		ID:           orderID,
		DeliveryType: update.DeliveryType,
		PaymentType:  update.PaymentType,
		City:         update.City,
		Address:      update.Address,
	})
	if err != nil {
		return fmt.Errorf("q.UpdateOrderDelivery: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.UpdateOrderDelivery: %w", domain.ErrOrderNotFound)
	}

	return nil
}

func (r *orderRepository) SetPayment(ctx context.Context, orderID int64, paymentID string) error {
	if paymentID == "" {
		return fmt.Errorf("paymentID is empty")
	}

	rowsAffected, err := r.q.SetOrderPayment(ctx, orderID, paymentID)
	if err != nil {
		return fmt.Errorf("q.SetOrderPayment: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.SetOrderPayment: %w", domain.ErrOrderNotFound)
	}

	return nil
}

func (r *orderRepository) SetPaymentError(ctx context.Context, orderID int64, paymentError *string) error {
	rowsAffected, err := r.q.SetOrderPaymentError(ctx, orderID, paymentError)
	if err != nil {
		return fmt.Errorf("q.SetOrderPaymentError: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.SetOrderPaymentError: %w", domain.ErrOrderNotFound)
	}

	return nil
}

func mapDBOrderItemToDomain(row db.OrderItem, unit currency.Unit) domain.OrderItem {
	return domain.OrderItem{
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		Price:     domain.Money{Amount: row.Price, Currency: unit},
	}
}

func mapDBOrderToDomain(dbOrder db.Order, dbOrderItems []db.OrderItem) (domain.Order, error) {
	var o domain.Order

	parsedCurrency, err := currency.ParseISO(dbOrder.Currency)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", dbOrder.Currency, err)
	}

	status, err := domain.ToOrderStatus(dbOrder.Status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", dbOrder.Status, err)
	}

	items := lo.Map(dbOrderItems, func(row db.OrderItem, _ int) domain.OrderItem {
		return mapDBOrderItemToDomain(row, parsedCurrency)
	})

	return domain.Order{
		ID:           dbOrder.ID,
		OwnerID:      dbOrder.UserID,
		Items:        nilSliceIfEmpty(items),
		FullName:     dbOrder.FullName,
		Email:        dbOrder.Email,
		Phone:        dbOrder.Phone,
		DeliveryType: dbOrder.DeliveryType,
		PaymentType:  dbOrder.PaymentType,
		City:         dbOrder.City,
		Address:      dbOrder.Address,
		TotalCost:    domain.Money{Amount: dbOrder.TotalCost, Currency: parsedCurrency},
		Status:       status,
		PaymentID:    dbOrder.PaymentID,
		PaymentError: dbOrder.PaymentError,
		CreatedAt:    dbOrder.CreatedAt,
		UpdatedAt:    dbOrder.UpdatedAt,
	}, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
