package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
)

type OrderService struct {
	tx       port.Transactor
	orders   port.OrderRepository
	catalog  port.CatalogRepository
	clock    Clock
	currency currency.Unit
	metrics  *metrics.Metrics
}

func NewOrder(
	tx port.Transactor,
	orders port.OrderRepository,
	catalog port.CatalogRepository,
	clock Clock,
	unit currency.Unit,
	m *metrics.Metrics,
) (*OrderService, error) {
	if tx == nil {
		return nil, errors.New("transactor is nil")
	}
	if orders == nil {
		return nil, errors.New("order repository is nil")
	}
	if catalog == nil {
		return nil, errors.New("catalog repository is nil")
	}
	if m == nil {
		return nil, errors.New("metrics is nil")
	}

	return &OrderService{
		tx:       tx,
		orders:   orders,
		catalog:  catalog,
		clock:    clock,
		currency: unit,
		metrics:  m,
	}, nil
}

// Create turns the requested lines, or the basket when none are given, into a pending order.
// Pricing, stock decrement and basket clearing happen in one transaction.
func (s *OrderService) Create(ctx context.Context, user domain.User, lines []domain.OrderLine) (int64, error) {
	if user.ID == uuid.Nil {
		return 0, domain.ErrUnauthenticated
	}

	today := s.clock.Today()

	var orderID int64

	err := s.tx.WithinTx(ctx, func(repos port.Repositories) error {
		if len(lines) == 0 {
			basket, err := repos.Baskets.GetBasket(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("baskets.GetBasket: %w", err)
			}
			lines = lo.Map(basket, func(line domain.BasketLine, _ int) domain.OrderLine {
				return domain.OrderLine{ProductID: line.ProductID, Count: line.Quantity}
			})
		}
		if len(lines) == 0 {
			return domain.NewValidationError("No items in order or basket is empty")
		}

		merged, err := domain.MergeOrderLines(lines)
		if err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(merged))
		total := decimal.Zero

		for _, line := range merged {
			product, err := repos.Catalog.GetProduct(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("catalog.GetProduct: %w", err)
			}

			price := domain.Money{Amount: product.PriceAt(today), Currency: s.currency}
			total = total.Add(price.Mul(line.Count).Amount)

			items = append(items, domain.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Count,
				Price:     price,
			})
		}

		profile, err := repos.Profiles.GetOrCreateProfile(ctx, user.ID, user.FirstName)
		if err != nil {
			return fmt.Errorf("profiles.GetOrCreateProfile: %w", err)
		}
		if !profile.HasContact() {
			return domain.NewValidationError("Profile is missing necessary information (fullName, email)")
		}

		orderID, err = repos.Orders.InsertOrder(ctx, domain.Order{
			OwnerID:      user.ID,
			Items:        items,
			FullName:     profile.FullName,
			Email:        profile.Email,
			Phone:        profile.Phone,
			DeliveryType: domain.DefaultDeliveryType,
			PaymentType:  domain.DefaultPaymentType,
			TotalCost:    domain.Money{Amount: total, Currency: s.currency},
			Status:       domain.OrderStatusPending,
		})
		if err != nil {
			return fmt.Errorf("orders.InsertOrder: %w", err)
		}

		for _, line := range merged {
			if err := repos.Catalog.DecrementStock(ctx, line.ProductID, line.Count); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return domain.NewValidationError(fmt.Sprintf("Not enough stock for product %d", line.ProductID))
				}
				return fmt.Errorf("catalog.DecrementStock: %w", err)
			}
		}

		if err := repos.Baskets.Clear(ctx, user.ID); err != nil {
			return fmt.Errorf("baskets.Clear: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("tx.WithinTx: %w", err)
	}

	s.metrics.OrdersCreated.Inc()
	log.WithFields(log.Fields{"order_id": orderID, "user_id": user.ID}).Info("order created")

	return orderID, nil
}

// OpenOrders lists the caller's orders that are still pending or accepted.
func (s *OrderService) OpenOrders(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error) {
	return s.search(ctx, domain.OrderFilter{OwnerID: ownerID, Statuses: domain.OpenOrderStatuses()})
}

// History lists all of the caller's orders, newest first.
func (s *OrderService) History(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error) {
	return s.search(ctx, domain.OrderFilter{OwnerID: ownerID})
}

// Get returns the order only to its owner, other callers see it as missing.
func (s *OrderService) Get(ctx context.Context, ownerID uuid.UUID, orderID int64) (domain.Order, error) {
	if ownerID == uuid.Nil {
		return domain.Order{}, domain.ErrUnauthenticated
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}
	if order.OwnerID != ownerID {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", domain.ErrOrderNotFound)
	}

	orders, err := s.attachProducts(ctx, []domain.Order{order})
	if err != nil {
		return domain.Order{}, err
	}

	return orders[0], nil
}

// Update applies a status change, accepted when none is given, and optional delivery details.
func (s *OrderService) Update(ctx context.Context, ownerID uuid.UUID, orderID int64, update domain.OrderUpdate) error {
	if ownerID == uuid.Nil {
		return domain.ErrUnauthenticated
	}

	status, err := update.ResolveStatus()
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(repos port.Repositories) error {
		order, err := repos.Orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.GetOrderForUpdate: %w", err)
		}
		if order.OwnerID != ownerID {
			return fmt.Errorf("orders.GetOrderForUpdate: %w", domain.ErrOrderNotFound)
		}

		if err := repos.Orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
			return fmt.Errorf("orders.UpdateOrderStatus: %w", err)
		}

		if err := repos.Orders.UpdateOrderDelivery(ctx, orderID, update); err != nil {
			return fmt.Errorf("orders.UpdateOrderDelivery: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("tx.WithinTx: %w", err)
	}

	log.WithFields(log.Fields{"order_id": orderID, "status": status}).Info("order updated")

	return nil
}

func (s *OrderService) search(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.OwnerID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}

	orders, err := s.orders.SearchOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return s.attachProducts(ctx, orders)
}

// attachProducts loads the current catalog record of every ordered product for display.
func (s *OrderService) attachProducts(ctx context.Context, orders []domain.Order) ([]domain.Order, error) {
	var productIDs []int64
	for _, order := range orders {
		for _, item := range order.Items {
			productIDs = append(productIDs, item.ProductID)
		}
	}
	if len(productIDs) == 0 {
		return orders, nil
	}

	products, err := s.catalog.GetProducts(ctx, lo.Uniq(productIDs))
	if err != nil {
		return nil, fmt.Errorf("catalog.GetProducts: %w", err)
	}
	byID := lo.KeyBy(products, func(p domain.Product) int64 {
		return p.ID
	})

	for i := range orders {
		for j := range orders[i].Items {
			if product, ok := byID[orders[i].Items[j].ProductID]; ok {
				orders[i].Items[j].Product = &product
			}
		}
	}

	return orders, nil
}
