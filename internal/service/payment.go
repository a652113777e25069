package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/port"
	log "github.com/sirupsen/logrus"
)

type PaymentService struct {
	tx      port.Transactor
	orders  port.OrderRepository
	gateway port.PaymentGateway
	metrics *metrics.Metrics

	returnURL            string
	manualCaptureEnabled bool
}

type PaymentOptions struct {
	// ReturnURL is where the provider sends the buyer back, order_id is appended as a query parameter.
	ReturnURL            string
	ManualCaptureEnabled bool
}

func NewPayment(
	tx port.Transactor,
	orders port.OrderRepository,
	gateway port.PaymentGateway,
	m *metrics.Metrics,
	opts PaymentOptions,
) (*PaymentService, error) {
	if tx == nil {
		return nil, errors.New("transactor is nil")
	}
	if orders == nil {
		return nil, errors.New("order repository is nil")
	}
	if gateway == nil {
		return nil, errors.New("payment gateway is nil")
	}
	if m == nil {
		return nil, errors.New("metrics is nil")
	}
	if opts.ReturnURL == "" {
		return nil, errors.New("return URL is empty")
	}

	return &PaymentService{
		tx:                   tx,
		orders:               orders,
		gateway:              gateway,
		metrics:              m,
		returnURL:            opts.ReturnURL,
		manualCaptureEnabled: opts.ManualCaptureEnabled,
	}, nil
}

// StartPayment creates a provider payment for the caller's order and returns the URL to send the buyer to.
// Every call creates a new provider payment, which is how a failed payment is retried.
func (s *PaymentService) StartPayment(ctx context.Context, ownerID uuid.UUID, orderID int64) (string, error) {
	if ownerID == uuid.Nil {
		return "", domain.ErrUnauthenticated
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("orders.GetOrder: %w", err)
	}
	if order.OwnerID != ownerID {
		return "", fmt.Errorf("orders.GetOrder: %w", domain.ErrOrderNotFound)
	}
	if order.Status == domain.OrderStatusPaid {
		return "", domain.NewValidationError("Order is already paid")
	}
	if !order.TotalCost.Amount.IsPositive() {
		return "", domain.NewValidationError("Order total must be greater than zero")
	}

	payment, err := s.gateway.CreatePayment(ctx, domain.PaymentRequest{
		Amount:         order.TotalCost,
		ReturnURL:      fmt.Sprintf("%s?order_id=%d", s.returnURL, order.ID),
		Description:    fmt.Sprintf("Order #%d", order.ID),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("gateway.CreatePayment: %w", err)
	}

	if err := s.orders.SetPayment(ctx, order.ID, payment.ID); err != nil {
		return "", fmt.Errorf("orders.SetPayment: %w", err)
	}

	log.WithFields(log.Fields{"order_id": order.ID, "payment_id": payment.ID}).Info("payment created")

	return payment.ConfirmationURL, nil
}

// ConfirmPayment asks the provider about the order's payment. A succeeded payment marks the order paid,
// any other provider status is recorded on the order as its payment error.
func (s *PaymentService) ConfirmPayment(ctx context.Context, orderID int64) (domain.PaymentResult, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("orders.GetOrder: %w", err)
	}
	if order.PaymentID == nil || *order.PaymentID == "" {
		return domain.PaymentResult{}, domain.NewValidationError("Payment ID is missing for this order")
	}

	payment, err := s.gateway.FindPayment(ctx, *order.PaymentID)
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("gateway.FindPayment: %w", err)
	}

	s.metrics.PaymentOutcomes.WithLabelValues(string(payment.Status)).Inc()
	result := domain.PaymentResult{Order: order, Status: payment.Status}

	if !result.Succeeded() {
		paymentErr := fmt.Sprintf("payment not completed, status: %s", payment.Status)
		if err := s.orders.SetPaymentError(ctx, order.ID, &paymentErr); err != nil {
			return domain.PaymentResult{}, fmt.Errorf("orders.SetPaymentError: %w", err)
		}
		result.Order.PaymentError = &paymentErr

		log.WithFields(log.Fields{"order_id": order.ID, "payment_status": payment.Status}).Warn("payment not completed")

		return result, nil
	}

	err = s.tx.WithinTx(ctx, func(repos port.Repositories) error {
		if err := repos.Orders.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPaid); err != nil {
			return fmt.Errorf("orders.UpdateOrderStatus: %w", err)
		}
		if err := repos.Orders.SetPaymentError(ctx, order.ID, nil); err != nil {
			return fmt.Errorf("orders.SetPaymentError: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("tx.WithinTx: %w", err)
	}

	result.Order.Status = domain.OrderStatusPaid
	result.Order.PaymentError = nil

	log.WithField("order_id", order.ID).Info("payment confirmed")

	return result, nil
}

// ManualCapture marks the caller's order paid from a card form. The card is checked before anything else,
// and nothing is written unless manual capture is enabled.
func (s *PaymentService) ManualCapture(ctx context.Context, ownerID uuid.UUID, orderID int64, card domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}
	if !s.manualCaptureEnabled {
		return fmt.Errorf("manual capture is disabled: %w", domain.ErrForbidden)
	}
	if ownerID == uuid.Nil {
		return domain.ErrUnauthenticated
	}

	err := s.tx.WithinTx(ctx, func(repos port.Repositories) error {
		order, err := repos.Orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.GetOrderForUpdate: %w", err)
		}
		if order.OwnerID != ownerID {
			return fmt.Errorf("orders.GetOrderForUpdate: %w", domain.ErrOrderNotFound)
		}

		if err := repos.Orders.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPaid); err != nil {
			return fmt.Errorf("orders.UpdateOrderStatus: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx.WithinTx: %w", err)
	}

	s.metrics.PaymentOutcomes.WithLabelValues("manual_capture").Inc()
	log.WithField("order_id", orderID).Info("order paid by manual capture")

	return nil
}
