package service_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

const returnURL = "http://shop.test/payment-success/"

type paymentFixture struct {
	store   *memStore
	gateway *fakeGateway
	metrics *metrics.Metrics
	svc     *service.PaymentService

	owner   domain.User
	orderID int64
}

func newPaymentFixture(t *testing.T, manualCapture bool) *paymentFixture {
	t.Helper()

	f := &paymentFixture{
		store:   newMemStore(),
		gateway: &fakeGateway{},
		metrics: metrics.New(),
		owner:   newUser("owner"),
	}

	var err error
	f.svc, err = service.NewPayment(&fakeTransactor{s: f.store}, f.store.repositories().Orders, f.gateway, f.metrics, service.PaymentOptions{
		ReturnURL:            returnURL,
		ManualCaptureEnabled: manualCapture,
	})
	require.NoError(t, err)

	f.orderID, err = f.store.repositories().Orders.InsertOrder(t.Context(), domain.Order{
		OwnerID:   f.owner.ID,
		FullName:  "Jane Buyer",
		Email:     "jane@example.com",
		TotalCost: domain.Money{Amount: decimal.RequireFromString("240"), Currency: currency.RUB},
		Status:    domain.OrderStatusPending,
	})
	require.NoError(t, err)

	return f
}

func TestStartPayment(t *testing.T) {
	f := newPaymentFixture(t, false)

	url, err := f.svc.StartPayment(t.Context(), f.owner.ID, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/confirm/pay-1", url)

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, "240.00", req.Amount.StringFixed())
	assert.Equal(t, currency.RUB, req.Amount.Currency)
	assert.Equal(t, "http://shop.test/payment-success/?order_id=1", req.ReturnURL)
	assert.Equal(t, "Order #1", req.Description)
	_, err = uuid.Parse(req.IdempotencyKey)
	assert.NoError(t, err)

	assert.Equal(t, lo.ToPtr("pay-1"), f.store.order(f.orderID).PaymentID)

	// a retry creates a fresh provider payment with a new key
	_, err = f.svc.StartPayment(t.Context(), f.owner.ID, f.orderID)
	require.NoError(t, err)
	require.Len(t, f.gateway.requests, 2)
	assert.NotEqual(t, req.IdempotencyKey, f.gateway.requests[1].IdempotencyKey)
	assert.Equal(t, lo.ToPtr("pay-2"), f.store.order(f.orderID).PaymentID)
}

func TestStartPaymentErrors(t *testing.T) {
	f := newPaymentFixture(t, false)

	_, err := f.svc.StartPayment(t.Context(), uuid.Nil, f.orderID)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.svc.StartPayment(t.Context(), uuid.New(), f.orderID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.svc.StartPayment(t.Context(), f.owner.ID, 999)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	f.gateway.createErr = errors.Join(domain.ErrPaymentUnavailable, errors.New("503"))
	_, err = f.svc.StartPayment(t.Context(), f.owner.ID, f.orderID)
	require.ErrorIs(t, err, domain.ErrPaymentUnavailable)
	assert.Nil(t, f.store.order(f.orderID).PaymentID)

	f.gateway.createErr = nil
	require.NoError(t, f.store.repositories().Orders.UpdateOrderStatus(t.Context(), f.orderID, domain.OrderStatusPaid))
	_, err = f.svc.StartPayment(t.Context(), f.owner.ID, f.orderID)
	require.EqualError(t, err, "Order is already paid")
}

func TestStartPaymentForFreeOrder(t *testing.T) {
	f := newPaymentFixture(t, false)

	orderID, err := f.store.repositories().Orders.InsertOrder(t.Context(), domain.Order{
		OwnerID:   f.owner.ID,
		FullName:  "Jane Buyer",
		Email:     "jane@example.com",
		TotalCost: domain.Money{Amount: decimal.Zero, Currency: currency.RUB},
		Status:    domain.OrderStatusPending,
	})
	require.NoError(t, err)

	_, err = f.svc.StartPayment(t.Context(), f.owner.ID, orderID)
	require.EqualError(t, err, "Order total must be greater than zero")
	assert.True(t, domain.IsValidation(err))

	assert.Empty(t, f.gateway.requests)
	assert.Nil(t, f.store.order(orderID).PaymentID)
}

func TestConfirmPayment(t *testing.T) {
	tests := []struct {
		name           string
		status         domain.PaymentStatus
		expectedStatus domain.OrderStatus
		expectedError  *string
	}{
		{
			name:           "succeeded marks order paid",
			status:         domain.PaymentStatusSucceeded,
			expectedStatus: domain.OrderStatusPaid,
		},
		{
			name:           "canceled is recorded",
			status:         domain.PaymentStatusCanceled,
			expectedStatus: domain.OrderStatusPending,
			expectedError:  lo.ToPtr("payment not completed, status: canceled"),
		},
		{
			name:           "pending is recorded",
			status:         domain.PaymentStatusPending,
			expectedStatus: domain.OrderStatusPending,
			expectedError:  lo.ToPtr("payment not completed, status: pending"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t, false)

			_, err := f.svc.StartPayment(t.Context(), f.owner.ID, f.orderID)
			require.NoError(t, err)

			f.gateway.status = tt.status

			result, err := f.svc.ConfirmPayment(t.Context(), f.orderID)
			require.NoError(t, err)

			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.status == domain.PaymentStatusSucceeded, result.Succeeded())
			assert.Equal(t, tt.expectedStatus, result.Order.Status)
			assert.Equal(t, tt.expectedError, result.Order.PaymentError)

			stored := f.store.order(f.orderID)
			assert.Equal(t, tt.expectedStatus, stored.Status)
			assert.Equal(t, tt.expectedError, stored.PaymentError)

			assert.Equal(t, []string{"pay-1"}, f.gateway.lookups)
			assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.PaymentOutcomes.WithLabelValues(string(tt.status))), 0)
		})
	}
}

func TestConfirmPaymentClearsPreviousError(t *testing.T) {
	f := newPaymentFixture(t, false)

	_, err := f.svc.StartPayment(t.Context(), f.owner.ID, f.orderID)
	require.NoError(t, err)

	f.gateway.status = domain.PaymentStatusCanceled
	_, err = f.svc.ConfirmPayment(t.Context(), f.orderID)
	require.NoError(t, err)

	f.gateway.status = domain.PaymentStatusSucceeded
	_, err = f.svc.ConfirmPayment(t.Context(), f.orderID)
	require.NoError(t, err)

	stored := f.store.order(f.orderID)
	assert.Equal(t, domain.OrderStatusPaid, stored.Status)
	assert.Nil(t, stored.PaymentError)
}

func TestConfirmPaymentErrors(t *testing.T) {
	f := newPaymentFixture(t, false)

	_, err := f.svc.ConfirmPayment(t.Context(), f.orderID)
	require.EqualError(t, err, "Payment ID is missing for this order")
	assert.Empty(t, f.gateway.lookups)

	_, err = f.svc.ConfirmPayment(t.Context(), 999)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.svc.StartPayment(t.Context(), f.owner.ID, f.orderID)
	require.NoError(t, err)

	f.gateway.findErr = domain.ErrPaymentRejected
	_, err = f.svc.ConfirmPayment(t.Context(), f.orderID)
	require.ErrorIs(t, err, domain.ErrPaymentRejected)
	assert.Equal(t, domain.OrderStatusPending, f.store.order(f.orderID).Status)
}

func validCard() domain.Card {
	return domain.Card{
		Number: "4111111111111111",
		Name:   "JANE BUYER",
		Month:  "09",
		Year:   "30",
		Code:   "123",
	}
}

func TestManualCapture(t *testing.T) {
	f := newPaymentFixture(t, true)

	require.NoError(t, f.svc.ManualCapture(t.Context(), f.owner.ID, f.orderID, validCard()))
	assert.Equal(t, domain.OrderStatusPaid, f.store.order(f.orderID).Status)
	assert.Empty(t, f.gateway.requests)
}

func TestManualCaptureErrors(t *testing.T) {
	shortCard := validCard()
	shortCard.Number = "411111111111111"

	tests := []struct {
		name        string
		enabled     bool
		stranger    bool
		card        domain.Card
		expectedErr error
		expectedMsg string
	}{
		{
			name:        "15-digit card",
			enabled:     true,
			card:        shortCard,
			expectedMsg: "Invalid card number. It should be a 16-digit number.",
		},
		{
			name:        "15-digit card while disabled",
			card:        shortCard,
			expectedMsg: "Invalid card number. It should be a 16-digit number.",
		},
		{
			name:        "disabled",
			card:        validCard(),
			expectedErr: domain.ErrForbidden,
		},
		{
			name:        "other owner",
			enabled:     true,
			stranger:    true,
			card:        validCard(),
			expectedErr: domain.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t, tt.enabled)

			ownerID := f.owner.ID
			if tt.stranger {
				ownerID = uuid.New()
			}

			err := f.svc.ManualCapture(t.Context(), ownerID, f.orderID, tt.card)
			require.Error(t, err)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
			if tt.expectedMsg != "" {
				assert.EqualError(t, err, tt.expectedMsg)
			}

			assert.Equal(t, domain.OrderStatusPending, f.store.order(f.orderID).Status)
		})
	}
}
