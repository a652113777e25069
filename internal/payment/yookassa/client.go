package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	log "github.com/sirupsen/logrus"
)

const (
	opCreatePayment = "create_payment"
	opFindPayment   = "find_payment"

	maxErrorBody = 512
)

type Config struct {
	BaseURL    string
	ShopID     string
	SecretKey  string
	Timeout    time.Duration
	MaxRetries uint64
}

type Option func(*client)

// WithInitialInterval sets the first backoff delay, later delays grow exponentially.
func WithInitialInterval(d time.Duration) Option {
	return func(c *client) {
		c.initialInterval = d
	}
}

// WithAttemptObserver is called after every HTTP attempt with the operation and "ok", "retry" or "fail".
func WithAttemptObserver(fn func(operation, result string)) Option {
	return func(c *client) {
		c.observe = fn
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.http = hc
	}
}

type client struct {
	http            *http.Client
	baseURL         string
	shopID          string
	secretKey       string
	maxRetries      uint64
	initialInterval time.Duration
	observe         func(operation, result string)
}

func New(cfg Config, opts ...Option) (port.PaymentGateway, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is empty")
	}
	if cfg.ShopID == "" || cfg.SecretKey == "" {
		return nil, errors.New("shop ID and secret key are required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout is not positive: %s", cfg.Timeout)
	}

	c := &client{
		http:            &http.Client{Timeout: cfg.Timeout},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		shopID:          cfg.ShopID,
		secretKey:       cfg.SecretKey,
		maxRetries:      cfg.MaxRetries,
		initialInterval: 200 * time.Millisecond,
		observe:         func(string, string) {},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createPaymentRequest struct {
	Amount       amount       `json:"amount"`
	Confirmation confirmation `json:"confirmation"`
	Capture      bool         `json:"capture"`
	Description  string       `json:"description"`
}

type paymentResponse struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Confirmation *confirmation `json:"confirmation"`
}

func (c *client) CreatePayment(ctx context.Context, req domain.PaymentRequest) (domain.Payment, error) {
	if req.IdempotencyKey == "" {
		return domain.Payment{}, errors.New("idempotency key is empty")
	}
	if !req.Amount.Amount.IsPositive() {
		return domain.Payment{}, fmt.Errorf("amount is not positive: %s", req.Amount.Amount)
	}

	body, err := json.Marshal(createPaymentRequest{
		Amount: amount{
			Value:    req.Amount.StringFixed(),
			Currency: req.Amount.Currency.String(),
		},
		Confirmation: confirmation{
			Type:      "redirect",
			ReturnURL: req.ReturnURL,
		},
		Capture:     true,
		Description: req.Description,
	})
	if err != nil {
		return domain.Payment{}, fmt.Errorf("json.Marshal: %w", err)
	}

	resp, err := c.do(ctx, opCreatePayment, http.MethodPost, "/payments", body, req.IdempotencyKey)
	if err != nil {
		return domain.Payment{}, err
	}

	if resp.Confirmation == nil || resp.Confirmation.ConfirmationURL == "" {
		return domain.Payment{}, fmt.Errorf("%w: payment %s has no confirmation URL", domain.ErrPaymentRejected, resp.ID)
	}

	return domain.Payment{
		ID:              resp.ID,
		Status:          domain.PaymentStatus(resp.Status),
		ConfirmationURL: resp.Confirmation.ConfirmationURL,
	}, nil
}

func (c *client) FindPayment(ctx context.Context, paymentID string) (domain.Payment, error) {
	if paymentID == "" {
		return domain.Payment{}, errors.New("paymentID is empty")
	}

	resp, err := c.do(ctx, opFindPayment, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, "")
	if err != nil {
		return domain.Payment{}, err
	}

	return domain.Payment{
		ID:     resp.ID,
		Status: domain.PaymentStatus(resp.Status),
	}, nil
}

// providerError is a failed attempt; permanent ones stop the retry loop.
type providerError struct {
	statusCode int
	body       string
	permanent  bool
	cause      error
}

func (e *providerError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return fmt.Sprintf("provider responded %d: %s", e.statusCode, e.body)
}

func (e *providerError) Unwrap() error {
	return e.cause
}

// do sends the request, retrying transient failures with the same idempotency key.
func (c *client) do(ctx context.Context, operation, method, path string, body []byte, idempotencyKey string) (paymentResponse, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval

	attempt := func() (paymentResponse, error) {
		resp, err := c.attempt(ctx, method, path, body, idempotencyKey)
		if err == nil {
			c.observe(operation, "ok")
			return resp, nil
		}

		var pErr *providerError
		if ctx.Err() != nil || (errors.As(err, &pErr) && pErr.permanent) {
			c.observe(operation, "fail")
			return resp, backoff.Permanent(err)
		}

		c.observe(operation, "retry")
		log.WithError(err).WithField("operation", operation).Warn("payment provider attempt failed")
		return resp, err
	}

	resp, err := backoff.RetryWithData(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	if err == nil {
		return resp, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return resp, fmt.Errorf("%s: %w", operation, ctxErr)
	}

	var pErr *providerError
	if errors.As(err, &pErr) && pErr.permanent {
		return resp, fmt.Errorf("%s: %w: %w", operation, domain.ErrPaymentRejected, err)
	}

	return resp, fmt.Errorf("%s: %w: %w", operation, domain.ErrPaymentUnavailable, err)
}

func (c *client) attempt(ctx context.Context, method, path string, body []byte, idempotencyKey string) (paymentResponse, error) {
	var result paymentResponse

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return result, &providerError{permanent: true, cause: fmt.Errorf("http.NewRequestWithContext: %w", err)}
	}

	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotence-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return result, &providerError{cause: fmt.Errorf("http.Do: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return result, &providerError{
			statusCode: resp.StatusCode,
			body:       strings.TrimSpace(string(snippet)),
			permanent:  !isTransientStatus(resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, &providerError{permanent: true, cause: fmt.Errorf("malformed response: %w", err)}
	}
	if result.ID == "" || result.Status == "" {
		return result, &providerError{permanent: true, cause: errors.New("malformed response: missing id or status")}
	}

	return result, nil
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
