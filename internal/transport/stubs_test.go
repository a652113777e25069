package transport_test

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/nikolayk812/storefront/internal/transport"
)

// Each stub embeds its interface: a test that reaches an unstubbed method panics.

type stubCatalog struct {
	transport.CatalogService

	today      time.Time
	filter     domain.CatalogFilter
	catalog    domain.Page[domain.Product]
	product    domain.Product
	productErr error
	reviews    []domain.Review
	added      domain.Review
	tagsFor    *int64
}

func (s *stubCatalog) Today() time.Time { return s.today }

func (s *stubCatalog) Catalog(_ context.Context, filter domain.CatalogFilter) (domain.Page[domain.Product], error) {
	s.filter = filter
	return s.catalog, nil
}

func (s *stubCatalog) Tags(_ context.Context, categoryID *int64) ([]domain.Tag, error) {
	s.tagsFor = categoryID
	return []domain.Tag{{ID: 1, Name: "new"}}, nil
}

func (s *stubCatalog) Product(_ context.Context, _ int64) (domain.Product, error) {
	return s.product, s.productErr
}

func (s *stubCatalog) Reviews(_ context.Context, _ int64) ([]domain.Review, error) {
	return s.reviews, nil
}

func (s *stubCatalog) AddReview(_ context.Context, review domain.Review) ([]domain.Review, error) {
	s.added = review
	return append(s.reviews, review), nil
}

type stubBaskets struct {
	transport.BasketService

	ownerID   uuid.UUID
	productID int64
	count     int
	basket    domain.Basket
	err       error
}

func (s *stubBaskets) List(_ context.Context, ownerID uuid.UUID) (domain.Basket, error) {
	s.ownerID = ownerID
	return s.basket, s.err
}

func (s *stubBaskets) Add(_ context.Context, ownerID uuid.UUID, productID int64, count int) (domain.Basket, error) {
	s.ownerID, s.productID, s.count = ownerID, productID, count
	return s.basket, s.err
}

func (s *stubBaskets) Remove(_ context.Context, ownerID uuid.UUID, productID int64, count int) (domain.Basket, error) {
	s.ownerID, s.productID, s.count = ownerID, productID, -count
	return s.basket, s.err
}

type stubOrders struct {
	transport.OrderService

	lines   []domain.OrderLine
	created int64
	order   domain.Order
	orders  []domain.Order
	update  domain.OrderUpdate
	err     error
}

func (s *stubOrders) Create(_ context.Context, _ domain.User, lines []domain.OrderLine) (int64, error) {
	s.lines = lines
	return s.created, s.err
}

func (s *stubOrders) History(_ context.Context, _ uuid.UUID) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrders) Get(_ context.Context, _ uuid.UUID, _ int64) (domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) Update(_ context.Context, _ uuid.UUID, _ int64, update domain.OrderUpdate) error {
	s.update = update
	return s.err
}

type stubPayments struct {
	transport.PaymentService

	confirmationURL string
	result          domain.PaymentResult
	captureOwner    uuid.UUID
	card            domain.Card
	err             error
}

func (s *stubPayments) StartPayment(_ context.Context, _ uuid.UUID, _ int64) (string, error) {
	return s.confirmationURL, s.err
}

func (s *stubPayments) ConfirmPayment(_ context.Context, _ int64) (domain.PaymentResult, error) {
	return s.result, s.err
}

func (s *stubPayments) ManualCapture(_ context.Context, ownerID uuid.UUID, _ int64, card domain.Card) error {
	s.captureOwner, s.card = ownerID, card
	return s.err
}

type stubProfiles struct {
	transport.ProfileService

	profile domain.Profile
	update  domain.ProfileUpdate
	avatar  domain.Avatar
	content []byte
	err     error
}

func (s *stubProfiles) Get(_ context.Context, _ domain.User) (domain.Profile, error) {
	return s.profile, s.err
}

func (s *stubProfiles) Update(_ context.Context, _ domain.User, update domain.ProfileUpdate) (domain.Profile, error) {
	s.update = update
	return s.profile, s.err
}

func (s *stubProfiles) UpdateAvatar(_ context.Context, _ domain.User, avatar domain.Avatar, r io.Reader) (domain.Profile, error) {
	s.avatar = avatar
	content, err := io.ReadAll(r)
	if err != nil {
		return domain.Profile{}, err
	}
	s.content = content
	return s.profile, s.err
}

type stubAuth struct {
	transport.AuthService

	users     map[string]domain.User
	session   service.Session
	signInErr error
	change    domain.PasswordChange
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (domain.User, error) {
	user, ok := s.users[token]
	if !ok {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return user, nil
}

func (s *stubAuth) SignIn(_ context.Context, _, _ string) (service.Session, error) {
	return s.session, s.signInErr
}

func (s *stubAuth) SignUp(_ context.Context, _ domain.SignUp) (service.Session, error) {
	return s.session, nil
}

func (s *stubAuth) ChangePassword(_ context.Context, _ uuid.UUID, change domain.PasswordChange) error {
	s.change = change
	return nil
}
