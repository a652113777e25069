package transport

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/service"
)

type CatalogService interface {
	Today() time.Time

	Categories(ctx context.Context) ([]domain.Category, error)
	Catalog(ctx context.Context, filter domain.CatalogFilter) (domain.Page[domain.Product], error)
	Popular(ctx context.Context) ([]domain.Product, error)
	Limited(ctx context.Context) ([]domain.Product, error)
	Sales(ctx context.Context, page int) (domain.Page[domain.SaleOffer], error)
	Banners(ctx context.Context) ([]domain.Banner, error)
	Tags(ctx context.Context, categoryID *int64) ([]domain.Tag, error)

	Product(ctx context.Context, productID int64) (domain.Product, error)
	Reviews(ctx context.Context, productID int64) ([]domain.Review, error)
	AddReview(ctx context.Context, review domain.Review) ([]domain.Review, error)
}

type BasketService interface {
	List(ctx context.Context, ownerID uuid.UUID) (domain.Basket, error)
	Add(ctx context.Context, ownerID uuid.UUID, productID int64, count int) (domain.Basket, error)
	Remove(ctx context.Context, ownerID uuid.UUID, productID int64, count int) (domain.Basket, error)
}

type OrderService interface {
	Create(ctx context.Context, user domain.User, lines []domain.OrderLine) (int64, error)
	OpenOrders(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error)
	History(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error)
	Get(ctx context.Context, ownerID uuid.UUID, orderID int64) (domain.Order, error)
	Update(ctx context.Context, ownerID uuid.UUID, orderID int64, update domain.OrderUpdate) error
}

type PaymentService interface {
	StartPayment(ctx context.Context, ownerID uuid.UUID, orderID int64) (string, error)
	ConfirmPayment(ctx context.Context, orderID int64) (domain.PaymentResult, error)
	ManualCapture(ctx context.Context, ownerID uuid.UUID, orderID int64, card domain.Card) error
}

type ProfileService interface {
	Get(ctx context.Context, user domain.User) (domain.Profile, error)
	Update(ctx context.Context, user domain.User, update domain.ProfileUpdate) (domain.Profile, error)
	UpdateAvatar(ctx context.Context, user domain.User, avatar domain.Avatar, r io.Reader) (domain.Profile, error)
}

type AuthService interface {
	SignUp(ctx context.Context, req domain.SignUp) (service.Session, error)
	SignIn(ctx context.Context, username, password string) (service.Session, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, change domain.PasswordChange) error
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

type Services struct {
	Catalog  CatalogService
	Baskets  BasketService
	Orders   OrderService
	Payments PaymentService
	Profiles ProfileService
	Auth     AuthService
}
