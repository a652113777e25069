package port

import "context"

// Repositories are bound to one transaction.
type Repositories struct {
	Catalog  CatalogRepository
	Baskets  BasketRepository
	Orders   OrderRepository
	Profiles ProfileRepository
	Users    UserRepository
}

type Transactor interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
