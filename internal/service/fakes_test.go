package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
)

// memStore backs every fake repository, so a fake transaction can snapshot and restore it as a whole.
type memStore struct {
	mu sync.Mutex

	products map[int64]domain.Product
	reviews  map[int64][]domain.Review
	baskets  map[uuid.UUID][]domain.BasketLine
	orders   map[int64]domain.Order
	profiles map[uuid.UUID]domain.Profile
	users    map[uuid.UUID]domain.User

	nextOrderID int64
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[int64]domain.Product),
		reviews:  make(map[int64][]domain.Review),
		baskets:  make(map[uuid.UUID][]domain.BasketLine),
		orders:   make(map[int64]domain.Order),
		profiles: make(map[uuid.UUID]domain.Profile),
		users:    make(map[uuid.UUID]domain.User),
	}
}

func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := &memStore{
		products:    maps.Clone(s.products),
		reviews:     maps.Clone(s.reviews),
		baskets:     make(map[uuid.UUID][]domain.BasketLine, len(s.baskets)),
		orders:      maps.Clone(s.orders),
		profiles:    maps.Clone(s.profiles),
		users:       maps.Clone(s.users),
		nextOrderID: s.nextOrderID,
	}
	for k, v := range s.baskets {
		cp.baskets[k] = slices.Clone(v)
	}
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = from.products
	s.reviews = from.reviews
	s.baskets = from.baskets
	s.orders = from.orders
	s.profiles = from.profiles
	s.users = from.users
	s.nextOrderID = from.nextOrderID
}

func (s *memStore) repositories() port.Repositories {
	return port.Repositories{
		Catalog:  &fakeCatalog{s: s},
		Baskets:  &fakeBaskets{s: s},
		Orders:   &fakeOrders{s: s},
		Profiles: &fakeProfiles{s: s},
		Users:    &fakeUsers{s: s},
	}
}

func (s *memStore) order(id int64) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memStore) stock(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Count
}

type fakeTransactor struct {
	s       *memStore
	commits int
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(repos port.Repositories) error) error {
	saved := t.s.snapshot()
	if err := fn(t.s.repositories()); err != nil {
		t.s.restore(saved)
		return err
	}
	t.commits++
	return nil
}

type fakeCatalog struct {
	s *memStore

	salesToday time.Time
	salesPage  int
	sales      []domain.Sale
}

func (c *fakeCatalog) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	p, ok := c.s.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", domain.ErrProductNotFound)
	}
	return p, nil
}

func (c *fakeCatalog) GetProducts(_ context.Context, productIDs []int64) ([]domain.Product, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var result []domain.Product
	for _, id := range lo.Uniq(productIDs) {
		if p, ok := c.s.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (c *fakeCatalog) SearchProducts(_ context.Context, filter domain.CatalogFilter) (domain.Page[domain.Product], error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	products := slices.Collect(maps.Values(c.s.products))
	slices.SortFunc(products, func(a, b domain.Product) int { return int(a.ID - b.ID) })

	return domain.Page[domain.Product]{
		Items:       products,
		CurrentPage: filter.Page,
		LastPage:    domain.LastPage(len(products), filter.Limit),
	}, nil
}

func (c *fakeCatalog) PopularProducts(context.Context, int) ([]domain.Product, error) {
	return nil, nil
}

func (c *fakeCatalog) LimitedProducts(context.Context, int) ([]domain.Product, error) {
	return nil, nil
}

func (c *fakeCatalog) ActiveSales(_ context.Context, today time.Time, page, _ int) (domain.Page[domain.SaleOffer], error) {
	c.salesToday = today
	c.salesPage = page
	return domain.Page[domain.SaleOffer]{CurrentPage: page, LastPage: 1}, nil
}

func (c *fakeCatalog) Categories(context.Context) ([]domain.Category, error) {
	return nil, nil
}

func (c *fakeCatalog) Tags(context.Context, *int64) ([]domain.Tag, error) {
	return nil, nil
}

func (c *fakeCatalog) Banners(context.Context) ([]domain.Banner, error) {
	return nil, nil
}

func (c *fakeCatalog) Reviews(_ context.Context, productID int64) ([]domain.Review, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return slices.Clone(c.s.reviews[productID]), nil
}

func (c *fakeCatalog) InsertReview(_ context.Context, review domain.Review) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.products[review.ProductID]; !ok {
		return fmt.Errorf("q.InsertReview: %w", domain.ErrProductNotFound)
	}
	c.s.reviews[review.ProductID] = append(c.s.reviews[review.ProductID], review)
	return nil
}

func (c *fakeCatalog) InsertProduct(_ context.Context, product domain.Product) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	product.ID = int64(len(c.s.products) + 1)
	c.s.products[product.ID] = product
	return product.ID, nil
}

func (c *fakeCatalog) UpsertSale(_ context.Context, sale domain.Sale) error {
	c.sales = append(c.sales, sale)
	return nil
}

func (c *fakeCatalog) InsertCategory(context.Context, domain.Category) (int64, error) {
	return 1, nil
}

func (c *fakeCatalog) InsertBanner(context.Context, domain.Banner) (int64, error) {
	return 1, nil
}

func (c *fakeCatalog) DecrementStock(_ context.Context, productID int64, quantity int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	p, ok := c.s.products[productID]
	if !ok || p.Count < quantity {
		return fmt.Errorf("q.DecrementProductStock[%d]: %w", productID, domain.ErrInsufficientStock)
	}
	p.Count -= quantity
	c.s.products[productID] = p
	return nil
}

type fakeBaskets struct {
	s *memStore
}

func (b *fakeBaskets) GetBasket(_ context.Context, ownerID uuid.UUID) ([]domain.BasketLine, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return slices.Clone(b.s.baskets[ownerID]), nil
}

func (b *fakeBaskets) AddItem(_ context.Context, ownerID uuid.UUID, productID int64, quantity int) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	lines := b.s.baskets[ownerID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += quantity
			return nil
		}
	}
	b.s.baskets[ownerID] = append(lines, domain.BasketLine{ProductID: productID, Quantity: quantity})
	return nil
}

func (b *fakeBaskets) RemoveItem(_ context.Context, ownerID uuid.UUID, productID int64, quantity int) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	lines := b.s.baskets[ownerID]
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		if lines[i].Quantity > quantity {
			lines[i].Quantity -= quantity
		} else {
			b.s.baskets[ownerID] = slices.Delete(lines, i, i+1)
		}
		return nil
	}
	return fmt.Errorf("withTx: q.DeleteBasketItem: %w", domain.ErrBasketItemNotFound)
}

func (b *fakeBaskets) Clear(_ context.Context, ownerID uuid.UUID) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	delete(b.s.baskets, ownerID)
	return nil
}

type fakeOrders struct {
	s *memStore
}

func (o *fakeOrders) GetOrder(_ context.Context, orderID int64) (domain.Order, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	order, ok := o.s.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", domain.ErrOrderNotFound)
	}
	return order, nil
}

func (o *fakeOrders) GetOrderForUpdate(ctx context.Context, orderID int64) (domain.Order, error) {
	return o.GetOrder(ctx, orderID)
}

func (o *fakeOrders) SearchOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	var result []domain.Order
	for _, order := range o.s.orders {
		if order.OwnerID != filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, order.Status) {
			continue
		}
		result = append(result, order)
	}
	slices.SortFunc(result, func(a, b domain.Order) int { return int(b.ID - a.ID) })
	return result, nil
}

func (o *fakeOrders) InsertOrder(_ context.Context, order domain.Order) (int64, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	o.s.nextOrderID++
	order.ID = o.s.nextOrderID
	order.Items = slices.Clone(order.Items)
	o.s.orders[order.ID] = order
	return order.ID, nil
}

func (o *fakeOrders) update(orderID int64, fn func(*domain.Order)) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	order, ok := o.s.orders[orderID]
	if !ok {
		return fmt.Errorf("q.UpdateOrder: %w", domain.ErrOrderNotFound)
	}
	fn(&order)
	o.s.orders[orderID] = order
	return nil
}

func (o *fakeOrders) UpdateOrderStatus(_ context.Context, orderID int64, status domain.OrderStatus) error {
	return o.update(orderID, func(order *domain.Order) { order.Status = status })
}

func (o *fakeOrders) UpdateOrderDelivery(_ context.Context, orderID int64, update domain.OrderUpdate) error {
	return o.update(orderID, func(order *domain.Order) {
		order.DeliveryType = lo.FromPtrOr(update.DeliveryType, order.DeliveryType)
		order.PaymentType = lo.FromPtrOr(update.PaymentType, order.PaymentType)
		order.City = lo.FromPtrOr(update.City, order.City)
		order.Address = lo.FromPtrOr(update.Address, order.Address)
	})
}

func (o *fakeOrders) SetPayment(_ context.Context, orderID int64, paymentID string) error {
	return o.update(orderID, func(order *domain.Order) { order.PaymentID = &paymentID })
}

func (o *fakeOrders) SetPaymentError(_ context.Context, orderID int64, paymentError *string) error {
	return o.update(orderID, func(order *domain.Order) { order.PaymentError = paymentError })
}

type fakeProfiles struct {
	s *memStore
}

func (p *fakeProfiles) GetOrCreateProfile(_ context.Context, userID uuid.UUID, fullName string) (domain.Profile, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	profile, ok := p.s.profiles[userID]
	if !ok {
		profile = domain.Profile{UserID: userID, FullName: fullName}
		p.s.profiles[userID] = profile
	}
	return profile, nil
}

func (p *fakeProfiles) GetProfile(_ context.Context, userID uuid.UUID) (domain.Profile, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	profile, ok := p.s.profiles[userID]
	if !ok {
		return domain.Profile{}, fmt.Errorf("q.GetProfile: %w", domain.ErrProfileNotFound)
	}
	return profile, nil
}

func (p *fakeProfiles) UpdateContact(_ context.Context, profile domain.Profile) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if _, ok := p.s.profiles[profile.UserID]; !ok {
		return fmt.Errorf("q.UpdateProfileContact: %w", domain.ErrProfileNotFound)
	}
	p.s.profiles[profile.UserID] = profile
	return nil
}

func (p *fakeProfiles) UpdateAvatar(_ context.Context, userID uuid.UUID, avatarPath string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	profile, ok := p.s.profiles[userID]
	if !ok {
		return fmt.Errorf("q.UpdateProfileAvatar: %w", domain.ErrProfileNotFound)
	}
	profile.AvatarPath = &avatarPath
	p.s.profiles[userID] = profile
	return nil
}

func (p *fakeProfiles) EmailTaken(_ context.Context, email string, excludeUserID uuid.UUID) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for id, profile := range p.s.profiles {
		if id != excludeUserID && profile.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (p *fakeProfiles) PhoneTaken(_ context.Context, phone string, excludeUserID uuid.UUID) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for id, profile := range p.s.profiles {
		if id != excludeUserID && lo.FromPtr(profile.Phone) == phone {
			return true, nil
		}
	}
	return false, nil
}

type fakeUsers struct {
	s *memStore
}

func (u *fakeUsers) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Username == user.Username {
			return domain.User{}, fmt.Errorf("q.CreateUser: %w", domain.ErrUsernameTaken)
		}
	}
	user.ID = uuid.New()
	u.s.users[user.ID] = user
	return user, nil
}

func (u *fakeUsers) GetUser(_ context.Context, userID uuid.UUID) (domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[userID]
	if !ok {
		return domain.User{}, fmt.Errorf("q.GetUserByID: %w", domain.ErrUserNotFound)
	}
	return user, nil
}

func (u *fakeUsers) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, user := range u.s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, fmt.Errorf("q.GetUserByUsername: %w", domain.ErrUserNotFound)
}

func (u *fakeUsers) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[userID]
	if !ok {
		return fmt.Errorf("q.UpdateUserPassword: %w", domain.ErrUserNotFound)
	}
	user.PasswordHash = passwordHash
	u.s.users[userID] = user
	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []domain.PaymentRequest
	lookups  []string

	status    domain.PaymentStatus
	createErr error
	findErr   error
}

func (g *fakeGateway) CreatePayment(_ context.Context, req domain.PaymentRequest) (domain.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return domain.Payment{}, g.createErr
	}

	id := fmt.Sprintf("pay-%d", len(g.requests))
	return domain.Payment{
		ID:              id,
		Status:          domain.PaymentStatusPending,
		ConfirmationURL: "https://pay.test/confirm/" + id,
	}, nil
}

func (g *fakeGateway) FindPayment(_ context.Context, paymentID string) (domain.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lookups = append(g.lookups, paymentID)
	if g.findErr != nil {
		return domain.Payment{}, g.findErr
	}
	return domain.Payment{ID: paymentID, Status: g.status}, nil
}

type fakeAvatars struct {
	saved map[string][]byte
}

func (a *fakeAvatars) SaveAvatar(_ context.Context, userID uuid.UUID, filename string, r io.Reader) (string, error) {
	if filename == "" {
		return "", errors.New("invalid file name")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	path := userID.String() + "/avatar/" + filename
	if a.saved == nil {
		a.saved = make(map[string][]byte)
	}
	a.saved[path] = data
	return path, nil
}
