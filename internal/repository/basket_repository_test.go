package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/goleak"
)

type basketRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	container testcontainers.Container

	repo    port.BasketRepository
	catalog port.CatalogRepository
	users   port.UserRepository
}

// entry point to run the tests in the suite
func TestBasketRepositorySuite(t *testing.T) {
	// Verifies no leaks after all tests in the suite run.
	defer goleak.VerifyNone(t)

	suite.Run(t, new(basketRepositorySuite))
}

// before all tests in the suite
func (suite *basketRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewBasket(suite.pool)
	suite.catalog = repository.NewCatalog(suite.pool)
	suite.users = repository.NewUser(suite.pool)
}

// after all tests in the suite
func (suite *basketRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *basketRepositorySuite) SetupTest() {
	truncateAll(suite.T(), suite.pool)
}

func (suite *basketRepositorySuite) TestAddItem() {
	t := suite.T()
	ctx := t.Context()

	owner := insertUser(t, suite.users)
	product := insertProduct(t, suite.catalog)

	require.NoError(t, suite.repo.AddItem(ctx, owner.ID, product.ID, 2))
	require.NoError(t, suite.repo.AddItem(ctx, owner.ID, product.ID, 3))

	lines, err := suite.repo.GetBasket(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, product.ID, lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.False(t, lines[0].AddedAt.IsZero())
	assert.False(t, lines[0].UpdatedAt.Before(lines[0].AddedAt))
}

func (suite *basketRepositorySuite) TestAddItemErrors() {
	owner := insertUser(suite.T(), suite.users)
	product := insertProduct(suite.T(), suite.catalog)

	tests := []struct {
		name      string
		ownerID   uuid.UUID
		productID int64
		quantity  int
		wantError error
	}{
		{
			name:      "unknown product: not found",
			ownerID:   owner.ID,
			productID: product.ID + 1000,
			quantity:  1,
			wantError: domain.ErrProductNotFound,
		},
		{
			name:      "zero quantity: validation",
			ownerID:   owner.ID,
			productID: product.ID,
			quantity:  0,
		},
		{
			name:      "negative product: validation",
			ownerID:   owner.ID,
			productID: -1,
			quantity:  1,
		},
		{
			name:      "quantity wraps int32: validation",
			ownerID:   owner.ID,
			productID: product.ID,
			quantity:  1<<32 + 1,
		},
		{
			name:      "quantity above max: validation",
			ownerID:   owner.ID,
			productID: product.ID,
			quantity:  domain.MaxQuantity + 1,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			err := suite.repo.AddItem(t.Context(), tt.ownerID, tt.productID, tt.quantity)
			require.Error(t, err)

			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func (suite *basketRepositorySuite) TestAddItemBeyondColumnRange() {
	t := suite.T()
	ctx := t.Context()

	owner := insertUser(t, suite.users)
	product := insertProduct(t, suite.catalog)

	require.NoError(t, suite.repo.AddItem(ctx, owner.ID, product.ID, domain.MaxQuantity))

	err := suite.repo.AddItem(ctx, owner.ID, product.ID, 1)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	err = suite.repo.RemoveItem(ctx, owner.ID, product.ID, 1<<32+1)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	lines, err := suite.repo.GetBasket(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, domain.MaxQuantity, lines[0].Quantity)
}

func (suite *basketRepositorySuite) TestRemoveItem() {
	tests := []struct {
		name         string
		initial      int
		remove       int
		wantQuantity int // zero means the line is gone
	}{
		{
			name:         "remove part: quantity decremented",
			initial:      5,
			remove:       2,
			wantQuantity: 3,
		},
		{
			name:    "remove exact: line deleted",
			initial: 3,
			remove:  3,
		},
		{
			name:    "remove more than present: line deleted",
			initial: 2,
			remove:  10,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			owner := insertUser(t, suite.users)
			product := insertProduct(t, suite.catalog)

			require.NoError(t, suite.repo.AddItem(ctx, owner.ID, product.ID, tt.initial))
			require.NoError(t, suite.repo.RemoveItem(ctx, owner.ID, product.ID, tt.remove))

			lines, err := suite.repo.GetBasket(ctx, owner.ID)
			require.NoError(t, err)

			if tt.wantQuantity == 0 {
				assert.Empty(t, lines)
				return
			}

			require.Len(t, lines, 1)
			assert.Equal(t, tt.wantQuantity, lines[0].Quantity)
		})
	}
}

func (suite *basketRepositorySuite) TestRemoveMissingItem() {
	t := suite.T()

	owner := insertUser(t, suite.users)

	err := suite.repo.RemoveItem(t.Context(), owner.ID, 42, 1)
	require.EqualError(t, err, "withTx: q.DeleteBasketItem: item not found in basket")
	assert.ErrorIs(t, err, domain.ErrBasketItemNotFound)
}

func (suite *basketRepositorySuite) TestClear() {
	t := suite.T()
	ctx := t.Context()

	owner := insertUser(t, suite.users)
	other := insertUser(t, suite.users)
	p1 := insertProduct(t, suite.catalog)
	p2 := insertProduct(t, suite.catalog)

	require.NoError(t, suite.repo.AddItem(ctx, owner.ID, p1.ID, 1))
	require.NoError(t, suite.repo.AddItem(ctx, owner.ID, p2.ID, 1))
	require.NoError(t, suite.repo.AddItem(ctx, other.ID, p1.ID, 4))

	require.NoError(t, suite.repo.Clear(ctx, owner.ID))

	lines, err := suite.repo.GetBasket(ctx, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, lines)

	otherLines, err := suite.repo.GetBasket(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p1.ID}, lo.Map(otherLines, func(l domain.BasketLine, _ int) int64 { return l.ProductID }))
}
