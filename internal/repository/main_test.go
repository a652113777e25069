package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

const postgresImage = "postgres:17-alpine"

// startPostgres runs a disposable PostgreSQL with all migrations applied.
func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	if err := db.MigrateUp(connStr); err != nil {
		return container, "", fmt.Errorf("db.MigrateUp: %w", err)
	}

	return container, connStr, nil
}

func truncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(t.Context(), `TRUNCATE TABLE order_items, orders, basket_items, banners, sales, reviews,
		product_tags, tags, product_images, products, categories, profiles, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func insertUser(t *testing.T, repo port.UserRepository) domain.User {
	t.Helper()

	user, err := repo.CreateUser(t.Context(), domain.User{
		Username:     gofakeit.Username() + gofakeit.DigitN(6),
		PasswordHash: gofakeit.Password(true, true, true, false, false, 20),
		FirstName:    gofakeit.FirstName(),
	})
	require.NoError(t, err)

	return user
}

func insertProduct(t *testing.T, repo port.CatalogRepository, mutate ...func(*domain.Product)) domain.Product {
	t.Helper()

	p := fakeProduct()
	for _, m := range mutate {
		m(&p)
	}

	id, err := repo.InsertProduct(t.Context(), p)
	require.NoError(t, err)

	stored, err := repo.GetProduct(t.Context(), id)
	require.NoError(t, err)

	// tag IDs are assigned on insert
	p.ID = id
	p.Tags = stored.Tags
	return p
}

func fakeProduct() domain.Product {
	return domain.Product{
		Title:           gofakeit.ProductName(),
		Description:     gofakeit.Sentence(8),
		FullDescription: gofakeit.Paragraph(1, 3, 10, " "),
		Price:           fakePrice(),
		Count:           gofakeit.Number(20, 100),
		FreeDelivery:    gofakeit.Bool(),
		Images: []domain.Image{
			{Src: gofakeit.URL(), Alt: gofakeit.Word()},
		},
		Tags: []domain.Tag{
			{Name: gofakeit.BeerName() + gofakeit.DigitN(4)},
		},
	}
}

func fakePrice() decimal.Decimal {
	return decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2)
}

func fakeCurrency() currency.Unit {
	var (
		result currency.Unit
		err    error
	)

	for {
		// not every short code gofakeit yields is a recognized currency
		result, err = currency.ParseISO(gofakeit.CurrencyShort())
		if err == nil {
			break
		}
	}

	return result
}

func today() time.Time {
	return domain.DateOf(time.Now())
}

var (
	decimalComparer = cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})
	currencyComparer = cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})
)
