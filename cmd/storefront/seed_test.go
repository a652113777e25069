package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSeeder struct {
	today      time.Time
	categories []domain.Category
	products   []domain.Product
	sales      []domain.Sale
	banners    []domain.Banner
	saleErr    error
}

func (s *recordingSeeder) Today() time.Time { return s.today }

func (s *recordingSeeder) AddCategory(_ context.Context, category domain.Category) (int64, error) {
	s.categories = append(s.categories, category)
	return int64(len(s.categories)), nil
}

func (s *recordingSeeder) SaveProduct(_ context.Context, product domain.Product) (int64, error) {
	s.products = append(s.products, product)
	return int64(100 + len(s.products)), nil
}

func (s *recordingSeeder) PutSale(_ context.Context, sale domain.Sale) error {
	if s.saleErr != nil {
		return s.saleErr
	}
	s.sales = append(s.sales, sale)
	return nil
}

func (s *recordingSeeder) AddBanner(_ context.Context, banner domain.Banner) (int64, error) {
	s.banners = append(s.banners, banner)
	return int64(len(s.banners)), nil
}

func TestParseDefaultSeed(t *testing.T) {
	seed, err := parseSeed(defaultSeed)
	require.NoError(t, err)

	require.Len(t, seed.Categories, 2)
	assert.Len(t, seed.Categories[0].Subcategories, 2)
	require.Len(t, seed.Products, 3)

	phone := seed.Products[0]
	assert.True(t, phone.Price.Equal(decimal.RequireFromString("24990")))
	require.NotNil(t, phone.Sale)
	assert.True(t, phone.Sale.Price.Equal(decimal.RequireFromString("21990")))
	assert.Equal(t, 14, phone.Sale.Days)
	assert.NotNil(t, phone.Banner)
}

func TestParseSeedErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed", data: "products: [\n"},
		{name: "missing title", data: "products:\n  - price: \"1\"\n"},
		{name: "negative sale", data: "products:\n  - title: x\n    sale:\n      price: \"1\"\n      days: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSeed([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestApplySeed(t *testing.T) {
	seed, err := parseSeed(defaultSeed)
	require.NoError(t, err)

	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	seeder := &recordingSeeder{today: today}

	require.NoError(t, applySeed(t.Context(), seeder, seed))

	require.Len(t, seeder.categories, 5)
	assert.Nil(t, seeder.categories[0].ParentID)
	require.NotNil(t, seeder.categories[1].ParentID)
	assert.Equal(t, int64(1), *seeder.categories[1].ParentID)

	require.Len(t, seeder.products, 3)
	// Phones is the second category inserted
	require.NotNil(t, seeder.products[0].CategoryID)
	assert.Equal(t, int64(2), *seeder.products[0].CategoryID)
	assert.Equal(t, []domain.Tag{{Name: "phone"}, {Name: "new"}}, seeder.products[0].Tags)

	require.Len(t, seeder.sales, 2)
	assert.Equal(t, int64(101), seeder.sales[0].ProductID)
	assert.Equal(t, today, seeder.sales[0].DateFrom)
	assert.Equal(t, today.AddDate(0, 0, 14), seeder.sales[0].DateTo)
	assert.Equal(t, today.AddDate(0, 0, 1), seeder.sales[1].DateFrom)

	require.Len(t, seeder.banners, 1)
	assert.Equal(t, int64(101), seeder.banners[0].Product.ID)
}

func TestApplySeedErrors(t *testing.T) {
	t.Run("unknown category", func(t *testing.T) {
		seed := seedFile{Products: []seedProduct{{Title: "x", Category: "Nowhere"}}}

		err := applySeed(t.Context(), &recordingSeeder{}, seed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown category "Nowhere"`)
	})

	t.Run("sale rejected", func(t *testing.T) {
		rejected := errors.New("rejected")
		seed := seedFile{Products: []seedProduct{{Title: "x", Sale: &seedSale{Days: 1}}}}

		err := applySeed(t.Context(), &recordingSeeder{saleErr: rejected}, seed)
		require.ErrorIs(t, err, rejected)
	})
}
