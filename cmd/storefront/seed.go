package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
	Products   []seedProduct  `yaml:"products"`
}

type seedCategory struct {
	Name          string         `yaml:"name"`
	Image         string         `yaml:"image"`
	Subcategories []seedCategory `yaml:"subcategories"`
}

type seedImage struct {
	Src string `yaml:"src"`
	Alt string `yaml:"alt"`
}

type seedSale struct {
	Price        decimal.Decimal `yaml:"price"`
	StartsInDays int             `yaml:"startsInDays"`
	Days         int             `yaml:"days"`
}

type seedBanner struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type seedProduct struct {
	Title           string          `yaml:"title"`
	Category        string          `yaml:"category"`
	Description     string          `yaml:"description"`
	FullDescription string          `yaml:"fullDescription"`
	Price           decimal.Decimal `yaml:"price"`
	Count           int             `yaml:"count"`
	FreeDelivery    bool            `yaml:"freeDelivery"`
	Images          []seedImage     `yaml:"images"`
	Tags            []string        `yaml:"tags"`
	Sale            *seedSale       `yaml:"sale"`
	Banner          *seedBanner     `yaml:"banner"`
}

// catalogSeeder is the write side of the catalog service.
type catalogSeeder interface {
	Today() time.Time
	AddCategory(ctx context.Context, category domain.Category) (int64, error)
	SaveProduct(ctx context.Context, product domain.Product) (int64, error)
	PutSale(ctx context.Context, sale domain.Sale) error
	AddBanner(ctx context.Context, banner domain.Banner) (int64, error)
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "load a catalog from a YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "seed file, the bundled sample catalog when empty"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			data := defaultSeed
			if path := c.String("file"); path != "" {
				if data, err = os.ReadFile(path); err != nil {
					return fmt.Errorf("os.ReadFile: %w", err)
				}
			}

			seed, err := parseSeed(data)
			if err != nil {
				return err
			}

			loc, err := cfg.Location()
			if err != nil {
				return fmt.Errorf("cfg.Location: %w", err)
			}

			pool, err := pgxpool.New(c.Context, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("pgxpool.New: %w", err)
			}
			defer pool.Close()

			catalog, err := service.NewCatalog(repository.NewCatalog(pool), service.NewClock(loc))
			if err != nil {
				return fmt.Errorf("service.NewCatalog: %w", err)
			}

			return applySeed(c.Context, catalog, seed)
		},
	}
}

func parseSeed(data []byte) (seedFile, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	for i, p := range seed.Products {
		if p.Title == "" {
			return seed, fmt.Errorf("product[%d]: title is empty", i)
		}
		if p.Sale != nil && p.Sale.Days < 0 {
			return seed, fmt.Errorf("product[%s]: sale days is negative", p.Title)
		}
	}

	return seed, nil
}

func applySeed(ctx context.Context, catalog catalogSeeder, seed seedFile) error {
	categoryIDs := make(map[string]int64)

	var addCategories func(categories []seedCategory, parentID *int64) error
	addCategories = func(categories []seedCategory, parentID *int64) error {
		for _, c := range categories {
			id, err := catalog.AddCategory(ctx, domain.Category{
				Name:     c.Name,
				ParentID: parentID,
				ImageSrc: lo.EmptyableToPtr(c.Image),
			})
			if err != nil {
				return fmt.Errorf("catalog.AddCategory[%s]: %w", c.Name, err)
			}
			categoryIDs[c.Name] = id

			if err := addCategories(c.Subcategories, &id); err != nil {
				return err
			}
		}
		return nil
	}

	if err := addCategories(seed.Categories, nil); err != nil {
		return err
	}

	today := catalog.Today()

	for _, p := range seed.Products {
		product := domain.Product{
			Title:           p.Title,
			Description:     p.Description,
			FullDescription: p.FullDescription,
			Price:           p.Price,
			Count:           p.Count,
			FreeDelivery:    p.FreeDelivery,
			Images: lo.Map(p.Images, func(img seedImage, _ int) domain.Image {
				return domain.Image{Src: img.Src, Alt: img.Alt}
			}),
			Tags: lo.Map(p.Tags, func(name string, _ int) domain.Tag {
				return domain.Tag{Name: name}
			}),
		}

		if p.Category != "" {
			id, ok := categoryIDs[p.Category]
			if !ok {
				return fmt.Errorf("product[%s]: unknown category %q", p.Title, p.Category)
			}
			product.CategoryID = &id
		}

		id, err := catalog.SaveProduct(ctx, product)
		if err != nil {
			return fmt.Errorf("catalog.SaveProduct[%s]: %w", p.Title, err)
		}
		product.ID = id

		if p.Sale != nil {
			from := today.AddDate(0, 0, p.Sale.StartsInDays)
			err := catalog.PutSale(ctx, domain.Sale{
				ProductID: id,
				SalePrice: p.Sale.Price,
				DateFrom:  from,
				DateTo:    from.AddDate(0, 0, p.Sale.Days),
			})
			if err != nil {
				return fmt.Errorf("catalog.PutSale[%s]: %w", p.Title, err)
			}
		}

		if p.Banner != nil {
			_, err := catalog.AddBanner(ctx, domain.Banner{
				Product:     product,
				Title:       p.Banner.Title,
				Description: p.Banner.Description,
				ImageSrc:    p.Banner.Image,
			})
			if err != nil {
				return fmt.Errorf("catalog.AddBanner[%s]: %w", p.Title, err)
			}
		}
	}

	log.WithFields(log.Fields{
		"categories": len(categoryIDs),
		"products":   len(seed.Products),
	}).Info("catalog seeded")

	return nil
}
