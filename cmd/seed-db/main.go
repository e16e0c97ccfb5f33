// Command seed-db loads the demo catalog, coupons and an admin API key.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/souqly/storefront/internal/domain/auth"
	"github.com/souqly/storefront/internal/domain/coupon"
	"github.com/souqly/storefront/internal/domain/product"
	"github.com/souqly/storefront/internal/storage/postgres"
)

type catalogJSON struct {
	Categories []struct {
		ID     string `json:"id"`
		Slug   string `json:"slug"`
		Name   string `json:"name"`
		NameAr string `json:"name_ar"`
	} `json:"categories"`
	Products []struct {
		ID            string          `json:"id"`
		CategoryID    string          `json:"category_id"`
		Title         string          `json:"title"`
		TitleAr       string          `json:"title_ar"`
		Description   string          `json:"description"`
		DescriptionAr string          `json:"description_ar"`
		Price         decimal.Decimal `json:"price"`
		Stock         int             `json:"stock"`
		ImageURL      string          `json:"image_url"`
		Sizes         []string        `json:"sizes"`
		Colors        []string        `json:"colors"`
	} `json:"products"`
}

func main() {
	var (
		databaseURL  string
		catalogFile  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or STORE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, postgres.NewProductRepository(pool), catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedCoupons(ctx, postgres.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedAPIKey(ctx, postgres.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}
	return nil
}

func seedCatalog(ctx context.Context, repo *postgres.ProductRepository, path string) error {
	slog.Info("reading catalog file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}
	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	categories := make([]product.Category, len(catalog.Categories))
	for i, c := range catalog.Categories {
		categories[i] = product.Category{ID: c.ID, Slug: c.Slug, Name: c.Name, NameAr: c.NameAr}
	}
	if err := repo.UpsertCategories(ctx, categories); err != nil {
		return err
	}
	slog.Info("upserted categories", slog.Int("count", len(categories)))

	products := make([]product.Product, len(catalog.Products))
	for i, p := range catalog.Products {
		products[i] = product.Product{
			ID:            p.ID,
			CategoryID:    p.CategoryID,
			Title:         p.Title,
			TitleAr:       p.TitleAr,
			Description:   p.Description,
			DescriptionAr: p.DescriptionAr,
			Price:         p.Price,
			Stock:         p.Stock,
			ImageURL:      p.ImageURL,
			Sizes:         p.Sizes,
			Colors:        p.Colors,
			IsActive:      true,
		}
	}
	if err := repo.UpsertProducts(ctx, products); err != nil {
		return err
	}
	slog.Info("upserted products", slog.Int("count", len(products)))
	return nil
}

func seedCoupons(ctx context.Context, repo *postgres.CouponRepository) error {
	slog.Info("seeding demo coupons")

	coupons := []coupon.Coupon{
		{
			Code:              "SAVE10",
			DiscountType:      coupon.DiscountPercentage,
			DiscountValue:     decimal.NewFromInt(10),
			MaxDiscountAmount: decimal.NewNullDecimal(decimal.NewFromInt(50)),
		},
		{
			Code:              "FLAT15",
			DiscountType:      coupon.DiscountFixed,
			DiscountValue:     decimal.NewFromInt(15),
			MinPurchaseAmount: decimal.NewFromInt(100),
		},
	}
	for i := range coupons {
		if err := coupons[i].Validate(); err != nil {
			return errors.Wrapf(err, "coupon %s", coupons[i].Code)
		}
	}
	if err := repo.Upsert(ctx, coupons); err != nil {
		return err
	}
	for _, c := range coupons {
		slog.Info("upserted coupon", slog.String("code", c.Code), slog.String("type", string(c.DiscountType)))
	}
	return nil
}

func seedAPIKey(ctx context.Context, repo *postgres.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	info := &auth.APIKeyInfo{
		ID:      "default",
		KeyHash: auth.HashKey([]byte(pepper), apiKey),
		Name:    "Default admin key",
		Scopes:  []string{auth.ScopeAdmin},
	}
	if err := repo.Create(ctx, info); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", info.ID), slog.String("name", info.Name))
	return nil
}
