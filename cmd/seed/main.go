package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/utafrali/communityshop/internal/seed"
	pkgconfig "github.com/utafrali/communityshop/pkg/config"
	"github.com/utafrali/communityshop/pkg/httpclient"
	"github.com/utafrali/communityshop/pkg/logger"
)

type config struct {
	APIURL            string        `env:"SEED_API_URL" envDefault:"http://localhost:5000"`
	Users             int           `env:"SEED_USERS" envDefault:"20"`
	ProductsPerUser   int           `env:"SEED_PRODUCTS_PER_USER" envDefault:"3"`
	ReviewsPerProduct int           `env:"SEED_REVIEWS_PER_PRODUCT" envDefault:"4"`
	Password          string        `env:"SEED_PASSWORD" envDefault:"community123"`
	RandSeed          uint64        `env:"SEED_RAND_SEED" envDefault:"42"`
	Timeout           time.Duration `env:"SEED_TIMEOUT" envDefault:"5m"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg config
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("communityshop-seed", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.Timeout)
	defer cancelTimeout()

	doer := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("communityshop-api"),
		log,
	)
	seeder := seed.NewSeeder(seed.NewAPIClient(cfg.APIURL, doer), log)

	log.Info("seeding community shop API",
		slog.String("api_url", cfg.APIURL),
		slog.Int("users", cfg.Users),
		slog.Int("products_per_user", cfg.ProductsPerUser),
		slog.Int("reviews_per_product", cfg.ReviewsPerProduct),
	)

	if _, err := seeder.Run(ctx, seed.Options{
		Users:             cfg.Users,
		ProductsPerUser:   cfg.ProductsPerUser,
		ReviewsPerProduct: cfg.ReviewsPerProduct,
		Password:          cfg.Password,
		RandSeed:          cfg.RandSeed,
	}); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
