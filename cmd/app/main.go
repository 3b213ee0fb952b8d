package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/cache"
	"github.com/Domenick1991/travelbooking/internal/console"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/logger"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/catalog"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.App.Env, cfg.App.LogLevel, "app")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("booking system stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var flights repository.FlightCatalog
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		flights = repository.NewPGFlightCatalog(pool)
	default:
		flights = repository.NewFileFlightCatalog(cfg.Files.FlightRecords)
	}
	accommodations := repository.NewFileAccommodationCatalog(cfg.Files.HolidayRecords)

	catalogOpts := []catalog.CatalogServiceOption{catalog.WithLogger(log.Named("catalog"))}
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second)
		defer redisCache.Close()
		catalogOpts = append(catalogOpts, catalog.WithCache(redisCache))
	}
	catalogService := catalog.NewCatalogService(flights, accommodations, catalogOpts...)

	bookingOpts := []booking.BookingServiceOption{booking.WithLogger(log.Named("booking"))}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log.Named("kafka"))
		defer producer.Close()
		bookingOpts = append(bookingOpts, booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic))
	}

	store := repository.NewFileBookingStore(cfg.Files.FlightBookings, cfg.Files.HolidayBookings,
		repository.WithLogger(log.Named("store")))
	bookingService := booking.NewBookingService(catalogService, store, bookingOpts...)

	if err := bookingService.Load(ctx); err != nil {
		return err
	}

	menu := console.NewMenu(bookingService, os.Stdin, os.Stdout, console.WithLogger(log.Named("console")))
	return menu.Run(ctx)
}
