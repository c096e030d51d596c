package di

import (
	"context"
	"fmt"
	"time"

	"booking-server/api"
	"booking-server/api/goldcard"
	"booking-server/api/ponorez"
	"booking-server/config"
	"booking-server/dao/redis"
	"booking-server/db"
	"booking-server/models"
	"booking-server/server"
	"booking-server/server/handlers"
	services "booking-server/service"
	"booking-server/util"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const SUPPLIERS_RESOURCE = "suppliers.json"

// Container holds all application dependencies.
type Container struct {
	RedisClient              db.RedisClient
	AvailabilityDao          *redis.RedisAvailabilityDAO
	SupplierRegistry         *services.SupplierRegistry
	ReservationFactory       ponorez.Factory
	CalendarService          *services.CalendarService
	SeatProbeService         *services.SeatProbeService
	AvailabilityService      *services.AvailabilityService
	CalendarRefresherService *services.CalendarRefresherService
	GoldCardAPI              goldcard.GoldCardAPI
	AvailabilityHandler      *handlers.AvailabilityHandler
	GoldCardHandler          *handlers.GoldCardHandler
	HealthHandler            *handlers.HealthHandler
	MuxRouter                *mux.Router
	Router                   *server.Router
	BookingHttpServer        *server.BookingHttpServer
}

// NewContainer initializes and wires up all dependencies.
func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	logger.Info("[Container] initializing", zap.String("env", cfg.Env))
	ctx := context.Background()

	redisInternalClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	redisClient := db.NewCacheRedisClient(ctx, redisInternalClient, logger)
	if err := redisClient.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	availabilityDao := redis.NewRedisAvailabilityDAO(
		redisClient,
		time.Duration(cfg.CalendarCacheTTLSeconds)*time.Second,
		time.Duration(cfg.SeatCheckCacheTTLSeconds)*time.Second,
	)

	suppliers, err := loadSuppliers(cfg, logger)
	if err != nil {
		return nil, err
	}
	registry := services.NewSupplierRegistry(suppliers, cfg.DefaultSupplier, cfg.DefaultActivity)

	factory, err := newReservationFactory(cfg, logger)
	if err != nil {
		return nil, err
	}

	calendarService := services.NewCalendarService(registry, factory, availabilityDao, logger, services.CalendarSettings{
		FallbackDays:         cfg.FallbackCalendarDays,
		LimitedSeatThreshold: cfg.LimitedSeatThreshold,
	})
	seatProbeService := services.NewSeatProbeService(registry, factory, availabilityDao, logger)
	availabilityService := services.NewAvailabilityService(registry, calendarService, seatProbeService, logger)
	refresherService := services.NewCalendarRefresherService(registry, calendarService, availabilityDao, logger)

	goldCardAPI := goldcard.NewGoldCardClient(
		api.NewHTTPClient("").WithTimeout(time.Duration(cfg.PonorezTimeoutSeconds)*time.Second),
		logger,
	)

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	goldCardHandler := handlers.NewGoldCardHandler(registry, goldCardAPI)
	healthHandler := handlers.NewHealthHandler(redisClient)

	muxRouter := mux.NewRouter()
	router := server.NewRouter(availabilityHandler, goldCardHandler, healthHandler, muxRouter, logger, cfg.MaxRequestsPerMin)
	bookingHttpServer := server.NewBookingHttpServer(router, muxRouter, cfg.AppPort, logger)

	return &Container{
		RedisClient:              redisClient,
		AvailabilityDao:          availabilityDao,
		SupplierRegistry:         registry,
		ReservationFactory:       factory,
		CalendarService:          calendarService,
		SeatProbeService:         seatProbeService,
		AvailabilityService:      availabilityService,
		CalendarRefresherService: refresherService,
		GoldCardAPI:              goldCardAPI,
		AvailabilityHandler:      availabilityHandler,
		GoldCardHandler:          goldCardHandler,
		HealthHandler:            healthHandler,
		MuxRouter:                muxRouter,
		Router:                   router,
		BookingHttpServer:        bookingHttpServer,
	}, nil
}

// newReservationFactory serves the recorded fixtures outside production or
// when explicitly asked to, and the live SOAP gateway otherwise.
func newReservationFactory(cfg config.Config, logger *zap.Logger) (ponorez.Factory, error) {
	if cfg.UseMockGateway || cfg.Env != "production" {
		logger.Info("[Container] using mock Ponorez gateway")
		mock, err := ponorez.NewReservationAPIMockFromResources(
			config.GetResourcePath(config.AVAILABLE_DATES_RESOURCE),
			config.GetResourcePath(config.ACTIVITIES_RESOURCE),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load gateway fixtures: %w", err)
		}
		return mock.Factory(), nil
	}

	logger.Info("[Container] using Ponorez gateway", zap.String("endpoint", cfg.PonorezEndpoint))
	httpClient := api.NewHTTPClient(cfg.PonorezEndpoint).
		WithTimeout(time.Duration(cfg.PonorezTimeoutSeconds) * time.Second).
		WithRateLimit(cfg.PonorezRequestsPerSecond)
	return &ponorez.HTTPFactory{HTTPClient: httpClient, Logger: logger}, nil
}

// loadSuppliers prefers suppliers from config.yaml and falls back to
// resources/suppliers.json.
func loadSuppliers(cfg config.Config, logger *zap.Logger) ([]models.Supplier, error) {
	if len(cfg.Suppliers) > 0 {
		return cfg.Suppliers, nil
	}
	path := config.GetResourcePath(SUPPLIERS_RESOURCE)
	suppliers, err := util.ReadSuppliersFromJSON(path)
	if err != nil {
		return nil, fmt.Errorf("no suppliers configured: %w", err)
	}
	logger.Info("[Container] loaded suppliers from resources", zap.String("path", path), zap.Int("count", len(suppliers)))
	return suppliers, nil
}
