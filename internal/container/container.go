package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/go-city-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-city-registry/config"
	"github.com/FACorreiaa/go-city-registry/internal/api/city"
	"github.com/FACorreiaa/go-city-registry/internal/api/greeting"
	"github.com/FACorreiaa/go-city-registry/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *slog.Logger
	Metrics         *metrics.AppMetrics
	CityRepo        *city.InMemoryCityRepository
	CityService     *city.ServiceImpl
	CityHandler     *city.HandlerImpl
	GreetingHandler *greeting.Handler
}

// NewContainer initializes and returns a new dependency container.
// The global meter provider must be installed before calling it.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	metrics.InitAppMetrics()
	m := metrics.Get()

	cityRepo := city.NewInMemoryCityRepository(logger, cfg.Seeds...)
	if err := m.RegisterCityRecordsGauge(cityRepo.Count); err != nil {
		return nil, fmt.Errorf("failed to register city gauge: %w", err)
	}
	cityService := city.NewCityService(cityRepo, m, logger)
	cityHandler := city.NewCityHandler(cityService, logger)

	greetingHandler := greeting.NewGreetingHandler(cfg.Server.Greeting, logger)

	logger.Info("Container initialized", slog.Int("seeded_cities", cityRepo.Count(context.Background())))
	return &Container{
		Config:          cfg,
		Logger:          logger,
		Metrics:         m,
		CityRepo:        cityRepo,
		CityService:     cityService,
		CityHandler:     cityHandler,
		GreetingHandler: greetingHandler,
	}, nil
}

// RouterConfig returns the router dependencies held by the container.
func (c *Container) RouterConfig() *router.Config {
	return &router.Config{
		CityHandler:     c.CityHandler,
		GreetingHandler: c.GreetingHandler,
		AllowedOrigins:  c.Config.CORS.AllowedOrigins,
		WriteRateLimit:  c.Config.RateLimit.Requests,
		WriteRateWindow: c.Config.RateLimit.Window,
	}
}
