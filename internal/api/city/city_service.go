package city

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-city-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-city-registry/internal/api"
	"github.com/FACorreiaa/go-city-registry/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service defines the business operations on city records.
// Failures are reported as api.ErrNotFound or api.ErrDuplicateName.
type Service interface {
	ListCities(ctx context.Context) []types.City
	GetCity(ctx context.Context, id int) (types.City, error)
	CreateCity(ctx context.Context, input types.CityInput) (types.City, error)
	UpdateCity(ctx context.Context, id int, input types.CityInput) (types.City, error)
	DeleteCity(ctx context.Context, id int) error
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger  *slog.Logger
	repo    CityRepository
	metrics *metrics.AppMetrics
}

// NewCityService creates a new city service instance.
func NewCityService(repo CityRepository, m *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		metrics: m,
	}
}

// ListCities returns all cities in insertion order.
func (s *ServiceImpl) ListCities(ctx context.Context) []types.City {
	ctx, span := otel.Tracer("CityService").Start(ctx, "ListCities")
	defer span.End()
	start := time.Now()

	cities := s.repo.List(ctx)

	s.logger.DebugContext(ctx, "Cities listed", slog.String("method", "ListCities"), slog.Int("count", len(cities)))
	s.metrics.RecordOperation(ctx, "list", metrics.OutcomeOK, start)
	span.SetStatus(codes.Ok, "Cities listed")
	return cities
}

// GetCity returns the city with the given id or api.ErrNotFound.
func (s *ServiceImpl) GetCity(ctx context.Context, id int) (types.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "GetCity", trace.WithAttributes(
		attribute.Int("city.id", id),
	))
	defer span.End()
	start := time.Now()

	l := s.logger.With(slog.String("method", "GetCity"), slog.Int("cityID", id))

	c, ok := s.repo.FindByID(ctx, id)
	if !ok {
		l.DebugContext(ctx, "City not found")
		s.metrics.RecordOperation(ctx, "get", metrics.OutcomeNotFound, start)
		span.SetStatus(codes.Error, "City not found")
		return types.City{}, fmt.Errorf("city %d: %w", id, api.ErrNotFound)
	}

	s.metrics.RecordOperation(ctx, "get", metrics.OutcomeOK, start)
	span.SetStatus(codes.Ok, "City found")
	return c, nil
}

// CreateCity inserts a new city unless the name is already taken, ignoring case.
// Field validation is the caller's responsibility.
func (s *ServiceImpl) CreateCity(ctx context.Context, input types.CityInput) (types.City, error) {
	name := strings.TrimSpace(input.Name)
	ctx, span := otel.Tracer("CityService").Start(ctx, "CreateCity", trace.WithAttributes(
		attribute.String("city.name", name),
	))
	defer span.End()
	start := time.Now()

	l := s.logger.With(slog.String("method", "CreateCity"), slog.String("name", name))
	l.DebugContext(ctx, "Creating city")

	c, ok := s.repo.InsertIfNameAvailable(ctx, name, input.Population)
	if !ok {
		l.InfoContext(ctx, "City name already taken")
		s.metrics.RecordOperation(ctx, "create", metrics.OutcomeDuplicate, start)
		span.SetStatus(codes.Error, "Duplicate city name")
		return types.City{}, fmt.Errorf("city %q: %w", name, api.ErrDuplicateName)
	}

	l.InfoContext(ctx, "City created", slog.Int("cityID", c.ID))
	s.metrics.RecordOperation(ctx, "create", metrics.OutcomeOK, start)
	span.SetAttributes(attribute.Int("city.id", c.ID))
	span.SetStatus(codes.Ok, "City created")
	return c, nil
}

// UpdateCity overwrites name and population of city id.
// The id argument is authoritative; any id carried by input is ignored.
// Name uniqueness is not re-checked against other records.
func (s *ServiceImpl) UpdateCity(ctx context.Context, id int, input types.CityInput) (types.City, error) {
	name := strings.TrimSpace(input.Name)
	ctx, span := otel.Tracer("CityService").Start(ctx, "UpdateCity", trace.WithAttributes(
		attribute.Int("city.id", id),
		attribute.String("city.name", name),
	))
	defer span.End()
	start := time.Now()

	l := s.logger.With(slog.String("method", "UpdateCity"), slog.Int("cityID", id))
	l.DebugContext(ctx, "Updating city")

	if !s.repo.UpdateByID(ctx, id, name, input.Population) {
		l.DebugContext(ctx, "City not found")
		s.metrics.RecordOperation(ctx, "update", metrics.OutcomeNotFound, start)
		span.SetStatus(codes.Error, "City not found")
		return types.City{}, fmt.Errorf("city %d: %w", id, api.ErrNotFound)
	}

	// a concurrent delete may land between the update and the re-fetch
	c, ok := s.repo.FindByID(ctx, id)
	if !ok {
		l.WarnContext(ctx, "City deleted before it could be re-read")
		s.metrics.RecordOperation(ctx, "update", metrics.OutcomeNotFound, start)
		span.SetStatus(codes.Error, "City not found")
		return types.City{}, fmt.Errorf("city %d: %w", id, api.ErrNotFound)
	}

	l.InfoContext(ctx, "City updated")
	s.metrics.RecordOperation(ctx, "update", metrics.OutcomeOK, start)
	span.SetStatus(codes.Ok, "City updated")
	return c, nil
}

// DeleteCity removes city id or returns api.ErrNotFound.
func (s *ServiceImpl) DeleteCity(ctx context.Context, id int) error {
	ctx, span := otel.Tracer("CityService").Start(ctx, "DeleteCity", trace.WithAttributes(
		attribute.Int("city.id", id),
	))
	defer span.End()
	start := time.Now()

	l := s.logger.With(slog.String("method", "DeleteCity"), slog.Int("cityID", id))

	if !s.repo.DeleteByID(ctx, id) {
		l.DebugContext(ctx, "City not found")
		s.metrics.RecordOperation(ctx, "delete", metrics.OutcomeNotFound, start)
		span.SetStatus(codes.Error, "City not found")
		return fmt.Errorf("city %d: %w", id, api.ErrNotFound)
	}

	l.InfoContext(ctx, "City deleted")
	s.metrics.RecordOperation(ctx, "delete", metrics.OutcomeOK, start)
	span.SetStatus(codes.Ok, "City deleted")
	return nil
}
