package city

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-city-registry/internal/types"
)

var _ CityRepository = (*InMemoryCityRepository)(nil)

// CityRepository is the authoritative holder of city records and the id sequence.
// None of its operations fail; outcomes are reported through return values.
type CityRepository interface {
	// List returns every record in insertion order.
	List(ctx context.Context) []types.City
	// FindByID returns the record with the given id, if any.
	FindByID(ctx context.Context, id int) (types.City, bool)
	// ExistsByNameCaseInsensitive reports whether a record already uses name, ignoring case.
	ExistsByNameCaseInsensitive(ctx context.Context, name string) bool
	// Insert assigns the next id and appends the record. Uniqueness is not re-checked.
	Insert(ctx context.Context, name string, population int) types.City
	// InsertIfNameAvailable checks uniqueness and inserts under a single write lock.
	InsertIfNameAvailable(ctx context.Context, name string, population int) (types.City, bool)
	// UpdateByID overwrites name and population of an existing record.
	UpdateByID(ctx context.Context, id int, name string, population int) bool
	// DeleteByID removes the record if present.
	DeleteByID(ctx context.Context, id int) bool
	// Count returns the number of live records.
	Count(ctx context.Context) int
}

// InMemoryCityRepository keeps records in a slice guarded by a RWMutex.
// Reads share the lock; every mutation holds it exclusively.
type InMemoryCityRepository struct {
	logger *slog.Logger

	mu     sync.RWMutex
	cities []types.City
	lastID int
}

// NewInMemoryCityRepository returns a store seeded in order with seeds.
// Seeds whose name is already taken are skipped.
func NewInMemoryCityRepository(logger *slog.Logger, seeds ...types.CitySeed) *InMemoryCityRepository {
	r := &InMemoryCityRepository{
		logger: logger,
		cities: make([]types.City, 0, len(seeds)),
	}

	ctx := context.Background()
	for _, seed := range seeds {
		c, ok := r.InsertIfNameAvailable(ctx, seed.Name, seed.Population)
		if !ok {
			logger.Warn("Skipping duplicate seed city", slog.String("name", seed.Name))
			continue
		}
		logger.Debug("Seeded city", slog.Int("id", c.ID), slog.String("name", c.Name))
	}
	return r
}

func (r *InMemoryCityRepository) List(ctx context.Context) []types.City {
	_, span := otel.Tracer("CityRepository").Start(ctx, "List", trace.WithAttributes(
		attribute.String("db.collection", "cities"),
	))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.City, len(r.cities))
	copy(out, r.cities)
	span.SetAttributes(attribute.Int("db.rows", len(out)))
	return out
}

func (r *InMemoryCityRepository) FindByID(ctx context.Context, id int) (types.City, bool) {
	_, span := otel.Tracer("CityRepository").Start(ctx, "FindByID", trace.WithAttributes(
		attribute.String("db.collection", "cities"),
		attribute.Int("city.id", id),
	))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.cities[i], true
	}
	return types.City{}, false
}

func (r *InMemoryCityRepository) ExistsByNameCaseInsensitive(ctx context.Context, name string) bool {
	_, span := otel.Tracer("CityRepository").Start(ctx, "ExistsByNameCaseInsensitive", trace.WithAttributes(
		attribute.String("db.collection", "cities"),
		attribute.String("city.name", name),
	))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.nameTaken(name)
}

func (r *InMemoryCityRepository) Insert(ctx context.Context, name string, population int) types.City {
	_, span := otel.Tracer("CityRepository").Start(ctx, "Insert", trace.WithAttributes(
		attribute.String("db.collection", "cities"),
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.appendCity(name, population)
	span.SetAttributes(attribute.Int("city.id", c.ID))
	return c
}

func (r *InMemoryCityRepository) InsertIfNameAvailable(ctx context.Context, name string, population int) (types.City, bool) {
	_, span := otel.Tracer("CityRepository").Start(ctx, "InsertIfNameAvailable", trace.WithAttributes(
		attribute.String("db.collection", "cities"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("city.name", name),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(name) {
		span.SetAttributes(attribute.Bool("city.duplicate", true))
		return types.City{}, false
	}
	c := r.appendCity(name, population)
	span.SetAttributes(attribute.Int("city.id", c.ID))
	return c, true
}

func (r *InMemoryCityRepository) UpdateByID(ctx context.Context, id int, name string, population int) bool {
	_, span := otel.Tracer("CityRepository").Start(ctx, "UpdateByID", trace.WithAttributes(
		attribute.String("db.collection", "cities"),
		attribute.String("db.operation", "UPDATE"),
		attribute.Int("city.id", id),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.cities[i].Name = name
	r.cities[i].Population = population
	return true
}

func (r *InMemoryCityRepository) DeleteByID(ctx context.Context, id int) bool {
	_, span := otel.Tracer("CityRepository").Start(ctx, "DeleteByID", trace.WithAttributes(
		attribute.String("db.collection", "cities"),
		attribute.String("db.operation", "DELETE"),
		attribute.Int("city.id", id),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.cities = append(r.cities[:i], r.cities[i+1:]...)
	return true
}

func (r *InMemoryCityRepository) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cities)
}

// caller must hold r.mu
func (r *InMemoryCityRepository) indexOf(id int) int {
	for i := range r.cities {
		if r.cities[i].ID == id {
			return i
		}
	}
	return -1
}

// caller must hold r.mu
func (r *InMemoryCityRepository) nameTaken(name string) bool {
	for i := range r.cities {
		if strings.EqualFold(r.cities[i].Name, name) {
			return true
		}
	}
	return false
}

// caller must hold r.mu for writing
func (r *InMemoryCityRepository) appendCity(name string, population int) types.City {
	r.lastID++
	c := types.City{ID: r.lastID, Name: name, Population: population}
	r.cities = append(r.cities, c)
	return c
}
