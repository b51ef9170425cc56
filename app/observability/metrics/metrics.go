package metrics

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "CityRegistry"

// Outcome labels recorded on city_operations_total.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeDuplicate = "duplicate"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	CityOperationsTotal          metric.Int64Counter
	CityOperationDurationSeconds metric.Float64Histogram

	meter metric.Meter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// New creates the instruments on the given meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{meter: meter}

	m.CityOperationsTotal, err = meter.Int64Counter(
		"city_operations_total",
		metric.WithDescription("Total number of city operations by operation and outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create city_operations_total: %w", err)
	}

	m.CityOperationDurationSeconds, err = meter.Float64Histogram(
		"city_operation_duration_seconds",
		metric.WithDescription("Duration of city operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create city_operation_duration_seconds: %w", err)
	}

	return m, nil
}

// InitAppMetrics initializes the global instruments ONLY ONCE, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		m, err := New(otel.GetMeterProvider().Meter(meterName))
		if err != nil {
			log.Fatalf("Metrics: %v", err)
		}
		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

// RegisterCityRecordsGauge exposes the live record count as city_records.
func (m *AppMetrics) RegisterCityRecordsGauge(count func(ctx context.Context) int) error {
	_, err := m.meter.Int64ObservableGauge(
		"city_records",
		metric.WithDescription("Number of city records currently held"),
		metric.WithUnit("{record}"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			o.Observe(int64(count(ctx)))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create city_records: %w", err)
	}
	return nil
}

// RecordOperation counts one operation and observes its duration since start.
func (m *AppMetrics) RecordOperation(ctx context.Context, operation, outcome string, start time.Time) {
	m.CityOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
	m.CityOperationDurationSeconds.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}
