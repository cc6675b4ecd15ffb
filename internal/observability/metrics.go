package observability

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	ledgerEvents metric.Int64Counter
	usageQueries metric.Int64Counter
}

// NewMeterProvider configures and registers the meter provider.
func NewMeterProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.OtelEnabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := otlpmetricgrpc.New(context.Background(),
		otlpmetricgrpc.WithEndpoint(cfg.OtelExporterEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down meter provider")
			return provider.Shutdown(ctx)
		},
	})

	log.Info("metrics initialized", zap.String("endpoint", cfg.OtelExporterEndpoint))
	return provider, nil
}

// NewMetrics configures the domain instruments.
func NewMetrics(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tally"
	}
	meter := provider.Meter(name)

	ledgerEvents, err := meter.Int64Counter("tally_ledger_events_total")
	if err != nil {
		return nil, err
	}
	usageQueries, err := meter.Int64Counter("tally_days_active_queries_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ledgerEvents: ledgerEvents,
		usageQueries: usageQueries,
	}, nil
}

// RecordLedgerEvent counts activations and deactivations.
func (m *Metrics) RecordLedgerEvent(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.ledgerEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

// RecordUsageQuery counts days-active computations.
func (m *Metrics) RecordUsageQuery(ctx context.Context) {
	if m == nil {
		return
	}
	m.usageQueries.Add(ctx, 1)
}
