package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/config"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the arena
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	eventsCounter           metric.Int64Counter
	matchesCreatedCounter   metric.Int64Counter
	matchesSettledCounter   metric.Int64Counter
	matchesDisputedCounter  metric.Int64Counter
	payoutAmountCounter     metric.Int64Counter
	platformFeeCounter      metric.Int64Counter
	compensationsCounter    metric.Int64Counter
	rejectedCounter         metric.Int64Counter
	casConflictsCounter     metric.Int64Counter
	reconcileRunsCounter    metric.Int64Counter
	reconcileRecoveredCount metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.initializeWithReader(reader); err != nil {
		return err
	}

	otel.SetMeterProvider(mp.meterProvider)
	log.Info("Metrics provider initialized successfully")
	return nil
}

// initializeWithReader builds the meter provider around reader. Callers hold mp.mu.
func (mp *MetricsProvider) initializeWithReader(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("clash-cash-arena")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.eventsCounter, EventsTotal, "Total number of domain events emitted"},
		{&mp.matchesCreatedCounter, MatchesCreatedTotal, "Total number of matches opened"},
		{&mp.matchesSettledCounter, MatchesSettledTotal, "Total number of matches paid out"},
		{&mp.matchesDisputedCounter, MatchesDisputedTotal, "Total number of disputes raised"},
		{&mp.payoutAmountCounter, PayoutAmountTotal, "Currency paid to match winners"},
		{&mp.platformFeeCounter, PlatformFeeTotal, "Currency retained as platform fee"},
		{&mp.compensationsCounter, CompensationsTotal, "Total number of compensating refunds"},
		{&mp.rejectedCounter, OperationsRejectedTotal, "Total number of rejected operations"},
		{&mp.casConflictsCounter, CASConflictsTotal, "Total number of lost compare-and-swap attempts"},
		{&mp.reconcileRunsCounter, ReconcileRunsTotal, "Total number of reconciler passes"},
		{&mp.reconcileRecoveredCount, ReconcileRecoveredTotal, "Total number of payouts completed by the reconciler"},
	}

	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.target = counter
	}
	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Subscribe registers the provider as a handler for every bus event
func (mp *MetricsProvider) Subscribe(bus *events.Bus) {
	bus.SubscribeAll(mp.RecordEvent)
}

// RecordEvent counts an emitted event and the domain figures it carries
func (mp *MetricsProvider) RecordEvent(ctx context.Context, event events.Event) {
	if !mp.isEnabled() {
		return
	}

	mp.eventsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelEventType, string(event.Type())),
	))

	switch e := event.(type) {
	case events.MatchCreatedEvent:
		mp.matchesCreatedCounter.Add(ctx, 1)
	case events.MatchSettledEvent:
		mp.matchesSettledCounter.Add(ctx, 1)
		mp.payoutAmountCounter.Add(ctx, e.Payout)
		mp.platformFeeCounter.Add(ctx, e.Fee)
	case events.SettlementRecoveredEvent:
		mp.matchesSettledCounter.Add(ctx, 1)
		mp.payoutAmountCounter.Add(ctx, e.Payout)
		mp.platformFeeCounter.Add(ctx, e.Fee)
	case events.MatchDisputedEvent, events.DisputeReportedEvent:
		mp.matchesDisputedCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelEventType, string(event.Type())),
		))
	case events.EscrowRefundedEvent:
		mp.compensationsCounter.Add(ctx, 1)
	case events.OperationRejectedEvent:
		mp.rejectedCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelOperation, e.Operation),
			attribute.String(LabelReason, e.Message()),
		))
	}
}

// RecordCASConflict counts a lost compare-and-swap on a record kind
func (mp *MetricsProvider) RecordCASConflict(kind string) {
	if !mp.isEnabled() {
		return
	}
	mp.casConflictsCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(LabelKind, kind),
	))
}

// RecordReconcileRun counts a reconciler pass and the payouts it completed
func (mp *MetricsProvider) RecordReconcileRun(recovered int, err error) {
	if !mp.isEnabled() {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	ctx := context.Background()
	mp.reconcileRunsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelOutcome, outcome),
	))
	if recovered > 0 {
		mp.reconcileRecoveredCount.Add(ctx, int64(recovered))
	}
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
