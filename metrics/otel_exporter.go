package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	backlog       BacklogReader

	meter            metric.Meter
	receivedCounter  metric.Int64Counter
	deliveredCounter metric.Int64Counter
	failedCounter    metric.Int64Counter
	durationHist     metric.Float64Histogram
	backlogGauge     metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format.
// backlog may be nil when no durable failed-delivery store is configured.
func NewOTelExporter(backlog BacklogReader) (*OTelExporter, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"webhook-relay",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		backlog:       backlog,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.receivedCounter, err = oe.meter.Int64Counter(
		"webhook.received",
		metric.WithDescription("Number of inbound webhook requests per source"),
		metric.WithUnit("{webhooks}"),
	)
	if err != nil {
		return fmt.Errorf("creating received counter: %w", err)
	}

	oe.deliveredCounter, err = oe.meter.Int64Counter(
		"webhook.delivered",
		metric.WithDescription("Number of webhooks successfully forwarded downstream"),
		metric.WithUnit("{webhooks}"),
	)
	if err != nil {
		return fmt.Errorf("creating delivered counter: %w", err)
	}

	oe.failedCounter, err = oe.meter.Int64Counter(
		"webhook.failed",
		metric.WithDescription("Number of webhooks that failed, by pipeline stage"),
		metric.WithUnit("{webhooks}"),
	)
	if err != nil {
		return fmt.Errorf("creating failed counter: %w", err)
	}

	oe.durationHist, err = oe.meter.Float64Histogram(
		"webhook.delivery.duration",
		metric.WithDescription("Duration of one forwarding cycle including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}

	if oe.backlog != nil {
		oe.backlogGauge, err = oe.meter.Int64ObservableGauge(
			"webhook.failed.backlog",
			metric.WithDescription("Number of recorded failed deliveries awaiting replay per source"),
			metric.WithUnit("{webhooks}"),
			metric.WithInt64Callback(oe.observeBacklog),
		)
		if err != nil {
			return fmt.Errorf("creating backlog gauge: %w", err)
		}
	}

	return nil
}

// observeBacklog is a callback that reports failed-delivery backlog sizes
func (oe *OTelExporter) observeBacklog(ctx context.Context, observer metric.Int64Observer) error {
	backlog, err := oe.backlog.FailedBacklog(ctx)
	if err != nil {
		return err
	}

	for source, count := range backlog {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("webhook.source", source),
		))
	}

	return nil
}

// Handler returns the HTTP handler serving metrics in Prometheus text format
func (oe *OTelExporter) Handler() http.Handler {
	return promhttp.Handler()
}

// Shutdown flushes and stops the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	return oe.meterProvider.Shutdown(ctx)
}

func (oe *OTelExporter) WebhookReceived(source string) {
	oe.receivedCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("webhook.source", source),
	))
}

func (oe *OTelExporter) WebhookDelivered(source, eventType string) {
	oe.deliveredCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("webhook.source", source),
		attribute.String("webhook.event_type", eventType),
	))
}

func (oe *OTelExporter) WebhookFailed(source, stage string) {
	oe.failedCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("webhook.source", source),
		attribute.String("webhook.stage", stage),
	))
}

func (oe *OTelExporter) DeliveryDuration(source string, elapsed time.Duration) {
	oe.durationHist.Record(context.Background(), elapsed.Seconds(), metric.WithAttributes(
		attribute.String("webhook.source", source),
	))
}
