package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"gym-fulfillment/internal/common/logger"
)

const instrumentationName = "gym-fulfillment"

type Observability struct {
	meterProvider    *metric.MeterProvider
	tracerProvider   *sdktrace.TracerProvider
	meter            otelmetric.Meter
	dispatchCounter  otelmetric.Int64Counter
	dispatchDuration otelmetric.Float64Histogram
	leadCounter      otelmetric.Int64Counter
	logger           logger.Logger
}

// New sets up the otel meter provider backed by the prometheus exporter. reg
// nil means the default prometheus registerer. Exporter failures leave
// metrics disabled; the service still runs.
func New(serviceName string, reg promclient.Registerer, log logger.Logger) *Observability {
	o := &Observability{logger: log.WithFields(map[string]interface{}{"component": "observability"})}

	opts := []prometheus.Option{}
	if reg != nil {
		opts = append(opts, prometheus.WithRegisterer(reg))
	}
	exporter, err := prometheus.New(opts...)
	if err != nil {
		o.logger.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	dispatchCounter, _ := meter.Int64Counter(
		"dispatch.processed",
		otelmetric.WithDescription("Number of intents dispatched"),
	)

	dispatchDuration, _ := meter.Float64Histogram(
		"dispatch.duration",
		otelmetric.WithDescription("Dispatch duration"),
		otelmetric.WithUnit("ms"),
	)

	leadCounter, _ := meter.Int64Counter(
		"leads.captured",
		otelmetric.WithDescription("Quote leads stored"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.dispatchCounter = dispatchCounter
	o.dispatchDuration = dispatchDuration
	o.leadCounter = leadCounter
	return o
}

// RecordDispatch is safe on a nil receiver.
func (o *Observability) RecordDispatch(ctx context.Context, intent, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("outcome", outcome),
	)
	if o.dispatchCounter != nil {
		o.dispatchCounter.Add(ctx, 1, attrs)
	}
	if o.dispatchDuration != nil {
		o.dispatchDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

func (o *Observability) RecordLeadCaptured(ctx context.Context) {
	if o == nil || o.leadCounter == nil {
		return
	}
	o.leadCounter.Add(ctx, 1)
}

// StartSpan opens a span on the configured tracer provider, or on the global
// one (a no-op unless tracing was enabled) when o is nil.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	var tracer trace.Tracer
	if o != nil && o.tracerProvider != nil {
		tracer = o.tracerProvider.Tracer(instrumentationName)
	} else {
		tracer = otel.Tracer(instrumentationName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("Meter provider shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("Tracer provider shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
