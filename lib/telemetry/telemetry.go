package telemetry

import (
	"context"
	"errors"
	"fmt"
	"kenosha-results/lib/configutil"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Telemetry holds the providers installed by Setup, both are nil when
// no exporter was configured.
type Telemetry struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

func (t Telemetry) Shutdown(ctx context.Context) error {
	var errlist []error
	if t.TracerProvider != nil {
		err := t.TracerProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	if t.MeterProvider != nil {
		err := t.MeterProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) oteltrace.Tracer {
	return otel.Tracer(name)
}

// searches up the filesystem from the cwd to find a file
// called telemetry.json5, once found it will then use it
// as a config to setup telemetry.
// if no such file exists the global no-op providers are left in place.
func SetupFromEnv(ctx context.Context, serviceName string) (Telemetry, error) {
	config, err := configutil.ReadRecursively[Config]("telemetry.json5")
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no telemetry.json5 found, telemetry export disabled")
		return Telemetry{}, nil
	}
	if err != nil {
		return Telemetry{}, err
	}
	return Setup(ctx, serviceName, config)
}

// Setup installs an otlp exporter for every signal of the config that has
// an endpoint, signals without one keep the global no-op provider.
func Setup(ctx context.Context, serviceName string, config Config) (Telemetry, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	traces, err := resolve(config.Traces, config.Defaults)
	if err != nil {
		return Telemetry{}, fmt.Errorf("traces: %w", err)
	}
	metrics, err := resolve(config.Metrics, config.Defaults)
	if err != nil {
		return Telemetry{}, fmt.Errorf("metrics: %w", err)
	}

	var out Telemetry
	if traces.Endpoint == "" && metrics.Endpoint == "" {
		return out, nil
	}

	r, err := newResource(serviceName)
	if err != nil {
		return Telemetry{}, err
	}

	if traces.Endpoint != "" {
		out.TracerProvider, err = newTraceProvider(ctx, r, traces)
		if err != nil {
			return Telemetry{}, err
		}
		otel.SetTracerProvider(out.TracerProvider)
	}
	if metrics.Endpoint != "" {
		out.MeterProvider, err = newMetricProvider(ctx, r, metrics)
		if err != nil {
			out.Shutdown(ctx)
			return Telemetry{}, err
		}
		otel.SetMeterProvider(out.MeterProvider)
	}

	return out, nil
}
