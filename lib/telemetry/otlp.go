package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dario.cat/mergo"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var ErrUnknownProtocol = errors.New("unknown otlp protocol")

const (
	protocolGrpc = "grpc"
	protocolHttp = "http"
)

// Exporter is where a single signal (traces or metrics) is sent.
type Exporter struct {
	// Protocol is "grpc" or "http", empty means "http".
	Protocol string `json:"protocol"`
	// Endpoint is a full url, ex. "http://localhost:4318/v1/traces".
	// A signal without an endpoint is not exported.
	Endpoint string            `json:"endpoint"`
	Headers  map[string]string `json:"headers"`
}

// Config is the contents of telemetry.json5. Fields left empty on Traces or
// Metrics are taken from Defaults, so a shared protocol or auth header only
// has to be written once.
type Config struct {
	Defaults Exporter `json:"defaults"`
	Traces   Exporter `json:"traces"`
	Metrics  Exporter `json:"metrics"`
}

func (e Exporter) protocol() (string, error) {
	switch strings.ToLower(strings.TrimSpace(e.Protocol)) {
	case "", protocolHttp:
		return protocolHttp, nil
	case protocolGrpc:
		return protocolGrpc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProtocol, e.Protocol)
}

// resolve fills the unset fields of a signal's exporter from the defaults.
func resolve(signal, defaults Exporter) (Exporter, error) {
	out := signal
	err := mergo.Merge(&out, defaults)
	if err != nil {
		return Exporter{}, err
	}
	_, err = out.protocol()
	if err != nil {
		return Exporter{}, err
	}
	return out, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newSpanExporter(ctx context.Context, e Exporter) (trace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	protocol, err := e.protocol()
	if err != nil {
		return nil, err
	}
	slog.Info("trace export enabled", "protocol", protocol, "endpoint", e.Endpoint)

	if protocol == protocolGrpc {
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(e.Endpoint),
			otlptracegrpc.WithHeaders(e.Headers),
		)
	}
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(e.Endpoint),
		otlptracehttp.WithHeaders(e.Headers),
	)
}

func newMetricExporter(ctx context.Context, e Exporter) (metric.Exporter, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	protocol, err := e.protocol()
	if err != nil {
		return nil, err
	}
	slog.Info("metric export enabled", "protocol", protocol, "endpoint", e.Endpoint)

	if protocol == protocolGrpc {
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(e.Endpoint),
			otlpmetricgrpc.WithHeaders(e.Headers),
		)
	}
	return otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpointURL(e.Endpoint),
		otlpmetrichttp.WithHeaders(e.Headers),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, e Exporter) (*trace.TracerProvider, error) {
	exporter, err := newSpanExporter(ctx, e)
	if err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, e Exporter) (*metric.MeterProvider, error) {
	exporter, err := newMetricExporter(ctx, e)
	if err != nil {
		return nil, err
	}
	// a scrape run is short lived, export often so the final counts make it out
	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Second*5))),
		metric.WithResource(r),
	), nil
}
