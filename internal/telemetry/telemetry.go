// Package telemetry installs the OpenTelemetry tracer provider used by the
// calculator spans.
package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config selects whether spans are exported and how the process is named.
type Config struct {
	Enabled     bool
	ServiceName string
	Version     string
}

// ShutdownFunc flushes pending spans and releases the provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs a global tracer provider that writes every finished span to
// w as indented JSON. When cfg.Enabled is false nothing is installed and the
// global no-op provider stays in place.
func Setup(ctx context.Context, w io.Writer, cfg Config) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "fibdrv"
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return noopShutdown, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
	))
	if err != nil {
		return noopShutdown, err
	}

	// Runs are short; a syncer exports each span as soon as it ends.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
