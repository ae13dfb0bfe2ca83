// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/convert"
	"github.com/dukex/blueprint/pkg/otelhelper"
	"github.com/dukex/blueprint/pkg/services"
	"go.opentelemetry.io/otel/trace"
)

// NewCatalogs loads the embedded module catalogs. A broken catalog is a build
// defect, so it panics.
func NewCatalogs(ctx context.Context, log *slog.Logger) catalog.Set {
	set, err := catalog.LoadEmbedded()
	if err != nil {
		panic(fmt.Errorf("failed to load module catalogs: %w", err))
	}

	for p, c := range set {
		log.DebugContext(ctx, "Loaded module catalog", "platform", p, "modules", c.Len())
	}

	return set
}

// NewRegistry returns the codec registry of every native platform.
func NewRegistry(ctx context.Context, log *slog.Logger) *convert.Registry {
	reg := convert.NewDefaultRegistry()

	log.DebugContext(ctx, "Registered document codecs", "platforms", reg.Platforms())

	return reg
}

// NewTracer returns an exporting tracer when enabled and a no-op tracer
// otherwise. The returned shutdown function is never nil.
//
// nolint:ireturn // Returning interface is intentional for OpenTelemetry tracing
func NewTracer(ctx context.Context, log *slog.Logger, enabled bool, serviceName string) (trace.Tracer, otelhelper.ShutdownFunc) {
	noop := func(context.Context) error { return nil }

	if !enabled {
		return otelhelper.NoopTracer(), noop
	}

	tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize tracer, tracing disabled", "error", err)

		return otelhelper.NoopTracer(), noop
	}

	return tracer, shutdown
}

// NewBlueprint wires the blueprint service used by every binary.
func NewBlueprint(ctx context.Context, log *slog.Logger, tracer trace.Tracer) *services.Blueprint {
	return services.NewBlueprint(
		NewCatalogs(ctx, log),
		services.WithRegistry(NewRegistry(ctx, log)),
		services.WithTracer(tracer),
		services.WithLogger(log),
	)
}
