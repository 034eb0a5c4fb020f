package main

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// logExporter writes finished spans to the CLI logger.
type logExporter struct {
	logger zerolog.Logger
}

func (exporter logExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		event := exporter.logger.Info().
			Str("span", span.Name()).
			Dur("duration", span.EndTime().Sub(span.StartTime()))
		for _, kv := range span.Attributes() {
			event = event.Str(string(kv.Key), kv.Value.Emit())
		}
		if span.Status().Code == codes.Error {
			event = event.Str("error", span.Status().Description)
		}
		event.Msg("step")
	}
	return nil
}

func (exporter logExporter) Shutdown(context.Context) error {
	return nil
}

func newTracerProvider(logger zerolog.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(logExporter{logger: logger}))
}
