package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/stateforward/go-dfa"
)

const Instrumentation = "github.com/stateforward/go-dfa"

// NewProvider returns a provider whose spans record nothing.
func NewProvider() trace.TracerProvider {
	return noop.NewTracerProvider()
}

// Trace returns a dfa.Trace that starts one span per automaton step as a
// child of ctx. A nil tracer falls back to the global provider.
func Trace(ctx context.Context, tracer trace.Tracer) dfa.Trace {
	if tracer == nil {
		tracer = otel.Tracer(Instrumentation)
	}
	return func(step string, args ...any) func(...any) {
		_, span := tracer.Start(ctx, "dfa."+step, trace.WithAttributes(attributes(args)...))
		return func(outcome ...any) {
			defer span.End()
			for _, value := range outcome {
				switch value := value.(type) {
				case error:
					span.RecordError(value)
					span.SetStatus(codes.Error, value.Error())
				case fmt.Stringer:
					span.SetAttributes(attribute.String("dfa.target", value.String()))
				}
			}
		}
	}
}

func attributes(args []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		name, ok := args[i].(string)
		if !ok {
			continue
		}
		key := attribute.Key("dfa." + name)
		switch value := args[i+1].(type) {
		case string:
			attrs = append(attrs, key.String(value))
		case int:
			attrs = append(attrs, key.Int(value))
		case bool:
			attrs = append(attrs, key.Bool(value))
		default:
			attrs = append(attrs, key.String(fmt.Sprint(value)))
		}
	}
	return attrs
}
