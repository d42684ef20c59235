package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementAttr = 300

type querySpanKey struct{}

// PGXTracer emits a span per SQL statement via the pgx QueryTracer hook.
type PGXTracer struct{}

// TraceQueryStart opens the span and stashes it on the context for the
// matching TraceQueryEnd call.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
	}
	stmt := strings.TrimSpace(data.SQL)
	if stmt != "" {
		attrs = append(attrs, attribute.String("db.operation", strings.Fields(stmt)[0]))
	}
	if len(stmt) > maxStatementAttr {
		stmt = stmt[:maxStatementAttr] + "..."
	}
	attrs = append(attrs, attribute.String("db.statement", stmt))

	ctx, span := otel.Tracer("souvenir.db").Start(ctx, "pgx.query")
	span.SetAttributes(attrs...)
	return context.WithValue(ctx, querySpanKey{}, span)
}

// TraceQueryEnd records the statement error, if any, and closes the span.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(querySpanKey{}).(trace.Span)
	if !ok {
		return
	}
	if data.Err != nil {
		span.RecordError(data.Err)
	}
	span.End()
}
