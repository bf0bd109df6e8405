package database

import (
	"context"

	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/country-cache-server/internal/otel"
)

const (
	// ServiceTracerName is the name used for the database service tracer
	ServiceTracerName = "github.com/stacklok/country-cache-server/service/db"
)

// DBSystemPostgres is the database system attribute for PostgreSQL
var DBSystemPostgres = semconv.DBSystemPostgreSQL

// startSpan starts a new span for database operations.
// All database spans include the db.system attribute.
func (s *dbService) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	opts = append([]trace.SpanStartOption{trace.WithAttributes(DBSystemPostgres)}, opts...)
	return otel.StartSpan(ctx, s.tracer, name, opts...)
}

func recordError(span trace.Span, err error) {
	otel.RecordError(span, err)
}
