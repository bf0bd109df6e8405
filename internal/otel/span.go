// Package otel holds the span helpers and attribute keys shared by the refresh
// pipeline and the country stores.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys
const (
	AttrRunID        = attribute.Key("refresh.run_id")
	AttrRefreshStage = attribute.Key("refresh.stage")
	AttrRatesSource  = attribute.Key("refresh.rates_source")
	AttrChunkSize    = attribute.Key("refresh.chunk_size")
	AttrCountryName  = attribute.Key("country.name")
	AttrRegion       = attribute.Key("country.region")
	AttrCurrency     = attribute.Key("country.currency")
	AttrSortOrder    = attribute.Key("query.sort")
	AttrResultCount  = attribute.Key("result.count")
)

// stageEvent names the span event added on every refresh phase change
const stageEvent = "refresh.stage_changed"

// StartSpan is tracer.Start that accepts a nil tracer. Without a tracer the
// span already carried by ctx, usually a no-op one, is returned.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError attaches err to span as an event and marks the span failed.
// The status description stays generic; query text and connection strings
// only ever reach the event.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}

// MarkStage records that the run traced by ctx entered stage
func MarkStage(ctx context.Context, stage string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(AttrRefreshStage.String(stage))
	span.AddEvent(stageEvent, trace.WithAttributes(AttrRefreshStage.String(stage)))
}
