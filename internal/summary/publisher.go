package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/country-cache-server/internal/otel"
	"github.com/stacklok/country-cache-server/internal/service"
)

// FileName is the name of the image inside the cache directory
const FileName = "summary.png"

// ErrImageNotFound is returned when no summary has been rendered yet
var ErrImageNotFound = errors.New("summary image not found")

// CountrySource provides the figures drawn on the summary
type CountrySource interface {
	CountCountries(ctx context.Context) (int64, error)
	TopByGDP(ctx context.Context, limit int) ([]*service.Country, error)
}

// Publisher renders the summary into a cache directory and serves it back
type Publisher struct {
	source   CountrySource
	cacheDir string
	tracer   trace.Tracer
}

// PublisherOption configures a Publisher
type PublisherOption func(*Publisher)

// WithTracer sets the tracer used for publish spans
func WithTracer(tracer trace.Tracer) PublisherOption {
	return func(p *Publisher) {
		p.tracer = tracer
	}
}

// NewPublisher creates a Publisher writing to cacheDir
func NewPublisher(source CountrySource, cacheDir string, opts ...PublisherOption) (*Publisher, error) {
	if source == nil {
		return nil, fmt.Errorf("country source is required")
	}
	if cacheDir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	p := &Publisher{
		source:   source,
		cacheDir: cacheDir,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Path returns the location of the rendered image
func (p *Publisher) Path() string {
	return filepath.Join(p.cacheDir, FileName)
}

// Publish renders the current totals and top countries, replacing any previous image
func (p *Publisher) Publish(ctx context.Context, refreshedAt time.Time) (err error) {
	ctx, span := otel.StartSpan(ctx, p.tracer, "summary.Publish")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	total, err := p.source.CountCountries(ctx)
	if err != nil {
		return fmt.Errorf("failed to count countries: %w", err)
	}
	top, err := p.source.TopByGDP(ctx, TopCount)
	if err != nil {
		return fmt.Errorf("failed to load top countries: %w", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, Data{TotalCountries: total, Top: top, RefreshedAt: refreshedAt}); err != nil {
		return err
	}

	if err := os.MkdirAll(p.cacheDir, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(p.cacheDir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary summary file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write summary image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close summary image: %w", err)
	}
	if err := os.Rename(tmpPath, p.Path()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move summary image into place: %w", err)
	}

	slog.Debug("Summary image written", "path", p.Path(), "total_countries", total)
	return nil
}

// Read returns the PNG bytes of the last published summary
func (p *Publisher) Read() ([]byte, error) {
	data, err := os.ReadFile(p.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to read summary image: %w", err)
	}
	return data, nil
}
