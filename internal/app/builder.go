package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/country-cache-server/internal/api"
	"github.com/stacklok/country-cache-server/internal/app/storage"
	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/httpclient"
	database "github.com/stacklok/country-cache-server/internal/service/db"
	"github.com/stacklok/country-cache-server/internal/sources"
	"github.com/stacklok/country-cache-server/internal/status"
	"github.com/stacklok/country-cache-server/internal/summary"
	pkgsync "github.com/stacklok/country-cache-server/internal/sync"
	"github.com/stacklok/country-cache-server/internal/sync/coordinator"
	"github.com/stacklok/country-cache-server/internal/telemetry"
)

const (
	// DefaultHTTPAddress is used when no address option is given
	DefaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 30 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 35 * time.Second
	defaultIdleTimeout    = 60 * time.Second

	// SummaryTracerName is the tracer used for summary publishing
	SummaryTracerName = "github.com/stacklok/country-cache-server/summary"
)

// CountryCacheAppOptions configures the app builder
type CountryCacheAppOptions func(*countryCacheAppConfig) error

// countryCacheAppConfig supports dependency injection for testing while
// providing production defaults
type countryCacheAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	storageFactory   storage.Factory
	refreshManager   pkgsync.Manager
	countriesFetcher sources.CountriesFetcher
	ratesFetcher     sources.RatesFetcher
	autoMigrate      bool

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...CountryCacheAppOptions) (*countryCacheAppConfig, error) {
	cfg := &countryCacheAppConfig{
		address:        DefaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return cfg, nil
}

// NewCountryCacheApp wires storage, fetchers, the refresh pipeline and the HTTP server
func NewCountryCacheApp(ctx context.Context, opts ...CountryCacheAppOptions) (*CountryCacheApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	// Single decision point for database vs file storage
	if cfg.storageFactory == nil {
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config,
			storage.WithTracer(cfg.tracer(database.ServiceTracerName)),
			storage.WithMigrations(cfg.autoMigrate),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	httpServer, err := buildHTTPServer(cfg, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	return &CountryCacheApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
		cleanup:    cfg.storageFactory.Cleanup,
		coordDone:  make(chan struct{}),
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, ok := strings.Cut(addr, ":")
		if !ok || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout bounds the time spent in a handler
func WithRequestTimeout(d time.Duration) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithRefreshManager allows injecting a custom refresh manager (for testing)
func WithRefreshManager(m pkgsync.Manager) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		cfg.refreshManager = m
		return nil
	}
}

// WithFetchers replaces the upstream fetchers (for testing)
func WithFetchers(countries sources.CountriesFetcher, rates sources.RatesFetcher) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		cfg.countriesFetcher = countries
		cfg.ratesFetcher = rates
		return nil
	}
}

// WithAutoMigrate applies database migrations when the storage factory is created
func WithAutoMigrate(enabled bool) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		cfg.autoMigrate = enabled
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for refresh and HTTP metrics
func WithMeterProvider(mp metric.MeterProvider) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves the given Prometheus handler on /metrics
func WithMetricsHandler(h http.Handler) CountryCacheAppOptions {
	return func(cfg *countryCacheAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

func (b *countryCacheAppConfig) tracer(name string) trace.Tracer {
	if b.tracerProvider == nil {
		return nil
	}
	return b.tracerProvider.Tracer(name)
}

func buildComponents(ctx context.Context, b *countryCacheAppConfig) (*AppComponents, error) {
	slog.Info("Initializing refresh components")

	stateSvc, err := b.storageFactory.CreateStateService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create state service: %w", err)
	}

	countrySvc, err := b.storageFactory.CreateCountryService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create country service: %w", err)
	}

	publisher, err := summary.NewPublisher(countrySvc, b.config.Summary.GetCacheDir(),
		summary.WithTracer(b.tracer(SummaryTracerName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create summary publisher: %w", err)
	}

	refreshMetrics, err := telemetry.NewRefreshMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh metrics: %w", err)
	}
	countryMetrics, err := telemetry.NewCountryMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create country metrics: %w", err)
	}

	if b.refreshManager == nil {
		b.refreshManager, err = buildRefreshManager(ctx, b, publisher, refreshMetrics)
		if err != nil {
			return nil, err
		}
	}

	coord := coordinator.New(
		b.refreshManager,
		stateSvc,
		coordinator.NewConfig(&b.config.Refresh),
		coordinator.WithRefreshMetrics(refreshMetrics),
		coordinator.WithCountryMetrics(countryMetrics, countrySvc),
	)

	slog.Info("Refresh components initialized successfully",
		"storage", b.config.GetStorageType(),
		"gdp_mode", b.config.Refresh.GDPMultiplier.GetMode())

	return &AppComponents{
		Coordinator:    coord,
		CountryService: countrySvc,
		StateService:   stateSvc,
		Summary:        publisher,
	}, nil
}

func buildRefreshManager(
	ctx context.Context,
	b *countryCacheAppConfig,
	publisher *summary.Publisher,
	metrics *telemetry.RefreshMetrics,
) (pkgsync.Manager, error) {
	src := &b.config.Sources

	if b.countriesFetcher == nil {
		client := httpclient.NewDefaultClient(src.Countries.GetTimeout())
		b.countriesFetcher = sources.NewCountriesFetcher(client, src.Countries.GetURL())
	}
	if b.ratesFetcher == nil {
		client := httpclient.NewDefaultClient(src.Rates.GetTimeout())
		b.ratesFetcher = sources.NewRatesFetcher(client, []sources.RatesProvider{
			{Name: status.RatesSourcePrimary, URL: src.Rates.GetPrimary()},
			{Name: status.RatesSourceSecondary, URL: src.Rates.GetSecondary()},
		}, src.Rates.GetFallbackRates())
	}

	countryWriter, err := b.storageFactory.CreateCountryWriter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create country writer: %w", err)
	}

	estimator, err := pkgsync.NewEstimatorFromConfig(&b.config.Refresh.GDPMultiplier)
	if err != nil {
		return nil, fmt.Errorf("failed to create GDP estimator: %w", err)
	}

	return pkgsync.NewDefaultRefreshManager(
		b.countriesFetcher,
		b.ratesFetcher,
		countryWriter,
		pkgsync.WithBatchSize(b.config.Refresh.GetBatchSize()),
		pkgsync.WithEstimator(estimator),
		pkgsync.WithSummaryPublisher(publisher),
		pkgsync.WithTracer(b.tracer(pkgsync.ManagerTracerName)),
		pkgsync.WithRefreshMetrics(metrics),
	), nil
}

func buildHTTPServer(b *countryCacheAppConfig, components *AppComponents) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Telemetry middlewares go first to observe every request
	var telemetryMw []func(http.Handler) http.Handler
	if b.meterProvider != nil {
		metricsMw, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		telemetryMw = append(telemetryMw, metricsMw)
		slog.Info("HTTP metrics middleware enabled")
	}
	if b.tracerProvider != nil {
		telemetryMw = append(telemetryMw, telemetry.TracingMiddleware(b.tracerProvider))
	}
	middlewares := append(telemetryMw, b.middlewares...)

	router := api.NewServer(api.Dependencies{
		Service:     components.CountryService,
		Coordinator: components.Coordinator,
		State:       components.StateService,
		Images:      components.Summary,
	},
		api.WithMiddlewares(middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
	)

	server := &http.Server{
		Addr:              b.address,
		Handler:           router,
		ReadTimeout:       b.readTimeout,
		ReadHeaderTimeout: b.readTimeout,
		WriteTimeout:      b.writeTimeout,
		IdleTimeout:       b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
