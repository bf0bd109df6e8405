// Package config provides configuration loading and management for the country cache server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/country-cache-server/internal/telemetry"
)

// EnvPrefix is the prefix used for all environment variable overrides
const EnvPrefix = "COUNTRY_CACHE"

// StorageType identifies the backend used to persist countries and refresh runs
type StorageType string

const (
	// StorageTypeFile stores data as JSON snapshots on the local filesystem
	StorageTypeFile StorageType = "file"

	// StorageTypeDatabase stores data in PostgreSQL
	StorageTypeDatabase StorageType = "database"
)

// GDPMode selects how the per-country GDP multiplier is chosen
type GDPMode string

const (
	// GDPModeRandom draws a uniform multiplier in [Min, Max) per country and run
	GDPModeRandom GDPMode = "random"

	// GDPModeFixed always uses Value, making estimated GDP reproducible
	GDPModeFixed GDPMode = "fixed"
)

const (
	defaultFileStorageBaseDir = "./data"
	defaultSummaryCacheDir    = "./cache"

	// DefaultCountriesURL is the upstream country registry endpoint
	DefaultCountriesURL = "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"
	// DefaultPrimaryRatesURL is the first exchange-rate provider tried
	DefaultPrimaryRatesURL = "https://open.er-api.com/v6/latest/USD"
	// DefaultSecondaryRatesURL is tried when the primary provider fails
	DefaultSecondaryRatesURL = "https://api.exchangerate.host/latest?base=USD"

	defaultCountriesTimeout = 30 * time.Second
	defaultRatesTimeout     = 10 * time.Second
	defaultBatchSize        = 100
	defaultWorkers          = 1
	defaultQueueSize        = 1
	defaultRunTimeout       = 10 * time.Minute

	defaultGDPMin   = 1000.0
	defaultGDPMax   = 2000.0
	defaultGDPFixed = 1500.0
)

// DefaultFallbackRates is served when every exchange-rate provider fails
var DefaultFallbackRates = map[string]float64{
	"USD": 1.0,
	"NGN": 1600.0,
	"GBP": 0.75,
	"EUR": 0.9,
}

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	FileStorage *FileStorageConfig `yaml:"fileStorage,omitempty"`
	Database    *DatabaseConfig    `yaml:"database,omitempty"`
	Sources     SourcesConfig      `yaml:"sources"`
	Refresh     RefreshConfig      `yaml:"refresh"`
	Summary     SummaryConfig      `yaml:"summary"`
	Telemetry   *telemetry.Config  `yaml:"telemetry,omitempty"`
}

// FileStorageConfig defines where file-mode data is kept
type FileStorageConfig struct {
	// BaseDir holds countries.json and the runs/ status directory
	BaseDir string `yaml:"baseDir"`
}

// SourcesConfig groups the upstream data providers
type SourcesConfig struct {
	Countries CountriesSourceConfig `yaml:"countries"`
	Rates     RatesSourceConfig     `yaml:"rates"`
}

// CountriesSourceConfig configures the country registry fetcher
type CountriesSourceConfig struct {
	URL     string `yaml:"url,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// RatesSourceConfig configures the exchange-rate fetcher chain
type RatesSourceConfig struct {
	Primary   string `yaml:"primary,omitempty"`
	Secondary string `yaml:"secondary,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`

	// Fallback replaces DefaultFallbackRates when set
	Fallback map[string]float64 `yaml:"fallback,omitempty"`

	// DisableFallback turns total provider failure into an upstream error
	DisableFallback bool `yaml:"disableFallback,omitempty"`
}

// RefreshConfig controls the refresh job and its worker pool
type RefreshConfig struct {
	BatchSize  int    `yaml:"batchSize,omitempty"`
	Workers    int    `yaml:"workers,omitempty"`
	QueueSize  int    `yaml:"queueSize,omitempty"`
	Interval   string `yaml:"interval,omitempty"`
	RunTimeout string `yaml:"runTimeout,omitempty"`

	GDPMultiplier GDPMultiplierConfig `yaml:"gdpMultiplier"`
}

// GDPMultiplierConfig selects between the random and the deterministic GDP formula
type GDPMultiplierConfig struct {
	Mode  GDPMode  `yaml:"mode,omitempty"`
	Min   *float64 `yaml:"min,omitempty"`
	Max   *float64 `yaml:"max,omitempty"`
	Value *float64 `yaml:"value,omitempty"`
}

// SummaryConfig configures the summary image artifact
type SummaryConfig struct {
	CacheDir string `yaml:"cacheDir,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the minimum number of connections kept in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from COUNTRY_CACHE_DATABASE_PASSWORD environment variable
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if envPassword := v.GetString("DATABASE_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable",
		EnvPrefix,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// LoadConfig loads and parses configuration from a YAML file.
// With no options it returns the defaults, which select file storage.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	var config Config
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetStorageType returns the configured storage backend.
// A database section takes precedence over file storage.
func (c *Config) GetStorageType() StorageType {
	if c.Database != nil {
		return StorageTypeDatabase
	}
	return StorageTypeFile
}

// GetFileStorageBaseDir returns the base directory for file storage
func (c *Config) GetFileStorageBaseDir() string {
	if c.FileStorage == nil || c.FileStorage.BaseDir == "" {
		return defaultFileStorageBaseDir
	}
	return c.FileStorage.BaseDir
}

// GetCacheDir returns the directory where the summary image is written
func (s *SummaryConfig) GetCacheDir() string {
	if s.CacheDir == "" {
		return defaultSummaryCacheDir
	}
	return s.CacheDir
}

// GetURL returns the countries endpoint
func (c *CountriesSourceConfig) GetURL() string {
	if c.URL == "" {
		return DefaultCountriesURL
	}
	return c.URL
}

// GetTimeout returns the countries request timeout
func (c *CountriesSourceConfig) GetTimeout() time.Duration {
	return parseDurationOr(c.Timeout, defaultCountriesTimeout)
}

// GetPrimary returns the primary rates endpoint
func (r *RatesSourceConfig) GetPrimary() string {
	if r.Primary == "" {
		return DefaultPrimaryRatesURL
	}
	return r.Primary
}

// GetSecondary returns the secondary rates endpoint
func (r *RatesSourceConfig) GetSecondary() string {
	if r.Secondary == "" {
		return DefaultSecondaryRatesURL
	}
	return r.Secondary
}

// GetTimeout returns the per-provider rates request timeout
func (r *RatesSourceConfig) GetTimeout() time.Duration {
	return parseDurationOr(r.Timeout, defaultRatesTimeout)
}

// GetFallbackRates returns the static rate table, or nil when the fallback is disabled
func (r *RatesSourceConfig) GetFallbackRates() map[string]decimal.Decimal {
	if r.DisableFallback {
		return nil
	}
	src := r.Fallback
	if len(src) == 0 {
		src = DefaultFallbackRates
	}
	rates := make(map[string]decimal.Decimal, len(src))
	for code, rate := range src {
		rates[code] = decimal.NewFromFloat(rate)
	}
	return rates
}

// GetBatchSize returns the reconciliation chunk size
func (r *RefreshConfig) GetBatchSize() int {
	if r.BatchSize <= 0 {
		return defaultBatchSize
	}
	return r.BatchSize
}

// GetWorkers returns the number of refresh workers
func (r *RefreshConfig) GetWorkers() int {
	if r.Workers <= 0 {
		return defaultWorkers
	}
	return r.Workers
}

// GetQueueSize returns the capacity of the refresh job queue
func (r *RefreshConfig) GetQueueSize() int {
	if r.QueueSize <= 0 {
		return defaultQueueSize
	}
	return r.QueueSize
}

// GetInterval returns the periodic refresh interval; zero disables scheduling
func (r *RefreshConfig) GetInterval() time.Duration {
	return parseDurationOr(r.Interval, 0)
}

// GetRunTimeout returns the upper bound on a single refresh run
func (r *RefreshConfig) GetRunTimeout() time.Duration {
	return parseDurationOr(r.RunTimeout, defaultRunTimeout)
}

// GetMode returns the GDP multiplier mode, random by default
func (g *GDPMultiplierConfig) GetMode() GDPMode {
	if g.Mode == "" {
		return GDPModeRandom
	}
	return g.Mode
}

// GetRange returns the [min, max) interval used in random mode
func (g *GDPMultiplierConfig) GetRange() (float64, float64) {
	lo, hi := defaultGDPMin, defaultGDPMax
	if g.Min != nil {
		lo = *g.Min
	}
	if g.Max != nil {
		hi = *g.Max
	}
	return lo, hi
}

// GetValue returns the multiplier used in fixed mode
func (g *GDPMultiplierConfig) GetValue() float64 {
	if g.Value == nil {
		return defaultGDPFixed
	}
	return *g.Value
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateDurations(c); err != nil {
		return err
	}

	if err := validateURL("sources.countries.url", c.Sources.Countries.URL); err != nil {
		return err
	}
	if err := validateURL("sources.rates.primary", c.Sources.Rates.Primary); err != nil {
		return err
	}
	if err := validateURL("sources.rates.secondary", c.Sources.Rates.Secondary); err != nil {
		return err
	}

	for code, rate := range c.Sources.Rates.Fallback {
		if rate < 0 {
			return fmt.Errorf("sources.rates.fallback.%s: rate must not be negative", code)
		}
	}

	if c.Refresh.BatchSize < 0 {
		return fmt.Errorf("refresh.batchSize must not be negative")
	}

	if err := validateGDPMultiplier(&c.Refresh.GDPMultiplier); err != nil {
		return err
	}

	if c.Database != nil {
		if err := validateDatabaseConfig(c.Database); err != nil {
			return err
		}
	}

	return c.Telemetry.Validate()
}

func validateDurations(c *Config) error {
	fields := []struct {
		name  string
		value string
	}{
		{"sources.countries.timeout", c.Sources.Countries.Timeout},
		{"sources.rates.timeout", c.Sources.Rates.Timeout},
		{"refresh.interval", c.Refresh.Interval},
		{"refresh.runTimeout", c.Refresh.RunTimeout},
	}
	if c.Database != nil {
		fields = append(fields, struct {
			name  string
			value string
		}{"database.connMaxLifetime", c.Database.ConnMaxLifetime})
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration (e.g., '30s', '1h'): %w", f.name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", f.name)
		}
	}
	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: URL must use http or https", field)
	}
	return nil
}

func validateGDPMultiplier(g *GDPMultiplierConfig) error {
	switch g.GetMode() {
	case GDPModeRandom:
		lo, hi := g.GetRange()
		if lo <= 0 || hi <= lo {
			return fmt.Errorf("refresh.gdpMultiplier: min must be positive and below max (got %v, %v)", lo, hi)
		}
	case GDPModeFixed:
		if g.GetValue() <= 0 {
			return fmt.Errorf("refresh.gdpMultiplier.value must be positive")
		}
	default:
		return fmt.Errorf("refresh.gdpMultiplier.mode must be %q or %q, got %q", GDPModeRandom, GDPModeFixed, g.Mode)
	}
	return nil
}

func validateDatabaseConfig(db *DatabaseConfig) error {
	if db.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if db.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if db.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if db.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	// a refresh holds one pooled connection for its advisory lock
	if db.MaxOpenConns != 0 && db.MaxOpenConns < 2 {
		return fmt.Errorf("database.maxOpenConns must be at least 2, got %d", db.MaxOpenConns)
	}
	return nil
}
