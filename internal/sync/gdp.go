package sync

import (
	"fmt"
	"math/rand/v2"
	gosync "sync"

	"github.com/shopspring/decimal"

	"github.com/stacklok/country-cache-server/internal/config"
	"github.com/stacklok/country-cache-server/internal/service"
)

// GDPEstimator supplies the multiplier used to derive estimated GDP
type GDPEstimator interface {
	// Multiplier returns the multiplier for one country in one run
	Multiplier() decimal.Decimal
}

// randomEstimator draws a uniform multiplier in [min, max)
type randomEstimator struct {
	mu       gosync.Mutex
	rng      *rand.Rand
	min, max float64
}

// NewRandomEstimator creates an estimator drawing from [min, max).
// A nil rng uses a randomly seeded generator.
func NewRandomEstimator(lo, hi float64, rng *rand.Rand) GDPEstimator {
	if rng == nil {
		//nolint:gosec // G404: simulated GDP does not need cryptographic randomness
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &randomEstimator{rng: rng, min: lo, max: hi}
}

func (e *randomEstimator) Multiplier() decimal.Decimal {
	e.mu.Lock()
	f := e.rng.Float64()
	e.mu.Unlock()
	return decimal.NewFromFloat(e.min + f*(e.max-e.min))
}

// fixedEstimator always returns the same multiplier
type fixedEstimator struct {
	value decimal.Decimal
}

// NewFixedEstimator creates a deterministic estimator
func NewFixedEstimator(value float64) GDPEstimator {
	return &fixedEstimator{value: decimal.NewFromFloat(value)}
}

func (e *fixedEstimator) Multiplier() decimal.Decimal {
	return e.value
}

// NewEstimatorFromConfig builds the estimator selected by the refresh configuration
func NewEstimatorFromConfig(cfg *config.GDPMultiplierConfig) (GDPEstimator, error) {
	switch cfg.GetMode() {
	case config.GDPModeRandom:
		lo, hi := cfg.GetRange()
		return NewRandomEstimator(lo, hi, nil), nil
	case config.GDPModeFixed:
		return NewFixedEstimator(cfg.GetValue()), nil
	default:
		return nil, fmt.Errorf("unknown GDP multiplier mode: %s", cfg.Mode)
	}
}

// EstimateGDP computes population * multiplier / rate rounded to two places.
// It returns nil when the rate is zero or negative.
func EstimateGDP(population int64, rate, multiplier decimal.Decimal) *decimal.Decimal {
	if !rate.IsPositive() {
		return nil
	}
	gdp := decimal.NewFromInt(population).
		Mul(multiplier).
		Div(rate).
		Round(service.GDPPlaces)
	return &gdp
}
