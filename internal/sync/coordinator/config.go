package coordinator

import (
	"time"

	"github.com/stacklok/country-cache-server/internal/config"
)

// Config sizes the worker pool and sets the run schedule
type Config struct {
	// Workers is the number of goroutines executing refresh jobs
	Workers int
	// QueueSize is the capacity of the pending job queue
	QueueSize int
	// Interval triggers a refresh periodically; zero disables the schedule
	Interval time.Duration
	// RunTimeout bounds a single run
	RunTimeout time.Duration
}

// NewConfig reads the coordinator settings from the refresh configuration
func NewConfig(refresh *config.RefreshConfig) Config {
	return Config{
		Workers:    refresh.GetWorkers(),
		QueueSize:  refresh.GetQueueSize(),
		Interval:   refresh.GetInterval(),
		RunTimeout: refresh.GetRunTimeout(),
	}
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = 10 * time.Minute
	}
	return c
}
