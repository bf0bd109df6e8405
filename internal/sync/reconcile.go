package sync

import (
	"strings"
	"time"

	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/sources"
)

// chunkResult partitions one chunk of fetched countries
type chunkResult struct {
	toInsert []*service.Country
	toUpdate []*service.Country
	skipped  int
}

// reconcileChunk matches fetched countries against the existing snapshot.
//
// Existing records are mutated in place and queued for update once. New names are
// queued for insert; a name repeated within the chunk collapses onto the record
// queued first, with the later entry's fields winning. The caller must add
// inserted records to existing before reconciling the next chunk.
func reconcileChunk(
	chunk []sources.CountryPayload,
	rates *sources.RateTable,
	existing map[string]*service.Country,
	refreshedAt time.Time,
	estimator GDPEstimator,
) chunkResult {
	var res chunkResult
	pending := make(map[string]*service.Country)
	queuedUpdate := make(map[string]bool)

	for i := range chunk {
		item := &chunk[i]
		name := strings.TrimSpace(item.Name)
		if name == "" {
			res.skipped++
			continue
		}
		key := service.NameKey(name)

		if current, ok := existing[key]; ok {
			applyPayload(current, item, rates, refreshedAt, estimator)
			if !queuedUpdate[key] {
				queuedUpdate[key] = true
				res.toUpdate = append(res.toUpdate, current)
			}
			continue
		}

		if queued, ok := pending[key]; ok {
			queued.Name = name
			applyPayload(queued, item, rates, refreshedAt, estimator)
			continue
		}

		country := &service.Country{Name: name}
		applyPayload(country, item, rates, refreshedAt, estimator)
		pending[key] = country
		res.toInsert = append(res.toInsert, country)
	}

	return res
}

// applyPayload overwrites the refreshable fields of c from a fetched entry
func applyPayload(
	c *service.Country,
	item *sources.CountryPayload,
	rates *sources.RateTable,
	refreshedAt time.Time,
	estimator GDPEstimator,
) {
	c.Capital = nonEmpty(item.Capital)
	c.Region = nonEmpty(item.Region)
	c.FlagURL = nonEmpty(item.Flag)

	c.Population = 0
	if item.Population != nil {
		c.Population = *item.Population
	}

	c.CurrencyCode = nil
	c.ExchangeRate = nil
	c.EstimatedGDP = nil
	if code := item.CurrencyCode(); code != nil {
		cc := *code
		c.CurrencyCode = &cc
		if rate, ok := rates.Lookup(cc); ok {
			r := rate.Round(service.ExchangeRatePlaces)
			c.ExchangeRate = &r
			c.EstimatedGDP = EstimateGDP(c.Population, rate, estimator.Multiplier())
		}
	}

	c.LastRefreshedAt = refreshedAt
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	if strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

// chunks splits items into consecutive slices of at most size elements
func chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
