package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ExchangeRatePlaces is the number of decimal places stored for exchange rates
	ExchangeRatePlaces = 6
	// GDPPlaces is the number of decimal places stored for estimated GDP
	GDPPlaces = 2
)

// Country is a cached country record
type Country struct {
	ID              int64
	Name            string
	Capital         *string
	Region          *string
	Population      int64
	CurrencyCode    *string
	ExchangeRate    *decimal.Decimal
	EstimatedGDP    *decimal.Decimal
	FlagURL         *string
	LastRefreshedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Key returns the case-insensitive identity of the country
func (c *Country) Key() string {
	return NameKey(c.Name)
}

// NameKey normalizes a country name into its identity key
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Clone returns a deep copy of the record
func (c *Country) Clone() *Country {
	if c == nil {
		return nil
	}
	out := *c
	out.Capital = clonePtr(c.Capital)
	out.Region = clonePtr(c.Region)
	out.CurrencyCode = clonePtr(c.CurrencyCode)
	out.ExchangeRate = clonePtr(c.ExchangeRate)
	out.EstimatedGDP = clonePtr(c.EstimatedGDP)
	out.FlagURL = clonePtr(c.FlagURL)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type countryJSON struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Capital         *string   `json:"capital"`
	Region          *string   `json:"region"`
	Population      int64     `json:"population"`
	CurrencyCode    *string   `json:"currency_code"`
	ExchangeRate    *string   `json:"exchange_rate"`
	EstimatedGDP    *string   `json:"estimated_gdp"`
	FlagURL         *string   `json:"flag_url"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// MarshalJSON renders decimals as fixed-precision strings
func (c *Country) MarshalJSON() ([]byte, error) {
	return json.Marshal(countryJSON{
		ID:              c.ID,
		Name:            c.Name,
		Capital:         c.Capital,
		Region:          c.Region,
		Population:      c.Population,
		CurrencyCode:    c.CurrencyCode,
		ExchangeRate:    fixed(c.ExchangeRate, ExchangeRatePlaces),
		EstimatedGDP:    fixed(c.EstimatedGDP, GDPPlaces),
		FlagURL:         c.FlagURL,
		LastRefreshedAt: c.LastRefreshedAt.UTC(),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (c *Country) UnmarshalJSON(data []byte) error {
	var raw countryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rate, err := parseDecimal(raw.ExchangeRate)
	if err != nil {
		return err
	}
	gdp, err := parseDecimal(raw.EstimatedGDP)
	if err != nil {
		return err
	}
	*c = Country{
		ID:              raw.ID,
		Name:            raw.Name,
		Capital:         raw.Capital,
		Region:          raw.Region,
		Population:      raw.Population,
		CurrencyCode:    raw.CurrencyCode,
		ExchangeRate:    rate,
		EstimatedGDP:    gdp,
		FlagURL:         raw.FlagURL,
		LastRefreshedAt: raw.LastRefreshedAt,
	}
	return nil
}

func fixed(d *decimal.Decimal, places int32) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(places)
	return &s
}

func parseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
