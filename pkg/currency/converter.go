package currency

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Converter converts amounts between supported currencies using a rate
// table expressed as units-per-USD. Conversion is a pure, total function:
// it never errors and returns the amount unchanged when either currency
// is unknown, so a stale rates file can never fail a cost request.
//
// The rate table is read-only from the perspective of in-flight requests
// and refreshed out-of-band via SetRates (typically wired to a file
// watcher, see Watcher).
type Converter struct {
	mu    sync.RWMutex
	rates map[string]float64
}

// DefaultRates returns the built-in units-per-USD rate table used when
// no rates file is configured.
func DefaultRates() map[string]float64 {
	return map[string]float64{
		"USD": 1.0,
		"KRW": 1350.0,
		"EUR": 0.92,
		"JPY": 150.0,
		"CNY": 7.2,
	}
}

// NewConverter creates a converter with the given units-per-USD rates.
// A nil or empty map falls back to DefaultRates.
func NewConverter(rates map[string]float64) *Converter {
	if len(rates) == 0 {
		rates = DefaultRates()
	}
	copied := make(map[string]float64, len(rates))
	for code, rate := range rates {
		copied[code] = rate
	}
	copied["USD"] = 1.0
	return &Converter{rates: copied}
}

// Convert converts amount from one currency to another. Identity when
// from == to or when either currency has no known rate.
func (c *Converter) Convert(amount float64, from, to string) float64 {
	if from == to || amount == 0 {
		return amount
	}

	c.mu.RLock()
	fromRate, fromOK := c.rates[from]
	toRate, toOK := c.rates[to]
	c.mu.RUnlock()

	if !fromOK || !toOK || fromRate == 0 {
		return amount
	}

	// Pivot through USD: amount/fromRate is USD, then scale to target.
	return amount / fromRate * toRate
}

// Supported reports whether the currency has a known rate.
func (c *Converter) Supported(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rates[code]
	return ok
}

// Currencies returns the supported currency codes sorted ascending.
func (c *Converter) Currencies() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	codes := make([]string, 0, len(c.rates))
	for code := range c.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// SetRates atomically replaces the rate table. Rates with non-positive
// values are dropped; the USD rate is always pinned to 1.
func (c *Converter) SetRates(rates map[string]float64) {
	copied := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		if rate > 0 {
			copied[code] = rate
		}
	}
	copied["USD"] = 1.0

	c.mu.Lock()
	c.rates = copied
	c.mu.Unlock()
}

// ratesFile is the YAML shape of an exchange-rate file.
type ratesFile struct {
	// Rates maps currency code to units-per-USD.
	Rates map[string]float64 `yaml:"rates"`
}

// LoadRatesFile reads a units-per-USD rate table from a YAML file.
//
// File format:
//
//	rates:
//	  KRW: 1350.0
//	  EUR: 0.92
func LoadRatesFile(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates file %q: %w", path, err)
	}

	var rf ratesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rates file %q: %w", path, err)
	}
	if len(rf.Rates) == 0 {
		return nil, fmt.Errorf("rates file %q contains no rates", path)
	}

	return rf.Rates, nil
}
