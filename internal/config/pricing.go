package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PricingConfig holds the operator-tunable pricing knobs: tax rates per
// currency and suggestion heuristics. The engine treats the tax rate as an
// external parameter; it never owns it.
type PricingConfig struct {
	DefaultTaxRate float64            `mapstructure:"defaultTaxRate"`
	TaxRates       map[string]float64 `mapstructure:"taxRates"`
	Suggestion     SuggestionTuning   `mapstructure:"suggestion"`
}

// SuggestionTuning controls the BASE suggestion heuristic.
type SuggestionTuning struct {
	LookbackDays       int     `mapstructure:"lookbackDays"`
	TargetQuotesPerDay float64 `mapstructure:"targetQuotesPerDay"`
	MaxIncreasePercent float64 `mapstructure:"maxIncreasePercent"`
	MaxDecreasePercent float64 `mapstructure:"maxDecreasePercent"`
	ValidityDays       int     `mapstructure:"validityDays"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		DefaultTaxRate: 0.0,
		TaxRates: map[string]float64{
			"EUR": 0.20,
			"USD": 0.0,
		},
		Suggestion: SuggestionTuning{
			LookbackDays:       30,
			TargetQuotesPerDay: 4,
			MaxIncreasePercent: 25,
			MaxDecreasePercent: 15,
			ValidityDays:       7,
		},
	}
}

// TaxRateFor returns the configured tax rate for a currency code.
func (c PricingConfig) TaxRateFor(currency string) float64 {
	if rate, ok := c.TaxRates[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return rate
	}
	return c.DefaultTaxRate
}

// PricingConfigHolder serves the current PricingConfig and hot-reloads it
// when the backing file changes.
type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

func NewPricingConfigHolder() (*PricingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/spotlane/config")
	v.AddConfigPath("/etc/spotlane")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SPOTLANE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	v.SetDefault("pricing.defaultTaxRate", defaults.DefaultTaxRate)
	v.SetDefault("pricing.taxRates", defaults.TaxRates)
	v.SetDefault("pricing.suggestion", defaults.Suggestion)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPricingConfigHolder builds a holder pinned to a fixed config.
// Used by tests and by callers that do not want file watching.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.DefaultTaxRate < 0 {
		return errors.New("pricing.defaultTaxRate cannot be negative")
	}
	for currency, rate := range cfg.TaxRates {
		if rate < 0 {
			return errors.New("pricing.taxRates." + currency + " cannot be negative")
		}
	}
	if cfg.Suggestion.LookbackDays <= 0 {
		return errors.New("pricing.suggestion.lookbackDays must be positive")
	}
	return nil
}
