// Package config loads the engine's runtime configuration. The YAML file
// overrides keyword rule sets, the treasury quote sheet, and service
// settings; loan programs live in separate Hjson files because underwriters
// maintain them by hand and want comments.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"multifamily_underwriting/pkg/core/classify"
	"multifamily_underwriting/pkg/core/loan"
	"multifamily_underwriting/pkg/core/t12"
	"multifamily_underwriting/pkg/core/table"
	"multifamily_underwriting/pkg/models"
)

// =============================================================================
// SERVICE CONFIGURATION
// =============================================================================

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// StoreConfig holds database settings. An empty URL disables persistence;
// DATABASE_URL takes precedence when set.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

// PropertyDefaults fills PropertyInfo fields the caller leaves unset.
type PropertyDefaults struct {
	UnitCount       int    `yaml:"unit_count"`
	PropertyAge     int    `yaml:"property_age"`
	TransactionType string `yaml:"transaction_type"`
}

// RulesConfig overrides the built-in keyword rule sets. Empty sections keep
// the defaults.
type RulesConfig struct {
	RentRollColumns []table.ColumnRule `yaml:"rent_roll_columns"`
	T12Columns      []table.ColumnRule `yaml:"t12_columns"`
	IncomeItems     []t12.CategoryRule `yaml:"income_items"`
	ExpenseItems    []t12.CategoryRule `yaml:"expense_items"`
	Classifier      []classify.Pattern `yaml:"classifier"`
}

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig                  `yaml:"server"`
	Store    StoreConfig                   `yaml:"store"`
	Property PropertyDefaults              `yaml:"property"`
	Rules    RulesConfig                   `yaml:"rules"`
	Treasury map[loan.TreasuryTerm]float64 `yaml:"treasury"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Property: PropertyDefaults{
			UnitCount:       1,
			PropertyAge:     25,
			TransactionType: string(models.TransactionRefinance),
		},
	}
}

// Load reads a YAML config file, layering it over the defaults. A missing
// file is not an error: startup proceeds on defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// RentRollColumnRules returns the configured rent roll column rules, or the
// defaults when none are configured.
func (c *Config) RentRollColumnRules() []table.ColumnRule {
	if len(c.Rules.RentRollColumns) > 0 {
		return c.Rules.RentRollColumns
	}
	return table.DefaultRentRollRules()
}

// T12ColumnRules returns the configured T12 column rules or the defaults.
func (c *Config) T12ColumnRules() []table.ColumnRule {
	if len(c.Rules.T12Columns) > 0 {
		return c.Rules.T12Columns
	}
	return table.DefaultT12Rules()
}

// IncomeRules returns the configured income line-item rules or the defaults.
func (c *Config) IncomeRules() []t12.CategoryRule {
	if len(c.Rules.IncomeItems) > 0 {
		return c.Rules.IncomeItems
	}
	return t12.DefaultIncomeRules()
}

// ExpenseRules returns the configured expense line-item rules or the
// defaults.
func (c *Config) ExpenseRules() []t12.CategoryRule {
	if len(c.Rules.ExpenseItems) > 0 {
		return c.Rules.ExpenseItems
	}
	return t12.DefaultExpenseRules()
}

// ClassifierPatterns returns the configured document patterns or the
// defaults.
func (c *Config) ClassifierPatterns() []classify.Pattern {
	if len(c.Rules.Classifier) > 0 {
		return c.Rules.Classifier
	}
	return classify.DefaultPatterns()
}

// TreasuryCurve returns the configured quote sheet or the default curve.
func (c *Config) TreasuryCurve() loan.TreasuryCurve {
	if len(c.Treasury) > 0 {
		return loan.TreasuryCurve{Rates: c.Treasury}
	}
	return loan.DefaultTreasuryCurve()
}

// PropertyInfo builds a PropertyInfo from the configured defaults.
func (c *Config) PropertyInfo() models.PropertyInfo {
	info := models.PropertyInfo{
		UnitCount:       c.Property.UnitCount,
		PropertyAge:     c.Property.PropertyAge,
		TransactionType: models.TransactionType(c.Property.TransactionType),
	}
	return info.WithDefaults()
}

// DatabaseURL resolves the store connection string. The environment wins so
// deployments never put credentials in the config file.
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return c.Store.DatabaseURL
}
