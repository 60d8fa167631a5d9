package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML duration strings like "30m" or "1h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port        string `yaml:"port"`
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"server"`
	Pricing struct {
		// APIURL is the pricing endpoint the client core calls. It
		// defaults to this server's own address, matching the deployed
		// web/mobile clients.
		APIURL        string   `yaml:"api_url"`
		CheckInterval Duration `yaml:"check_interval"`
		MinDelay      Duration `yaml:"min_delay"`
		CacheTTL      Duration `yaml:"cache_ttl"`
	} `yaml:"pricing"`
	Amadeus struct {
		BaseURL      string `yaml:"base_url"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
	} `yaml:"amadeus"`
	Stripe struct {
		PriceID string `yaml:"price_id"`
	} `yaml:"stripe"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
		// URL switches persistence to Postgres when set.
		URL string `yaml:"url"`
	} `yaml:"database"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Load reads config from a YAML file, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.Server.FrontendURL = v
	}
	if v := os.Getenv("PRICING_API_URL"); v != "" {
		cfg.Pricing.APIURL = v
	}
	if v := os.Getenv("AMADEUS_BASE_URL"); v != "" {
		cfg.Amadeus.BaseURL = v
	}
	if v := os.Getenv("AMADEUS_CLIENT_ID"); v != "" {
		cfg.Amadeus.ClientID = v
	}
	if v := os.Getenv("AMADEUS_CLIENT_SECRET"); v != "" {
		cfg.Amadeus.ClientSecret = v
	}
	if v := os.Getenv("STRIPE_PRICE_ID"); v != "" {
		cfg.Stripe.PriceID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}

	// Defaults
	if cfg.Server.Port == "" {
		cfg.Server.Port = "3001"
	}
	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = "http://localhost:3000"
	}
	if cfg.Pricing.APIURL == "" {
		cfg.Pricing.APIURL = "http://localhost:" + cfg.Server.Port
	}
	if cfg.Pricing.CheckInterval == 0 {
		cfg.Pricing.CheckInterval = Duration(time.Hour)
	}
	if cfg.Pricing.MinDelay == 0 {
		cfg.Pricing.MinDelay = Duration(time.Second)
	}
	if cfg.Pricing.CacheTTL == 0 {
		cfg.Pricing.CacheTTL = Duration(time.Hour)
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/travelmate.db"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "travelmate-secret-key"
	}

	return cfg, nil
}

// Validate checks fields required to reach the external pricing and
// billing providers. The server still starts without them; pricing
// degrades to null entries and billing endpoints return errors.
func (c *Config) Validate() []string {
	var warnings []string
	if c.Amadeus.ClientID == "" || c.Amadeus.ClientSecret == "" {
		warnings = append(warnings, "amadeus credentials not set; all price lookups will return null")
	}
	if os.Getenv("STRIPE_SECRET_KEY") == "" {
		warnings = append(warnings, "STRIPE_SECRET_KEY not set; subscription endpoints will fail")
	}
	if c.Stripe.PriceID == "" {
		warnings = append(warnings, "stripe price_id not set; checkout sessions will fail")
	}
	return warnings
}
