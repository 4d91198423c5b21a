package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/gigamart/commerce-engine/internal/domain/pricing"
)

// Config holds the complete application configuration, loadable from
// environment variables (GIGAMART_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (GIGAMART_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string `default:"" usage:"Base URL for product thumbnails (e.g. https://cdn.example.com/images)" flag:"image-base-url"`
	CartKey      string `default:"default" usage:"Persistence key for the shared cart" flag:"cart-key"`
	Checkout     CheckoutConfig
	Pricing      PricingConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// CheckoutConfig controls checkout session behaviour.
type CheckoutConfig struct {
	ProcessingDelay time.Duration `default:"1500ms" usage:"Simulated payment processing delay" flag:"processing-delay"`
	SessionTTL      time.Duration `default:"30m" usage:"Idle checkout session lifetime" flag:"session-ttl"`
}

// PricingConfig carries the money knobs as strings so they survive exact
// decimal parsing.
type PricingConfig struct {
	FreeShippingThreshold string `default:"50" usage:"Subtotal above which shipping is free" flag:"free-shipping-threshold"`
	FlatShippingFee       string `default:"9.99" usage:"Flat shipping fee below the threshold" flag:"flat-shipping-fee"`
	TaxRate               string `default:"0.08" usage:"Flat tax rate applied to the subtotal" flag:"tax-rate"`
}

// Parse converts the string knobs into a pricing.Config.
func (p PricingConfig) Parse() (pricing.Config, error) {
	threshold, err := decimal.NewFromString(p.FreeShippingThreshold)
	if err != nil {
		return pricing.Config{}, errors.Wrap(err, "free shipping threshold")
	}
	fee, err := decimal.NewFromString(p.FlatShippingFee)
	if err != nil {
		return pricing.Config{}, errors.Wrap(err, "flat shipping fee")
	}
	rate, err := decimal.NewFromString(p.TaxRate)
	if err != nil {
		return pricing.Config{}, errors.Wrap(err, "tax rate")
	}
	return pricing.Config{
		FreeShippingThreshold: threshold,
		FlatShippingFee:       fee,
		TaxRate:               rate,
	}, nil
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "GIGAMART",
		Files:     []string{"config.yaml", "/etc/gigamart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set GIGAMART_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and
// PORT onto the GIGAMART_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
