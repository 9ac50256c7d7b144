package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (GB_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (GB_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SyncSecret  string `usage:"Shared secret for the supplier sync webhook" flag:"sync-secret"`
	Auth        AuthConfig
	Razorpay    RazorpayConfig
	Seller      SellerConfig
	Supplier    SupplierConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// AuthConfig points at the hosted identity provider used to verify bearer
// tokens.
type AuthConfig struct {
	BaseURL string        `usage:"Identity provider base URL" flag:"auth-base-url"`
	APIKey  string        `usage:"Identity provider publishable API key" flag:"auth-api-key"`
	Timeout time.Duration `default:"5s" usage:"Token verification timeout"`
}

// RazorpayConfig holds payment gateway credentials.
type RazorpayConfig struct {
	KeyID     string        `usage:"Razorpay key id" flag:"razorpay-key-id"`
	KeySecret string        `usage:"Razorpay key secret" flag:"razorpay-key-secret"`
	BaseURL   string        `default:"https://api.razorpay.com" usage:"Razorpay API base URL"`
	Timeout   time.Duration `default:"10s" usage:"Gateway request timeout"`
}

// SellerConfig is the invoicing identity printed on PDF invoices.
type SellerConfig struct {
	Name    string `default:"GB Store" usage:"Seller name on invoices"`
	Address string `default:"" usage:"Seller address on invoices"`
	GSTIN   string `default:"" usage:"Seller GSTIN on invoices"`
	Email   string `default:"" usage:"Seller contact email on invoices"`
}

// SupplierConfig lists the upstream catalog feeds. Sources are usually
// provided via the YAML config file.
type SupplierConfig struct {
	Workers int            `default:"8" usage:"Concurrent upserts per sync run"`
	Timeout time.Duration  `default:"2m" usage:"Feed download timeout"`
	Sources []SourceConfig `usage:"Supplier feed sources"`
}

// SourceConfig describes one supplier feed endpoint.
type SourceConfig struct {
	ID      string `usage:"Supplier identifier"`
	FeedURL string `usage:"Feed URL" flag:"feed-url"`
	Token   string `usage:"Bearer token for the feed"`
	Gzipped bool   `usage:"Feed is gzip compressed"`
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

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "GB",
		Files:     []string{"config.yaml", "/etc/gb/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set GB_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL and PORT to the GB_-prefixed configuration.
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
