package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Gateway drivers.
const (
	DriverPostgres = "postgres"
	DriverFixture  = "fixture"
)

// Config holds the complete application configuration, loadable from
// environment variables (CINV_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (CINV_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Gateway     GatewayConfig
	Invoice     InvoiceConfig
	Images      ImagesConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// GatewayConfig selects where ERP records are read from.
type GatewayConfig struct {
	Driver      string `default:"postgres" usage:"Record gateway: postgres or fixture"`
	FixturePath string `default:"db/seed/records.yaml" usage:"YAML (or .yaml.gz) record fixture for the fixture driver" flag:"fixture-path"`
}

// InvoiceConfig controls how the commercial invoice is assembled and printed.
type InvoiceConfig struct {
	AppDomain    string `default:"system.netsuite.com" usage:"Host logo URLs are resolved against" flag:"app-domain"`
	DateLayout   string `default:"1/2/2006" usage:"Go time layout for printed dates" flag:"date-layout"`
	Timezone     string `default:"UTC" usage:"IANA zone today's date is taken in"`
	Locale       string `default:"en" usage:"Number formatting locale"`
	TemplatePath string `default:"" usage:"Layout template overriding the embedded one" flag:"template-path"`
	BaseURL      string `default:"" usage:"Public base URL of the print endpoint; relative when empty" flag:"base-url"`
}

// ImagesConfig controls logo fetching.
type ImagesConfig struct {
	Timeout time.Duration `default:"10s" usage:"Logo download timeout" flag:"images-timeout"`
}

// RateLimitConfig controls the per-client token bucket limiter.
type RateLimitConfig struct {
	RPS   float64 `default:"5"  usage:"Sustained requests per second per client"`
	Burst int     `default:"20" usage:"Requests a client may burst"`
}

// CORSConfig lists the origins whose pages may call the API, usually the ERP
// account host.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
	MaxAge  int      `default:"86400" usage:"Preflight cache lifetime in seconds" flag:"cors-max-age"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "CINV",
		Files:     []string{"config.yaml", "/etc/cinv/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Gateway.Driver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set CINV_DATABASE_URL or DATABASE_URL")
		}
	case DriverFixture:
		if c.Gateway.FixturePath == "" {
			return errors.New("fixture path is required for the fixture gateway")
		}
	default:
		return errors.Errorf("unknown gateway driver %q", c.Gateway.Driver)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit RPS and burst must be positive")
	}
	if _, err := time.LoadLocation(c.Invoice.Timezone); err != nil {
		return errors.Wrapf(err, "invoice timezone %q", c.Invoice.Timezone)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's CINV_-prefixed configuration.
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
