package reviewcms

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/reviewcms/query"
)

// SiteConfig holds all configuration for a reviewcms server.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Indie Gamer")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:1337")
	Description string `mapstructure:"description"` // Feed description

	Addr         string `mapstructure:"addr"`          // Listen address (default ":1337")
	DatabasePath string `mapstructure:"database_path"` // SQLite path (default "data/reviews.db")
	SeedPath     string `mapstructure:"seed_path"`     // JSON/YAML records imported into an empty store
	StaticDir    string `mapstructure:"static_dir"`    // Root for uploaded files (default "public")
	UploadPrefix string `mapstructure:"upload_prefix"` // Prefix joined with image locators (default "uploads/")

	AdminPassword string `mapstructure:"admin_password"` // Required for the admin endpoints
	SessionSecret string `mapstructure:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	CacheTTL     time.Duration `mapstructure:"cache_ttl"`      // Record snapshot TTL (default 5min)
	APIRateLimit float64       `mapstructure:"api_rate_limit"` // Requests per second per IP on /api (default 20)

	LogLevel  string `mapstructure:"log_level"`  // debug, info, warn, error (default "info")
	LogFormat string `mapstructure:"log_format"` // json or console (default "json")

	FilterMode      string `mapstructure:"filter_mode"`      // "any" (default) or "all"
	MismatchMode    string `mapstructure:"mismatch_mode"`    // "nomatch" (default) or "fail"
	DirectionalText bool   `mapstructure:"directional_text"` // Apply sort direction to text keys
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Indie Gamer"
	}
	if c.URL == "" {
		c.URL = "http://localhost:1337"
	}
	if c.Addr == "" {
		c.Addr = ":1337"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/reviews.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.UploadPrefix == "" {
		c.UploadPrefix = query.DefaultUploadPrefix
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.APIRateLimit == 0 {
		c.APIRateLimit = 20
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.FilterMode == "" {
		c.FilterMode = "any"
	}
	if c.MismatchMode == "" {
		c.MismatchMode = "nomatch"
	}
}

// EngineOptions translates the policy settings into query engine options.
func (c SiteConfig) EngineOptions() ([]query.Option, error) {
	opts := []query.Option{query.WithUploadPrefix(c.UploadPrefix)}
	switch strings.ToLower(c.FilterMode) {
	case "", "any":
	case "all":
		opts = append(opts, query.WithComposition(query.AllConditions))
	default:
		return nil, fmt.Errorf("reviewcms: unknown filter mode %q", c.FilterMode)
	}
	switch strings.ToLower(c.MismatchMode) {
	case "", "nomatch":
	case "fail":
		opts = append(opts, query.WithMismatchPolicy(query.MismatchFail))
	default:
		return nil, fmt.Errorf("reviewcms: unknown mismatch mode %q", c.MismatchMode)
	}
	if c.DirectionalText {
		opts = append(opts, query.WithDirectionalText(true))
	}
	return opts, nil
}

// LoadConfig reads reviewcms.yaml (or the file named by configFile) when
// present, then overlays environment variables named prefix + upper-cased key,
// e.g. REVIEWCMS_DATABASE_PATH.
func LoadConfig(prefix, configFile string) (SiteConfig, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("reviewcms")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("reviewcms: read config: %w", err)
		}
	}

	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return SiteConfig{}, fmt.Errorf("reviewcms: bind %s: %w", key, err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("reviewcms: decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

var configKeys = []string{
	"name", "url", "description",
	"addr", "database_path", "seed_path", "static_dir", "upload_prefix",
	"admin_password", "session_secret", "cookie_secure",
	"cache_ttl", "api_rate_limit",
	"log_level", "log_format",
	"filter_mode", "mismatch_mode", "directional_text",
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory uploaded images are stored under.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLogger replaces the logger built from LogLevel and LogFormat.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithEngine replaces the query engine built from the policy settings.
func WithEngine(e *query.Engine) Option {
	return func(a *App) {
		a.Engine = e
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
