// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config captures all run parameters loaded via Viper. It is loaded once
// at startup and treated as immutable afterwards.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"`
	Crawl     CrawlConfig     `mapstructure:"crawl"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SiteConfig holds the upstream site URL templates.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// LoginURL receives the priming GET and the credential POST.
	LoginURL string `mapstructure:"login_url"`
	// TorrentsURL is the bootstrap listing page carrying the pagination marker.
	TorrentsURL string `mapstructure:"torrents_url"`
	// ListingURLTemplate expands to the AJAX listing endpoint with (total, page).
	ListingURLTemplate string `mapstructure:"listing_url_template"`
	// TechnicalURLTemplate expands with the item identifier.
	TechnicalURLTemplate string `mapstructure:"technical_url_template"`
	// FileListURLTemplate expands with the item content hash.
	FileListURLTemplate string `mapstructure:"filelist_url_template"`
	UserAgent           string `mapstructure:"user_agent"`
}

// CrawlConfig governs enumeration bounds and politeness.
type CrawlConfig struct {
	PageScanLimit      int      `mapstructure:"page_scan_limit"`
	ExcludedCategories []string `mapstructure:"excluded_categories"`
	// PolitenessMaxSeconds bounds the uniform pre-request delay [1, max).
	PolitenessMaxSeconds int `mapstructure:"politeness_max_seconds"`
}

// HTTPConfig configures the retry policy of the outbound client.
type HTTPConfig struct {
	MaxAttempts        int `mapstructure:"max_attempts"`
	BackoffBaseSeconds int `mapstructure:"backoff_base_seconds"`
	BackoffMultiplier  int `mapstructure:"backoff_multiplier"`
}

// StorageConfig points at the S3-compatible object store.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	// PublicURLTemplate expands with (bucket, region, key).
	PublicURLTemplate string `mapstructure:"public_url_template"`
}

// FeedConfig describes the published Atom document.
type FeedConfig struct {
	ID          string `mapstructure:"id"`
	Title       string `mapstructure:"title"`
	AuthorName  string `mapstructure:"author_name"`
	AuthorEmail string `mapstructure:"author_email"`
	// Environment qualifies the published object key, feeds/<env>/atom.xml.
	Environment string `mapstructure:"environment"`
}

// Key returns the object key the feed document is published under.
func (f FeedConfig) Key() string {
	return fmt.Sprintf("feeds/%s/atom.xml", f.Environment)
}

// SecretsConfig names the credential secret and an optional .env file.
type SecretsConfig struct {
	Name    string `mapstructure:"name"`
	EnvFile string `mapstructure:"env_file"`
}

// TelemetryConfig configures the pushgateway reporter.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	JobName        string `mapstructure:"job_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ANIMEFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.user_agent", "animefeed/1.0")
	v.SetDefault("crawl.page_scan_limit", 5)
	v.SetDefault("crawl.politeness_max_seconds", 10)
	v.SetDefault("http.max_attempts", 5)
	v.SetDefault("http.backoff_base_seconds", 3)
	v.SetDefault("http.backoff_multiplier", 2)
	v.SetDefault("storage.region", "eu-west-1")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.public_url_template", "https://%s.s3.%s.amazonaws.com/%s")
	v.SetDefault("feed.title", "AnimeTorrents feed")
	v.SetDefault("feed.environment", "production")
	v.SetDefault("secrets.name", "ANIMEFEED")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.job_name", "animefeed")
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if c.Site.LoginURL == "" {
		return fmt.Errorf("site.login_url must be set")
	}
	if c.Site.TorrentsURL == "" {
		return fmt.Errorf("site.torrents_url must be set")
	}
	if c.Site.ListingURLTemplate == "" {
		return fmt.Errorf("site.listing_url_template must be set")
	}
	if c.Crawl.PageScanLimit <= 0 {
		return fmt.Errorf("crawl.page_scan_limit must be > 0")
	}
	// A bound of 1 yields a degenerate zero-length delay window.
	if c.Crawl.PolitenessMaxSeconds <= 1 {
		return fmt.Errorf("crawl.politeness_max_seconds must be > 1")
	}
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}
	if c.HTTP.BackoffBaseSeconds <= 0 {
		return fmt.Errorf("http.backoff_base_seconds must be > 0")
	}
	if c.HTTP.BackoffMultiplier <= 1 {
		return fmt.Errorf("http.backoff_multiplier must be > 1")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket must be set")
	}
	if c.Feed.Environment == "" {
		return fmt.Errorf("feed.environment must be set")
	}
	if c.Telemetry.Enabled && c.Telemetry.PushgatewayURL == "" {
		return fmt.Errorf("telemetry.pushgateway_url must be set when telemetry is enabled")
	}
	return nil
}
