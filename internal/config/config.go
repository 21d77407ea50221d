// Package config loads formmap settings from a YAML file, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName names the config and data directories
const AppName = "formmap"

// EnvPrefix prefixes environment overrides, e.g. FORMMAP_CRAWL_MAX_PAGES
const EnvPrefix = "FORMMAP"

// ErrMissingCredentials is returned when the target URL or credentials are unset
var ErrMissingCredentials = errors.New("missing target credentials")

// Output formats
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config holds every formmap setting
type Config struct {
	Target  TargetConfig  `mapstructure:"target" yaml:"target"`
	Crawl   CrawlConfig   `mapstructure:"crawl" yaml:"crawl"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
}

// TargetConfig identifies the application and account to crawl
type TargetConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"-"`
}

// CrawlConfig bounds the crawl
type CrawlConfig struct {
	MaxPages          int           `mapstructure:"max_pages" yaml:"max_pages"`
	InterPageDelay    time.Duration `mapstructure:"inter_page_delay" yaml:"inter_page_delay"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	LinksPerPage      int           `mapstructure:"links_per_page" yaml:"links_per_page"`
}

// BrowserConfig holds settings for the Chromium instance
type BrowserConfig struct {
	Headless   bool          `mapstructure:"headless" yaml:"headless"`
	SlowMotion time.Duration `mapstructure:"slow_motion" yaml:"slow_motion"`
	Width      int           `mapstructure:"width" yaml:"width"`
	Height     int           `mapstructure:"height" yaml:"height"`
	Bin        string        `mapstructure:"bin" yaml:"bin"`
	ProfileDir string        `mapstructure:"profile_dir" yaml:"profile_dir"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// LoggerConfig holds all the configuration for the logger
type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// OutputConfig controls where the catalog is written
type OutputConfig struct {
	Path   string `mapstructure:"path" yaml:"path"`
	Format string `mapstructure:"format" yaml:"format"`
}

// StoreConfig controls the run history database
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// SetDefaults initializes default values for every setting
func SetDefaults(v *viper.Viper) {
	v.SetDefault("crawl.max_pages", 10)
	v.SetDefault("crawl.inter_page_delay", "2s")
	v.SetDefault("crawl.navigation_timeout", "45s")
	v.SetDefault("crawl.links_per_page", 5)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_motion", "100ms")
	v.SetDefault("browser.width", 1920)
	v.SetDefault("browser.height", 1080)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.profile_dir", "")
	v.SetDefault("browser.user_agent", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_file", "formmap.log")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)

	v.SetDefault("output.path", "form_elements.json")
	v.SetDefault("output.format", FormatJSON)

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.dir", "")

	v.SetDefault("target.url", "")
	v.SetDefault("target.username", "")
	v.SetDefault("target.password", "")
}

// Load reads the config file into v. An empty path searches the working
// directory and the XDG config directory; a missing file is not an error then.
func Load(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// NewConfigFromViper builds a validated Config from v
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// The short names win over the legacy ones when both are set
	_ = v.BindEnv("target.url", EnvPrefix+"_URL", "WORKDAY_URL")
	_ = v.BindEnv("target.username", EnvPrefix+"_USERNAME", "WORKDAY_USERNAME")
	_ = v.BindEnv("target.password", EnvPrefix+"_PASSWORD", "WORKDAY_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values. Credentials are
// checked separately by TargetConfig.Validate since not every command needs them.
func (c *Config) Validate() error {
	if c.Crawl.MaxPages <= 0 {
		return fmt.Errorf("crawl.max_pages must be a positive integer")
	}
	if c.Crawl.LinksPerPage <= 0 {
		return fmt.Errorf("crawl.links_per_page must be a positive integer")
	}
	if c.Crawl.InterPageDelay < 0 {
		return fmt.Errorf("crawl.inter_page_delay must not be negative")
	}
	if c.Crawl.NavigationTimeout <= 0 {
		return fmt.Errorf("crawl.navigation_timeout must be a positive duration")
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("browser.width and browser.height must be positive")
	}
	switch c.Output.Format {
	case FormatJSON, FormatMarkdown:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatJSON, FormatMarkdown, c.Output.Format)
	}
	return nil
}

// Validate reports which of url, username and password is unset
func (t TargetConfig) Validate() error {
	var missing []string
	if t.URL == "" {
		missing = append(missing, "target.url")
	}
	if t.Username == "" {
		missing = append(missing, "target.username")
	}
	if t.Password == "" {
		missing = append(missing, "target.password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// ConfigDir returns the XDG config directory for formmap
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir returns the XDG data directory for formmap
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StoreDir returns the configured history directory, defaulting to DataDir
func (c *Config) StoreDir() string {
	if c.Store.Dir != "" {
		return c.Store.Dir
	}
	return DataDir()
}
