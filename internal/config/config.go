package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Form    FormConfig    `mapstructure:"form"`
	Output  OutputConfig  `mapstructure:"output"`
	R2      R2Config      `mapstructure:"r2"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
}

// ServiceConfig describes the remote foliation service
type ServiceConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	PreviewPath   string `mapstructure:"preview_path"`
	SubmitPath    string `mapstructure:"submit_path"`
	FileField     string `mapstructure:"file_field"`
	PreviewSuffix string `mapstructure:"preview_suffix"`
	Timeout       int    `mapstructure:"timeout"` // seconds, applies to preview requests only
	MaxRetries    int    `mapstructure:"max_retries"`
}

// LimitsConfig holds the size thresholds and UI timings
type LimitsConfig struct {
	HardLimitBytes int64 `mapstructure:"hard_limit_bytes"`
	SoftLimitBytes int64 `mapstructure:"soft_limit_bytes"`
	DebounceMs     int   `mapstructure:"debounce_ms"`
	AdoptDelayMs   int   `mapstructure:"adopt_delay_ms"`
}

// Debounce returns the preview debounce window
func (l LimitsConfig) Debounce() time.Duration {
	return time.Duration(l.DebounceMs) * time.Millisecond
}

// AdoptDelay returns the delay between adopting a file and showing the configuration view
func (l LimitsConfig) AdoptDelay() time.Duration {
	return time.Duration(l.AdoptDelayMs) * time.Millisecond
}

// FormConfig holds the initial values of the foliation fields.
// Values are only read; the application never writes them back.
type FormConfig struct {
	StartNumber string `mapstructure:"start_number"`
	StartPage   string `mapstructure:"start_page"`
	EndPage     string `mapstructure:"end_page"`
	FontSize    string `mapstructure:"font_size"`
	Offset      string `mapstructure:"offset"`
	Corner      string `mapstructure:"corner"`
	Orientation string `mapstructure:"orientation"`
}

// Values returns the defaults keyed by form field name
func (f FormConfig) Values() map[string]string {
	return map[string]string{
		"start_number": f.StartNumber,
		"start_page":   f.StartPage,
		"end_page":     f.EndPage,
		"font_size":    f.FontSize,
		"offset":       f.Offset,
		"corner":       f.Corner,
		"orientation":  f.Orientation,
	}
}

// OutputConfig controls where processed documents end up
type OutputConfig struct {
	Dir           string `mapstructure:"dir"`
	Prefix        string `mapstructure:"prefix"`
	Archive       bool   `mapstructure:"archive"`
	ArchivePrefix string `mapstructure:"archive_prefix"`
	PublicDomain  string `mapstructure:"public_domain"` // optional, for archive links
}

// R2Config holds R2/S3 specific configuration, used by the result archive
type R2Config struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UIConfig holds user interface configuration
type UIConfig struct {
	PreviewWidth       int    `mapstructure:"preview_width"`
	PreviewHeight      int    `mapstructure:"preview_height"`
	ImagePreviewMethod string `mapstructure:"image_preview_method"`
}

// Load loads configuration from multiple sources with priority:
// 1. Command line flags (highest)
// 2. Environment variables
// 3. Configuration file
// 4. Defaults (lowest)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()

	v.BindEnv("service.base_url", "FOLIO_SERVER")
	v.BindEnv("service.timeout", "FOLIO_TIMEOUT")
	v.BindEnv("limits.hard_limit_bytes", "FOLIO_HARD_LIMIT")
	v.BindEnv("limits.soft_limit_bytes", "FOLIO_SOFT_LIMIT")
	v.BindEnv("output.dir", "FOLIO_OUTPUT_DIR")
	v.BindEnv("output.archive", "FOLIO_ARCHIVE")
	v.BindEnv("r2.account_id", "FOLIO_R2_ACCOUNT_ID")
	v.BindEnv("r2.access_key_id", "FOLIO_R2_ACCESS_KEY_ID")
	v.BindEnv("r2.access_key_secret", "FOLIO_R2_ACCESS_KEY_SECRET")
	v.BindEnv("r2.bucket_name", "FOLIO_R2_BUCKET_NAME")
	v.BindEnv("r2.endpoint", "FOLIO_R2_ENDPOINT")
	v.BindEnv("r2.region", "FOLIO_R2_REGION")
	v.BindEnv("log.level", "FOLIO_LOG_LEVEL")
	v.BindEnv("log.format", "FOLIO_LOG_FORMAT")
	v.BindEnv("ui.image_preview_method", "FOLIO_UI_IMAGE_PREVIEW_METHOD")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.folio-cli")
		v.AddConfigPath("/etc/folio-cli/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we can use defaults and env vars
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns the configuration built from defaults only
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// defaults always unmarshal
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Service defaults
	v.SetDefault("service.base_url", "http://localhost:5000")
	v.SetDefault("service.preview_path", "/preview")
	v.SetDefault("service.submit_path", "/")
	v.SetDefault("service.file_field", "pdf_file")
	v.SetDefault("service.preview_suffix", "_prev")
	v.SetDefault("service.timeout", 60)
	v.SetDefault("service.max_retries", 2)

	// Limits
	v.SetDefault("limits.hard_limit_bytes", int64(2)<<30)
	v.SetDefault("limits.soft_limit_bytes", int64(30)<<20)
	v.SetDefault("limits.debounce_ms", 750)
	v.SetDefault("limits.adopt_delay_ms", 500)

	// Form field defaults
	v.SetDefault("form.start_number", "1")
	v.SetDefault("form.start_page", "1")
	v.SetDefault("form.end_page", "")
	v.SetDefault("form.font_size", "16")
	v.SetDefault("form.offset", "1.0")
	v.SetDefault("form.corner", "bottom-right")
	v.SetDefault("form.orientation", "horizontal")

	// Output defaults
	v.SetDefault("output.dir", "")
	v.SetDefault("output.prefix", "Foliado_")
	v.SetDefault("output.archive", false)
	v.SetDefault("output.archive_prefix", "foliados/")
	v.SetDefault("output.public_domain", "")

	// R2 defaults
	v.SetDefault("r2.endpoint", "auto")
	v.SetDefault("r2.region", "auto")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// UI defaults
	v.SetDefault("ui.preview_width", 48)
	v.SetDefault("ui.preview_height", 24)
	v.SetDefault("ui.image_preview_method", "auto")
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.toml"
	}
	return filepath.Join(homeDir, ".folio-cli", "config.toml")
}

// DefaultOutputDir resolves where processed documents are saved when output.dir is empty
func DefaultOutputDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, "Downloads")
}
