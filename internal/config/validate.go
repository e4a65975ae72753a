package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Corners and orientations accepted by the foliation service
var (
	ValidCorners      = []string{"bottom-right", "bottom-left", "top-right", "top-left"}
	ValidOrientations = []string{"horizontal", "vertical"}
	ValidImageMethods = []string{"auto", "ansi", "kitty", "iterm2", "sixel", "none"}
)

// Validate validates the configuration and returns an error if invalid
func Validate(config *Config) error {
	if err := validateServiceConfig(&config.Service); err != nil {
		return fmt.Errorf("service config validation failed: %w", err)
	}

	if err := validateLimitsConfig(&config.Limits); err != nil {
		return fmt.Errorf("limits config validation failed: %w", err)
	}

	if err := validateFormConfig(&config.Form); err != nil {
		return fmt.Errorf("form config validation failed: %w", err)
	}

	if err := validateOutputConfig(&config.Output); err != nil {
		return fmt.Errorf("output config validation failed: %w", err)
	}

	// R2 credentials only matter when results are archived
	if config.Output.Archive {
		if err := ValidateR2Config(&config.R2); err != nil {
			return fmt.Errorf("R2 config validation failed: %w", err)
		}
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}

	if err := validateUIConfig(&config.UI); err != nil {
		return fmt.Errorf("ui config validation failed: %w", err)
	}

	return nil
}

func validateServiceConfig(config *ServiceConfig) error {
	if strings.TrimSpace(config.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", config.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https, got: %q", config.BaseURL)
	}

	if !strings.HasPrefix(config.PreviewPath, "/") {
		return fmt.Errorf("preview_path must start with '/', got: %q", config.PreviewPath)
	}
	if !strings.HasPrefix(config.SubmitPath, "/") {
		return fmt.Errorf("submit_path must start with '/', got: %q", config.SubmitPath)
	}

	if strings.TrimSpace(config.FileField) == "" {
		return fmt.Errorf("file_field is required")
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %d", config.Timeout)
	}

	if config.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative, got: %d", config.MaxRetries)
	}

	return nil
}

func validateLimitsConfig(config *LimitsConfig) error {
	if config.HardLimitBytes <= 0 {
		return fmt.Errorf("hard_limit_bytes must be positive, got: %d", config.HardLimitBytes)
	}

	if config.SoftLimitBytes <= 0 {
		return fmt.Errorf("soft_limit_bytes must be positive, got: %d", config.SoftLimitBytes)
	}

	if config.SoftLimitBytes > config.HardLimitBytes {
		return fmt.Errorf("soft_limit_bytes (%d) cannot exceed hard_limit_bytes (%d)",
			config.SoftLimitBytes, config.HardLimitBytes)
	}

	if config.DebounceMs < 0 || config.AdoptDelayMs < 0 {
		return fmt.Errorf("debounce_ms and adopt_delay_ms must be non-negative")
	}

	return nil
}

func validateFormConfig(config *FormConfig) error {
	if !contains(ValidCorners, config.Corner) {
		return fmt.Errorf("invalid corner: %s (valid: %s)", config.Corner, strings.Join(ValidCorners, ", "))
	}

	if !contains(ValidOrientations, config.Orientation) {
		return fmt.Errorf("invalid orientation: %s (valid: %s)", config.Orientation, strings.Join(ValidOrientations, ", "))
	}

	return nil
}

func validateOutputConfig(config *OutputConfig) error {
	if strings.ContainsAny(config.Prefix, `/\`) {
		return fmt.Errorf("prefix cannot contain path separators: %q", config.Prefix)
	}
	return nil
}

// ValidateR2Config validates R2 specific configuration
func ValidateR2Config(config *R2Config) error {
	if strings.TrimSpace(config.AccountID) == "" {
		return fmt.Errorf("account_id is required")
	}

	if strings.TrimSpace(config.AccessKeyID) == "" {
		return fmt.Errorf("access_key_id is required")
	}

	if strings.TrimSpace(config.AccessKeySecret) == "" {
		return fmt.Errorf("access_key_secret is required")
	}

	if strings.TrimSpace(config.BucketName) == "" {
		return fmt.Errorf("bucket_name is required")
	}

	// Validate bucket name format (simplified S3 bucket name rules)
	if !isValidBucketName(config.BucketName) {
		return fmt.Errorf("invalid bucket_name format: %s", config.BucketName)
	}

	return nil
}

// validateLogConfig validates log configuration
func validateLogConfig(config *LogConfig) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	level := strings.ToLower(config.Level)
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error, fatal, panic)", config.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	format := strings.ToLower(config.Format)
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", config.Format)
	}

	return nil
}

func validateUIConfig(config *UIConfig) error {
	if config.PreviewWidth <= 0 || config.PreviewHeight <= 0 {
		return fmt.Errorf("preview_width and preview_height must be positive")
	}

	method := strings.ToLower(config.ImagePreviewMethod)
	if !contains(ValidImageMethods, method) {
		return fmt.Errorf("invalid image_preview_method: %s (valid: %s)",
			config.ImagePreviewMethod, strings.Join(ValidImageMethods, ", "))
	}
	return nil
}

// isValidBucketName checks if the bucket name follows basic S3 naming rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}

	// Must start and end with letter or number
	if !isAlphaNum(name[0]) || !isAlphaNum(name[len(name)-1]) {
		return false
	}

	for i, char := range name {
		if !isAlphaNum(byte(char)) && char != '-' && char != '.' {
			return false
		}

		// Cannot have consecutive periods or period-dash combinations
		if i > 0 {
			prev := name[i-1]
			if char == '.' && (prev == '.' || prev == '-') {
				return false
			}
			if char == '-' && prev == '.' {
				return false
			}
		}
	}

	return true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// isAlphaNum checks if a byte is alphanumeric
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
