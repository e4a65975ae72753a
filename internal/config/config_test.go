package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "/preview", cfg.Service.PreviewPath)
	assert.Equal(t, "pdf_file", cfg.Service.FileField)
	assert.Equal(t, "_prev", cfg.Service.PreviewSuffix)
	assert.Equal(t, int64(2*1024*1024*1024), cfg.Limits.HardLimitBytes)
	assert.Equal(t, int64(30*1024*1024), cfg.Limits.SoftLimitBytes)
	assert.Equal(t, 750*time.Millisecond, cfg.Limits.Debounce())
	assert.Equal(t, 500*time.Millisecond, cfg.Limits.AdoptDelay())
	assert.Equal(t, "Foliado_", cfg.Output.Prefix)
	assert.Equal(t, "1", cfg.Form.StartNumber)
	assert.Equal(t, "bottom-right", cfg.Form.Corner)
	assert.NoError(t, Validate(cfg))
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[service]
base_url = "https://foliador.example.com"

[limits]
debounce_ms = 300

[form]
start_number = "42"
corner = "top-left"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://foliador.example.com", cfg.Service.BaseURL)
	assert.Equal(t, 300*time.Millisecond, cfg.Limits.Debounce())
	assert.Equal(t, "42", cfg.Form.Values()["start_number"])
	assert.Equal(t, "top-left", cfg.Form.Values()["corner"])
	// untouched keys keep their defaults
	assert.Equal(t, "horizontal", cfg.Form.Orientation)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FOLIO_SERVER", "http://10.0.0.2:8080")
	t.Setenv("FOLIO_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8080", cfg.Service.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"missing base url", func(c *Config) { c.Service.BaseURL = "" }, "base_url is required"},
		{"bad scheme", func(c *Config) { c.Service.BaseURL = "ftp://host" }, "http or https"},
		{"preview path", func(c *Config) { c.Service.PreviewPath = "preview" }, "preview_path"},
		{"soft above hard", func(c *Config) { c.Limits.SoftLimitBytes = c.Limits.HardLimitBytes + 1 }, "cannot exceed"},
		{"bad corner", func(c *Config) { c.Form.Corner = "middle" }, "invalid corner"},
		{"bad orientation", func(c *Config) { c.Form.Orientation = "diagonal" }, "invalid orientation"},
		{"prefix with slash", func(c *Config) { c.Output.Prefix = "a/b" }, "path separators"},
		{"archive without credentials", func(c *Config) { c.Output.Archive = true }, "R2 config validation failed"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"bad image method", func(c *Config) { c.UI.ImagePreviewMethod = "braille" }, "invalid image_preview_method"},
		{"zero preview width", func(c *Config) { c.UI.PreviewWidth = 0 }, "preview_width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateR2Config_BucketName(t *testing.T) {
	r2 := R2Config{AccountID: "acc", AccessKeyID: "key", AccessKeySecret: "secret"}

	r2.BucketName = "folio-results"
	assert.NoError(t, ValidateR2Config(&r2))

	r2.BucketName = "ab"
	assert.Error(t, ValidateR2Config(&r2))

	r2.BucketName = "bad..name"
	assert.Error(t, ValidateR2Config(&r2))
}
