package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.BaseDir)
	assert.Len(t, cfg.Pages, 10)
	assert.Equal(t, []string{"selenium", "playwright"}, cfg.Drivers)
	assert.Equal(t, "chromium", cfg.Browser)
	assert.True(t, cfg.Headless)
	assert.True(t, cfg.ShowChart)
	assert.Equal(t, "comparison_results.png", cfg.Output)
	assert.Equal(t, 10*time.Second, cfg.ReadyTimeout)
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "webbench.yaml", `
base_dir: site
pages: [index.html, register.html]
drivers: [chromedp, rod]
browser: firefox
headless: false
ready_timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "site", cfg.BaseDir)
	assert.Equal(t, []string{"index.html", "register.html"}, cfg.Pages)
	assert.Equal(t, []string{"chromedp", "rod"}, cfg.Drivers)
	assert.Equal(t, "firefox", cfg.Browser)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 5*time.Second, cfg.ReadyTimeout)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "webbench.yaml", "browser: firefox\n")
	writeFile(t, dir, ".env", "WEBBENCH_WEBDRIVER_URL=http://localhost:4444/wd/hub\n")
	t.Cleanup(func() { os.Unsetenv("WEBBENCH_WEBDRIVER_URL") })

	t.Setenv("WEBBENCH_BROWSER", "webkit")
	t.Setenv("WEBBENCH_PAGES", "a.html, b.html,,")
	t.Setenv("WEBBENCH_HEADLESS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "webkit", cfg.Browser)
	assert.Equal(t, []string{"a.html", "b.html"}, cfg.Pages)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "http://localhost:4444/wd/hub", cfg.WebDriverURL)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "pages: [unterminated\n")
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("WEBBENCH_HEADLESS", "sometimes")
	_, err = Load("")
	assert.ErrorContains(t, err, "WEBBENCH_HEADLESS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"one driver", func(c *Config) { c.Drivers = []string{"selenium"} }, "exactly two"},
		{"same driver", func(c *Config) { c.Drivers = []string{"rod", "rod"} }, "itself"},
		{"unknown driver", func(c *Config) { c.Drivers = []string{"selenium", "lynx"} }, "lynx"},
		{"unknown browser", func(c *Config) { c.Browser = "opera" }, "opera"},
		{"no pages", func(c *Config) { c.Pages = nil }, "no pages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDriverOptions(t *testing.T) {
	cfg := Default()
	cfg.WebDriverURL = "http://grid:4444"

	opts := cfg.DriverOptions()
	assert.Equal(t, "http://grid:4444", opts.WebDriverURL)
	assert.Equal(t, cfg.ReadyTimeout, opts.ReadyTimeout)
	assert.Equal(t, "chromium", opts.Browser)
}
