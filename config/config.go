// Package config handles configuration loading for webbench runs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/weiihann/webbench/driver"
	"github.com/weiihann/webbench/pages"
)

// Config holds the settings for a benchmark run.
type Config struct {
	BaseDir           string        `yaml:"base_dir"`
	Pages             []string      `yaml:"pages"`
	Drivers           []string      `yaml:"drivers"`
	Browser           string        `yaml:"browser"`
	Headless          bool          `yaml:"headless"`
	WebDriverURL      string        `yaml:"webdriver_url"`
	ChromeDriverPath  string        `yaml:"chromedriver_path"`
	Output            string        `yaml:"output"`
	ShowChart         bool          `yaml:"show_chart"`
	JSON              bool          `yaml:"json"`
	ReadyTimeout      time.Duration `yaml:"ready_timeout"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	opts := driver.DefaultOptions()

	return Config{
		BaseDir:           ".",
		Pages:             append([]string(nil), pages.Default...),
		Drivers:           []string{"selenium", "playwright"},
		Browser:           opts.Browser,
		Headless:          opts.Headless,
		ChromeDriverPath:  opts.ChromeDriverPath,
		Output:            "comparison_results.png",
		ShowChart:         true,
		ReadyTimeout:      opts.ReadyTimeout,
		NavigationTimeout: opts.NavigationTimeout,
	}
}

// Load builds a Config from defaults, the optional YAML file at path,
// a .env file in the working directory and WEBBENCH_* environment
// variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.BaseDir = getEnv("WEBBENCH_DIR", c.BaseDir)
	c.Browser = getEnv("WEBBENCH_BROWSER", c.Browser)
	c.WebDriverURL = getEnv("WEBBENCH_WEBDRIVER_URL", c.WebDriverURL)
	c.ChromeDriverPath = getEnv("WEBBENCH_CHROMEDRIVER", c.ChromeDriverPath)
	c.Output = getEnv("WEBBENCH_OUTPUT", c.Output)

	if v := os.Getenv("WEBBENCH_PAGES"); v != "" {
		c.Pages = splitList(v)
	}

	if v := os.Getenv("WEBBENCH_DRIVERS"); v != "" {
		c.Drivers = splitList(v)
	}

	if v := os.Getenv("WEBBENCH_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid WEBBENCH_HEADLESS: %w", err)
		}
		c.Headless = b
	}

	if v := os.Getenv("WEBBENCH_READY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid WEBBENCH_READY_TIMEOUT: %w", err)
		}
		c.ReadyTimeout = d
	}

	return nil
}

// Validate checks the driver pair and browser before any browser starts.
func (c *Config) Validate() error {
	if len(c.Drivers) != 2 {
		return fmt.Errorf("exactly two drivers must be compared, got %d (%v)",
			len(c.Drivers), c.Drivers)
	}

	if c.Drivers[0] == c.Drivers[1] {
		return fmt.Errorf("cannot compare driver %q with itself", c.Drivers[0])
	}

	known := driver.Known()
	for _, d := range c.Drivers {
		if !slices.Contains(known, d) {
			return fmt.Errorf("unknown driver %q (known: %v)", d, known)
		}
	}

	if !slices.Contains(driver.Browsers, c.Browser) {
		return fmt.Errorf("unknown browser %q (known: %v)", c.Browser, driver.Browsers)
	}

	if len(c.Pages) == 0 {
		return fmt.Errorf("no pages configured")
	}

	return nil
}

// DriverOptions converts the config into driver options.
func (c *Config) DriverOptions() driver.Options {
	return driver.Options{
		Browser:           c.Browser,
		Headless:          c.Headless,
		WebDriverURL:      c.WebDriverURL,
		ChromeDriverPath:  c.ChromeDriverPath,
		ReadyTimeout:      c.ReadyTimeout,
		NavigationTimeout: c.NavigationTimeout,
	}
}

func (c *Config) String() string {
	webdriver := c.WebDriverURL
	if webdriver == "" {
		webdriver = "(local " + c.ChromeDriverPath + ")"
	}

	return fmt.Sprintf(`Configuration:
  Base dir:        %s
  Pages:           %s
  Drivers:         %s
  Browser:         %s
  Headless:        %t
  WebDriver:       %s
  Output:          %s
  Show chart:      %t
  Ready timeout:   %s
  Nav timeout:     %s`,
		c.BaseDir,
		strings.Join(c.Pages, ", "),
		strings.Join(c.Drivers, " vs "),
		c.Browser,
		c.Headless,
		webdriver,
		c.Output,
		c.ShowChart,
		c.ReadyTimeout,
		c.NavigationTimeout,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
