// Package driver implements page drivers over several browser automation
// libraries. Every driver follows the same contract: open a browser,
// navigate to a page, wait for basic readiness, type into a few inputs,
// read document.readyState and close the browser.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

const (
	// InputSelector matches the inputs a driver types into.
	InputSelector = "input[type='text'], input[type='email']"
	// FillValue is the literal typed into each matched input.
	FillValue = "test"
	// MaxInputs caps how many matched inputs are filled per page.
	MaxInputs = 3

	readyStateScript = "document.readyState"
)

// Driver loads a single page in a fresh browser.
type Driver interface {
	// Name is the lowercase key used in results and config.
	Name() string
	// DisplayName is used in console output and the chart legend.
	DisplayName() string
	// Load opens a browser, exercises url and closes the browser.
	Load(ctx context.Context, url string) error
}

// Options configures driver construction.
type Options struct {
	// Browser selects the playwright engine: chromium, firefox or webkit.
	Browser string
	// Headless runs browsers without a window where supported.
	Headless bool
	// WebDriverURL connects selenium to a running WebDriver endpoint
	// instead of starting chromedriver.
	WebDriverURL string
	// ChromeDriverPath is the chromedriver binary started per load.
	ChromeDriverPath string
	// ReadyTimeout bounds the wait for the page to become ready.
	ReadyTimeout time.Duration
	// NavigationTimeout bounds a single navigation.
	NavigationTimeout time.Duration

	Logger *slog.Logger
}

// DefaultOptions returns Options matching the stock benchmark setup.
func DefaultOptions() Options {
	return Options{
		Browser:           "chromium",
		Headless:          true,
		ChromeDriverPath:  "chromedriver",
		ReadyTimeout:      10 * time.Second,
		NavigationTimeout: 30 * time.Second,
	}
}

type factory func(Options) Driver

var registry = map[string]factory{
	"selenium":   func(o Options) Driver { return NewSelenium(o) },
	"playwright": func(o Options) Driver { return NewPlaywright(o) },
	"chromedp":   func(o Options) Driver { return NewChromedp(o) },
	"rod":        func(o Options) Driver { return NewRod(o) },
}

// Known returns the supported driver names, sorted.
func Known() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// New builds the named driver.
func New(name string, opts Options) (Driver, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown driver %q (known: %v)", name, Known())
	}

	opts = withLogger(opts)
	opts.Logger = opts.Logger.With(slog.String("driver", name))

	return f(opts), nil
}

func withLogger(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return opts
}

// firstN returns at most n leading elements of s.
func firstN[S ~[]E, E any](s S, n int) S {
	if len(s) > n {
		return s[:n]
	}

	return s
}

// closeWith runs closeFn and folds its error into *err when nothing
// failed before it.
func closeWith(err *error, what string, closeFn func() error) {
	if cerr := closeFn(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close %s: %w", what, cerr)
	}
}
