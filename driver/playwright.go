package driver

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/playwright-community/playwright-go"
)

// Browsers lists the engines playwright can launch.
var Browsers = []string{"chromium", "firefox", "webkit"}

// Playwright drives a browser engine through the playwright protocol.
type Playwright struct {
	opts Options
}

// NewPlaywright creates a playwright-based driver.
func NewPlaywright(opts Options) *Playwright {
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}

	return &Playwright{opts: withLogger(opts)}
}

// Name implements Driver.
func (p *Playwright) Name() string { return "playwright" }

// DisplayName implements Driver.
func (p *Playwright) DisplayName() string { return "Playwright" }

// Load implements Driver.
func (p *Playwright) Load(ctx context.Context, url string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	defer closeWith(&err, "playwright", pw.Stop)

	engine, err := browserType(pw, p.opts.Browser)
	if err != nil {
		return err
	}

	browser, err := engine.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(p.opts.Headless),
	})
	if err != nil {
		return fmt.Errorf("launch %s: %w", p.opts.Browser, err)
	}
	defer closeWith(&err, p.opts.Browser, func() error { return browser.Close() })

	p.opts.Logger.Debug("browser launched",
		slog.String("browser", p.opts.Browser),
		slog.String("version", browser.Version()),
	)

	page, err := browser.NewPage()
	if err != nil {
		return fmt.Errorf("new page: %w", err)
	}

	gotoOpts := playwright.PageGotoOptions{}
	if p.opts.NavigationTimeout > 0 {
		gotoOpts.Timeout = playwright.Float(float64(p.opts.NavigationTimeout.Milliseconds()))
	}

	if _, err := page.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	waitOpts := playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}
	if p.opts.ReadyTimeout > 0 {
		waitOpts.Timeout = playwright.Float(float64(p.opts.ReadyTimeout.Milliseconds()))
	}

	if err := page.WaitForLoadState(waitOpts); err != nil {
		return fmt.Errorf("wait for domcontentloaded: %w", err)
	}

	inputs, err := page.Locator(InputSelector).All()
	if err != nil {
		return fmt.Errorf("find inputs: %w", err)
	}

	for _, in := range firstN(inputs, MaxInputs) {
		_ = in.Fill(FillValue)
	}

	if _, err := page.Evaluate(readyStateScript); err != nil {
		return fmt.Errorf("read ready state: %w", err)
	}

	return nil
}

func browserType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unknown playwright browser %q (known: %v)", name, Browsers)
	}
}

// Install downloads the playwright driver and the given browser engines.
func Install(browsers []string, verbose bool) error {
	for _, b := range browsers {
		if !slices.Contains(Browsers, b) {
			return fmt.Errorf("unknown playwright browser %q (known: %v)", b, Browsers)
		}
	}

	if err := playwright.Install(&playwright.RunOptions{
		Browsers: browsers,
		Verbose:  verbose,
	}); err != nil {
		return fmt.Errorf("install playwright: %w", err)
	}

	return nil
}
