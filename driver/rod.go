package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Rod drives Chrome through go-rod.
type Rod struct {
	opts Options
}

// NewRod creates a rod-based driver.
func NewRod(opts Options) *Rod {
	return &Rod{opts: withLogger(opts)}
}

// Name implements Driver.
func (r *Rod) Name() string { return "rod" }

// DisplayName implements Driver.
func (r *Rod) DisplayName() string { return "Rod" }

// Load implements Driver.
func (r *Rod) Load(ctx context.Context, url string) (err error) {
	l := launcher.New().Context(ctx).Headless(r.opts.Headless)
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	r.opts.Logger.Debug("chrome launched", slog.String("control_url", controlURL))

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()

		return fmt.Errorf("connect chrome: %w", err)
	}
	defer closeWith(&err, "chrome", browser.Close)

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("new page: %w", err)
	}

	nav := page
	if r.opts.NavigationTimeout > 0 {
		nav = page.Timeout(r.opts.NavigationTimeout)
	}

	if err := nav.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	ready := page
	if r.opts.ReadyTimeout > 0 {
		ready = page.Timeout(r.opts.ReadyTimeout)
	}

	if err := ready.WaitLoad(); err != nil {
		return fmt.Errorf("wait for load: %w", err)
	}

	inputs, err := page.Elements(InputSelector)
	if err != nil {
		return fmt.Errorf("find inputs: %w", err)
	}

	for _, in := range firstN(inputs, MaxInputs) {
		_ = in.Input(FillValue)
	}

	if _, err := page.Eval(`() => ` + readyStateScript); err != nil {
		return fmt.Errorf("read ready state: %w", err)
	}

	return nil
}
