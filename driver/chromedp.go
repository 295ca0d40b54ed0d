package driver

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// Chromedp drives Chrome directly over the DevTools protocol.
type Chromedp struct {
	opts Options
}

// NewChromedp creates a chromedp-based driver.
func NewChromedp(opts Options) *Chromedp {
	return &Chromedp{opts: withLogger(opts)}
}

// Name implements Driver.
func (c *Chromedp) Name() string { return "chromedp" }

// DisplayName implements Driver.
func (c *Chromedp) DisplayName() string { return "Chromedp" }

// Load implements Driver.
func (c *Chromedp) Load(ctx context.Context, url string) (err error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.opts.Headless),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	defer closeWith(&err, "chrome", func() error { return chromedp.Cancel(tabCtx) })

	navCtx := tabCtx
	if c.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(tabCtx, c.opts.NavigationTimeout)
		defer cancel()
	}

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	readyCtx := tabCtx
	if c.opts.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		readyCtx, cancel = context.WithTimeout(tabCtx, c.opts.ReadyTimeout)
		defer cancel()
	}

	if err := chromedp.Run(readyCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for body: %w", err)
	}

	var inputs []*cdp.Node
	if err := chromedp.Run(tabCtx,
		chromedp.Nodes(InputSelector, &inputs, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return fmt.Errorf("find inputs: %w", err)
	}

	for _, in := range firstN(inputs, MaxInputs) {
		_ = chromedp.Run(tabCtx,
			chromedp.SendKeys([]cdp.NodeID{in.NodeID}, FillValue, chromedp.ByNodeID),
		)
	}

	var state string
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(readyStateScript, &state)); err != nil {
		return fmt.Errorf("read ready state: %w", err)
	}

	return nil
}
