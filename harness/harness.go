package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/weiihann/webbench/driver"
	"github.com/weiihann/webbench/pages"
)

const ruleWidth = 60

// Runner loads every page with every driver, one at a time.
type Runner struct {
	Drivers []driver.Driver
	BaseDir string
	Out     io.Writer
	Logger  *slog.Logger

	now func() time.Time
}

// NewRunner creates a Runner writing progress lines to out.
func NewRunner(
	drivers []driver.Driver,
	baseDir string,
	out io.Writer,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		Drivers: drivers,
		BaseDir: baseDir,
		Out:     out,
		Logger:  logger,
		now:     time.Now,
	}
}

// Run benchmarks each page in order. A failing driver or a missing page
// never aborts the run; only context cancellation does.
func (r *Runner) Run(ctx context.Context, id string, pageNames []string) (*Results, error) {
	infos := make([]DriverInfo, len(r.Drivers))
	titles := make([]string, len(r.Drivers))

	for i, d := range r.Drivers {
		infos[i] = DriverInfo{Name: d.Name(), DisplayName: d.DisplayName()}
		titles[i] = d.DisplayName()
	}

	results := NewResults(id, infos)
	results.StartedAt = r.now()

	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(r.Out, rule)
	fmt.Fprintf(r.Out, "%s Performance Comparison\n", strings.Join(titles, " vs "))
	fmt.Fprintf(r.Out, "Testing %d pages\n", len(pageNames))
	fmt.Fprintln(r.Out, rule)

	for _, name := range pageNames {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("run interrupted: %w", err)
		}

		page, err := pages.Resolve(r.BaseDir, name)
		if err != nil {
			return results, err
		}

		exists, err := page.Exists()
		if err != nil {
			r.Logger.WarnContext(ctx, "cannot stat page",
				slog.String("page", name),
				slog.String("error", err.Error()),
			)
		}

		if !exists {
			fmt.Fprintf(r.Out, "\nSkipping %s - file not found\n", name)
			results.Skipped = append(results.Skipped, name)

			continue
		}

		results.Pages = append(results.Pages, name)

		fmt.Fprintf(r.Out, "\nTesting: %s\n", name)
		fmt.Fprintln(r.Out, strings.Repeat("-", 40))

		for _, d := range r.Drivers {
			o := r.timeLoad(ctx, d, page)
			results.Record(d.Name(), name, o)

			if o.OK() {
				fmt.Fprintf(r.Out, "  %-11s %.3fs\n", d.DisplayName()+":", o.Elapsed.Seconds())
			} else {
				fmt.Fprintf(r.Out, "  %-11s FAILED - %s\n", d.DisplayName()+":", o.Err)
			}
		}

		if w, ok := Winner(results, name); ok {
			fmt.Fprintf(r.Out, "  %-11s %s (by %.3fs)\n", "Winner:", w.DisplayName, w.Margin.Seconds())
		}
	}

	return results, nil
}

func (r *Runner) timeLoad(ctx context.Context, d driver.Driver, page pages.Page) Outcome {
	logger := r.Logger.With(
		slog.String("driver", d.Name()),
		slog.String("page", page.Name),
	)

	logger.DebugContext(ctx, "loading page", slog.String("url", page.URL))

	start := r.now()
	err := d.Load(ctx, page.URL)
	elapsed := r.now().Sub(start)

	if err != nil {
		logger.WarnContext(ctx, "page load failed",
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)

		return Outcome{Err: err.Error()}
	}

	logger.InfoContext(ctx, "page loaded", slog.Duration("elapsed", elapsed))

	return Outcome{Elapsed: elapsed}
}

// PageWinner is the fastest driver on a page and its lead over the
// slowest one.
type PageWinner struct {
	DriverInfo
	Margin time.Duration
}

// Winner picks the fastest driver on page. It only reports a winner when
// every driver succeeded with a non-zero duration; ties go to the driver
// listed first.
func Winner(results *Results, page string) (PageWinner, bool) {
	if len(results.Drivers) < 2 {
		return PageWinner{}, false
	}

	var (
		best    PageWinner
		fastest time.Duration
		slowest time.Duration
	)

	for i, d := range results.Drivers {
		elapsed, ok := results.Elapsed(d.Name, page)
		if !ok || elapsed <= 0 {
			return PageWinner{}, false
		}

		if i == 0 || elapsed < fastest {
			fastest = elapsed
			best.DriverInfo = d
		}

		if elapsed > slowest {
			slowest = elapsed
		}
	}

	best.Margin = slowest - fastest

	return best, true
}
