package harness

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/weiihann/webbench/driver"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeDriver advances the clock by a per-page duration instead of
// launching a browser.
type fakeDriver struct {
	name    string
	display string
	clock   *fakeClock
	cost    map[string]time.Duration
	fail    map[string]error
	loaded  []string
}

func (f *fakeDriver) Name() string        { return f.name }
func (f *fakeDriver) DisplayName() string { return f.display }

func (f *fakeDriver) Load(_ context.Context, url string) error {
	f.loaded = append(f.loaded, url)
	page := filepath.Base(url)

	f.clock.advance(f.cost[page])

	return f.fail[page]
}

func writePages(t *testing.T, names ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("<html><body></body></html>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func newTestRunner(dir string, clock *fakeClock, a, b *fakeDriver) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer

	r := NewRunner(
		[]driver.Driver{a, b},
		dir,
		&out,
		slog.New(slog.DiscardHandler),
	)
	r.now = clock.Now

	return r, &out
}

func TestRunWinnerAndTimings(t *testing.T) {
	dir := writePages(t, "index.html")
	clock := &fakeClock{t: time.Unix(0, 0)}

	sel := &fakeDriver{name: "selenium", display: "Selenium", clock: clock,
		cost: map[string]time.Duration{"index.html": time.Second}}
	pw := &fakeDriver{name: "playwright", display: "Playwright", clock: clock,
		cost: map[string]time.Duration{"index.html": 800 * time.Millisecond}}

	r, out := newTestRunner(dir, clock, sel, pw)

	res, err := r.Run(context.Background(), "run-1", []string{"index.html"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()

	for _, want := range []string{
		"Selenium vs Playwright Performance Comparison",
		"Testing 1 pages",
		"Testing: index.html",
		"  Selenium:   1.000s",
		"  Playwright: 0.800s",
		"  Winner:     Playwright (by 0.200s)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}

	if got, ok := res.Elapsed("selenium", "index.html"); !ok || got != time.Second {
		t.Errorf("selenium elapsed = %v (%v), want 1s", got, ok)
	}
	if got, ok := res.Elapsed("playwright", "index.html"); !ok || got != 800*time.Millisecond {
		t.Errorf("playwright elapsed = %v (%v), want 800ms", got, ok)
	}
	if len(sel.loaded) != 1 || !strings.HasPrefix(sel.loaded[0], "file://") {
		t.Errorf("selenium loaded %v, want one file:// URL", sel.loaded)
	}
}

func TestRunSkipsMissingPage(t *testing.T) {
	dir := writePages(t, "index.html")
	clock := &fakeClock{t: time.Unix(0, 0)}

	a := &fakeDriver{name: "selenium", display: "Selenium", clock: clock}
	b := &fakeDriver{name: "playwright", display: "Playwright", clock: clock}

	r, out := newTestRunner(dir, clock, a, b)

	res, err := r.Run(context.Background(), "run-2", []string{"ghost.html", "index.html"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "Skipping ghost.html - file not found") {
		t.Errorf("missing skip message:\n%s", out.String())
	}

	for _, d := range []string{"selenium", "playwright"} {
		if _, ok := res.Timings[d]["ghost.html"]; ok {
			t.Errorf("%s has an entry for a missing page", d)
		}
	}

	if len(res.Pages) != 1 || res.Pages[0] != "index.html" {
		t.Errorf("pages = %v, want [index.html]", res.Pages)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "ghost.html" {
		t.Errorf("skipped = %v, want [ghost.html]", res.Skipped)
	}
	if len(a.loaded) != 1 {
		t.Errorf("driver loaded %d pages, want 1", len(a.loaded))
	}
}

func TestRunRecordsFailure(t *testing.T) {
	dir := writePages(t, "index.html", "enquiry.html")
	clock := &fakeClock{t: time.Unix(0, 0)}

	sel := &fakeDriver{name: "selenium", display: "Selenium", clock: clock,
		cost: map[string]time.Duration{"index.html": time.Second, "enquiry.html": time.Second},
		fail: map[string]error{"index.html": errors.New("chromedriver not found")}}
	pw := &fakeDriver{name: "playwright", display: "Playwright", clock: clock,
		cost: map[string]time.Duration{"index.html": time.Second, "enquiry.html": 2 * time.Second}}

	r, out := newTestRunner(dir, clock, sel, pw)

	res, err := r.Run(context.Background(), "run-3", []string{"index.html", "enquiry.html"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()

	if !strings.Contains(output, "  Selenium:   FAILED - chromedriver not found") {
		t.Errorf("missing failure line:\n%s", output)
	}

	if _, ok := res.Elapsed("selenium", "index.html"); ok {
		t.Error("failed load should have no duration")
	}
	if o := res.Timings["selenium"]["index.html"]; o.Err != "chromedriver not found" {
		t.Errorf("err = %q, want chromedriver not found", o.Err)
	}

	// The second page still runs and selenium wins it.
	if !strings.Contains(output, "  Winner:     Selenium (by 1.000s)") {
		t.Errorf("missing second page winner:\n%s", output)
	}
	if strings.Count(output, "Winner:") != 1 {
		t.Errorf("expected exactly one winner line:\n%s", output)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := writePages(t, "index.html")
	clock := &fakeClock{t: time.Unix(0, 0)}

	a := &fakeDriver{name: "selenium", display: "Selenium", clock: clock}
	b := &fakeDriver{name: "playwright", display: "Playwright", clock: clock}

	r, _ := newTestRunner(dir, clock, a, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, "run-4", []string{"index.html"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(a.loaded) != 0 {
		t.Error("no page should load after cancellation")
	}
}

func TestWinnerTieGoesToFirst(t *testing.T) {
	res := NewResults("r", []DriverInfo{
		{Name: "selenium", DisplayName: "Selenium"},
		{Name: "playwright", DisplayName: "Playwright"},
	})
	res.Record("selenium", "p", Outcome{Elapsed: time.Second})
	res.Record("playwright", "p", Outcome{Elapsed: time.Second})

	w, ok := Winner(res, "p")
	if !ok {
		t.Fatal("expected a winner")
	}
	if w.Name != "selenium" || w.Margin != 0 {
		t.Errorf("winner = %+v, want selenium by 0", w)
	}
}

func TestWinnerNeedsBothTimings(t *testing.T) {
	res := NewResults("r", []DriverInfo{
		{Name: "selenium", DisplayName: "Selenium"},
		{Name: "playwright", DisplayName: "Playwright"},
	})
	res.Record("selenium", "p", Outcome{Elapsed: time.Second})
	res.Record("playwright", "p", Outcome{Err: "boom"})

	if _, ok := Winner(res, "p"); ok {
		t.Error("no winner expected when one driver failed")
	}
}

func TestTotal(t *testing.T) {
	res := NewResults("r", []DriverInfo{{Name: "selenium"}})
	res.Record("selenium", "a", Outcome{Elapsed: time.Second})
	res.Record("selenium", "b", Outcome{Elapsed: 500 * time.Millisecond})
	res.Record("selenium", "c", Outcome{Err: "failed"})

	total, n := res.Total("selenium")
	if total != 1500*time.Millisecond || n != 2 {
		t.Errorf("total = %v over %d, want 1.5s over 2", total, n)
	}
}
