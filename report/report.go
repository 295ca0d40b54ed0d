// Package report formats benchmark results into a console summary, a JSON
// document and a comparison chart.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/weiihann/webbench/harness"
)

// DriverTotal is the aggregate of one driver's successful loads.
type DriverTotal struct {
	harness.DriverInfo
	Total     time.Duration
	Succeeded int
}

// Comparison says which driver was faster overall and by how much,
// relative to the slower total.
type Comparison struct {
	Faster  harness.DriverInfo
	Percent float64
}

// Totals aggregates successful durations per driver, in driver order.
func Totals(results *harness.Results) []DriverTotal {
	totals := make([]DriverTotal, len(results.Drivers))

	for i, d := range results.Drivers {
		total, n := results.Total(d.Name)
		totals[i] = DriverTotal{DriverInfo: d, Total: total, Succeeded: n}
	}

	return totals
}

// Compare returns the overall comparison. It is only defined when there
// are at least two drivers and every total is non-zero.
func Compare(totals []DriverTotal) (Comparison, bool) {
	if len(totals) < 2 {
		return Comparison{}, false
	}

	fastest, slowest := totals[0], totals[0]

	for _, t := range totals {
		if t.Total <= 0 {
			return Comparison{}, false
		}
		if t.Total < fastest.Total {
			fastest = t
		}
		if t.Total > slowest.Total {
			slowest = t
		}
	}

	pct := float64(slowest.Total-fastest.Total) / float64(slowest.Total) * 100

	return Comparison{Faster: fastest.DriverInfo, Percent: pct}, true
}

// Generate writes the run summary followed by a per-page markdown table.
func Generate(w io.Writer, results *harness.Results) error {
	if results == nil {
		return fmt.Errorf("no results to report")
	}

	totals := Totals(results)
	rule := strings.Repeat("=", 60)

	labels := []string{"Pages tested:", "Pages skipped:"}
	for _, t := range totals {
		labels = append(labels, t.DisplayName+" total:", t.DisplayName+" passed:")
	}

	width := 0
	for _, l := range labels {
		width = max(width, len(l))
	}
	width++

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "%-*s%d\n", width, "Pages tested:", len(results.Pages))

	if len(results.Skipped) > 0 {
		fmt.Fprintf(w, "%-*s%d\n", width, "Pages skipped:", len(results.Skipped))
	}

	for _, t := range totals {
		fmt.Fprintf(w, "%-*s%d/%d\n", width, t.DisplayName+" passed:", t.Succeeded, len(results.Pages))
	}

	for _, t := range totals {
		fmt.Fprintf(w, "%-*s%.3fs\n", width, t.DisplayName+" total:", t.Total.Seconds())
	}

	if cmp, ok := Compare(totals); ok {
		fmt.Fprintf(w, "%s is %.1f%% faster overall\n", cmp.Faster.DisplayName, cmp.Percent)
	}

	if len(results.Pages) == 0 {
		return nil
	}

	fmt.Fprintln(w)

	header := []string{"Page"}
	sep := []string{"------"}

	for _, d := range results.Drivers {
		header = append(header, d.DisplayName)
		sep = append(sep, strings.Repeat("-", len(d.DisplayName)+2))
	}

	header = append(header, "Winner")
	sep = append(sep, "--------")

	fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(w, "|%s|\n", strings.Join(sep, "|"))

	for _, page := range results.Pages {
		row := []string{page}

		for _, d := range results.Drivers {
			row = append(row, formatOutcome(results.Timings[d.Name][page]))
		}

		winner := "-"
		if pw, ok := harness.Winner(results, page); ok {
			winner = pw.DisplayName
		}

		row = append(row, winner)

		fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}

	return nil
}

type jsonReport struct {
	ID        string          `json:"id"`
	StartedAt time.Time       `json:"started_at"`
	Drivers   []jsonDriver    `json:"drivers"`
	Pages     []jsonPage      `json:"pages"`
	Skipped   []string        `json:"skipped,omitempty"`
	Faster    *jsonComparison `json:"faster,omitempty"`
}

type jsonDriver struct {
	Name         string  `json:"name"`
	DisplayName  string  `json:"display_name"`
	TotalSeconds float64 `json:"total_seconds"`
	Succeeded    int     `json:"succeeded"`
}

type jsonPage struct {
	Page    string                `json:"page"`
	Results map[string]jsonTiming `json:"results"`
	Winner  string                `json:"winner,omitempty"`
}

type jsonTiming struct {
	Seconds *float64 `json:"seconds"`
	Error   string   `json:"error,omitempty"`
}

type jsonComparison struct {
	Driver  string  `json:"driver"`
	Percent float64 `json:"percent"`
}

// GenerateJSON writes results as JSON to w. Failed loads have a null
// duration.
func GenerateJSON(w io.Writer, results *harness.Results) error {
	totals := Totals(results)

	doc := jsonReport{
		ID:        results.ID,
		StartedAt: results.StartedAt,
		Drivers:   make([]jsonDriver, 0, len(totals)),
		Pages:     make([]jsonPage, 0, len(results.Pages)),
		Skipped:   results.Skipped,
	}

	for _, t := range totals {
		doc.Drivers = append(doc.Drivers, jsonDriver{
			Name:         t.Name,
			DisplayName:  t.DisplayName,
			TotalSeconds: t.Total.Seconds(),
			Succeeded:    t.Succeeded,
		})
	}

	for _, page := range results.Pages {
		jp := jsonPage{Page: page, Results: make(map[string]jsonTiming, len(results.Drivers))}

		for _, d := range results.Drivers {
			o, ok := results.Timings[d.Name][page]
			if !ok {
				continue
			}

			var jt jsonTiming
			if o.OK() {
				secs := o.Elapsed.Seconds()
				jt.Seconds = &secs
			} else {
				jt.Error = o.Err
			}

			jp.Results[d.Name] = jt
		}

		if pw, ok := harness.Winner(results, page); ok {
			jp.Winner = pw.Name
		}

		doc.Pages = append(doc.Pages, jp)
	}

	if cmp, ok := Compare(totals); ok {
		doc.Faster = &jsonComparison{Driver: cmp.Faster.Name, Percent: cmp.Percent}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

func formatOutcome(o harness.Outcome) string {
	if !o.OK() {
		return "FAILED"
	}

	return formatSeconds(o.Elapsed)
}

func formatSeconds(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	return fmt.Sprintf("%.2fs", d.Seconds())
}
