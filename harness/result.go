// Package harness runs page drivers over a page list and records how long
// each driver took per page.
package harness

import (
	"time"
)

// Outcome is one driver's result for one page. Elapsed is only meaningful
// when Err is empty.
type Outcome struct {
	Elapsed time.Duration
	Err     string
}

// OK reports whether the load succeeded.
func (o Outcome) OK() bool { return o.Err == "" }

// Results maps driver name to page name to outcome. Pages keeps the
// attempted pages in run order; skipped pages never appear.
type Results struct {
	ID        string
	StartedAt time.Time
	Drivers   []DriverInfo
	Pages     []string
	Skipped   []string
	Timings   map[string]map[string]Outcome
}

// DriverInfo names a driver taking part in a run.
type DriverInfo struct {
	Name        string
	DisplayName string
}

// NewResults creates an empty result set for the given drivers.
func NewResults(id string, drivers []DriverInfo) *Results {
	r := &Results{
		ID:      id,
		Drivers: drivers,
		Timings: make(map[string]map[string]Outcome, len(drivers)),
	}

	for _, d := range drivers {
		r.Timings[d.Name] = make(map[string]Outcome)
	}

	return r
}

// Record stores an outcome, replacing any earlier one for the same
// driver and page.
func (r *Results) Record(driverName, page string, o Outcome) {
	byPage, ok := r.Timings[driverName]
	if !ok {
		byPage = make(map[string]Outcome)
		r.Timings[driverName] = byPage
	}

	byPage[page] = o
}

// Elapsed returns the recorded duration, or false if the driver failed
// or never ran on the page.
func (r *Results) Elapsed(driverName, page string) (time.Duration, bool) {
	o, ok := r.Timings[driverName][page]
	if !ok || !o.OK() {
		return 0, false
	}

	return o.Elapsed, true
}

// Total sums the successful durations for a driver.
func (r *Results) Total(driverName string) (time.Duration, int) {
	var (
		total time.Duration
		n     int
	)

	for _, o := range r.Timings[driverName] {
		if o.OK() {
			total += o.Elapsed
			n++
		}
	}

	return total, n
}
