package tradetax

import (
	"fmt"
	"time"

	"github.com/etnz/tradetax/date"
)

// WindowLength is the length of a reporting window.
const WindowLength = 365 * date.Day

// Window is a one year reporting period starting at Start.
//
// A nil *Window means no reporting period: every event is reported.
type Window struct {
	Start time.Time
}

// NewWindow returns a window starting on that day at midnight UTC.
func NewWindow(start date.Date) *Window { return &Window{Start: start.Time()} }

// YearWindow returns the window starting on January 1st of year.
func YearWindow(year int) *Window { return NewWindow(date.New(year, time.January, 1)) }

// End returns the first instant after the window.
func (w *Window) End() time.Time { return w.Start.Add(WindowLength) }

// Contains reports whether t is in [Start, Start+365 days). A nil window
// contains everything.
func (w *Window) Contains(t time.Time) bool {
	if w == nil {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.End())
}

// String returns the window start day or "all".
func (w *Window) String() string {
	if w == nil {
		return "all"
	}
	return date.FromTime(w.Start).String()
}

// key identifies the window down to the instant it starts.
func (w *Window) key() string {
	if w == nil {
		return "all"
	}
	return w.Start.UTC().Format(time.RFC3339Nano)
}

// ParseWindow parses a reporting window from either a year ("2023") or a
// start date ("2023-04-06"). The empty string means no window.
func ParseWindow(s string) (*Window, error) {
	if s == "" {
		return nil, nil
	}
	d, err := date.ParseYearOrDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid reporting window: %w", err)
	}
	return NewWindow(d), nil
}
