package snapshot

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

const dateLayout = "2006-01-02"

// Window is the period a collection run covers. Computation treats End as
// exclusive; the directory label includes both calendar dates.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow builds the window of days ending at end. Negative day counts
// are clamped to zero so Start never follows End.
func NewWindow(end time.Time, days int) Window {
	if days < 0 {
		days = 0
	}
	return Window{
		Start: end.AddDate(0, 0, -days),
		End:   end,
	}
}

// TrailingWindow builds the window of days ending at now in loc.
func TrailingWindow(now time.Time, days int, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	return NewWindow(now.In(loc), days)
}

// StartDate returns the ISO calendar date of Start.
func (w Window) StartDate() string {
	return w.Start.Format(dateLayout)
}

// EndDate returns the ISO calendar date of End.
func (w Window) EndDate() string {
	return w.End.Format(dateLayout)
}

// Days returns the whole number of days the window spans. DST shifts
// within the window are absorbed by rounding.
func (w Window) Days() int {
	return int(math.Round(w.End.Sub(w.Start).Hours() / 24))
}

// Label returns the directory name for the window, e.g. 2025-05-01_to_2025-05-08.
func (w Window) Label() string {
	return w.StartDate() + "_to_" + w.EndDate()
}

// Period is the JSON shape used by run summaries.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// Period returns the summary view of the window.
func (w Window) Period() Period {
	return Period{Start: w.StartDate(), End: w.EndDate(), Days: w.Days()}
}

var labelRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_to_(\d{4}-\d{2}-\d{2})$`)

// IsLabel reports whether name is a window directory label.
func IsLabel(name string) bool {
	return labelRe.MatchString(name)
}

// ParseLabel reconstructs a window from its directory label. Both ends are
// midnight UTC.
func ParseLabel(label string) (Window, error) {
	m := labelRe.FindStringSubmatch(label)
	if m == nil {
		return Window{}, fmt.Errorf("not a window label: %q", label)
	}
	start, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return Window{}, fmt.Errorf("invalid start date in %q: %w", label, err)
	}
	end, err := time.Parse(dateLayout, m[2])
	if err != nil {
		return Window{}, fmt.Errorf("invalid end date in %q: %w", label, err)
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("window %q ends before it starts", label)
	}
	return Window{Start: start, End: end}, nil
}
