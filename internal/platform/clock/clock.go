package clock

import (
	"fmt"
	"time"
)

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Zone is the display timezone used for captions, overlays, and day windows.
type Zone struct {
	Loc   *time.Location
	Label string
}

func NewZone(label string, offsetHours float64) Zone {
	if label == "" {
		label = "UTC"
	}
	return Zone{Loc: time.FixedZone(label, int(offsetHours*3600)), Label: label}
}

func (z Zone) location() *time.Location {
	if z.Loc == nil {
		return time.UTC
	}
	return z.Loc
}

func (z Zone) In(t time.Time) time.Time {
	return t.In(z.location())
}

// Kitchen renders a 12-hour wall time such as "11:05 AM".
func (z Zone) Kitchen(t time.Time) string {
	return z.In(t).Format("03:04 PM")
}

// Stamp renders "2006-01-02 15:04" in the zone.
func (z Zone) Stamp(t time.Time) string {
	return z.In(t).Format("2006-01-02 15:04")
}

func (z Zone) Date(t time.Time) string {
	return z.In(t).Format("2006-01-02")
}

// Window is a half-open polling interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.From.UTC().Format(time.RFC3339), w.To.UTC().Format(time.RFC3339))
}

// TodaySoFar covers the UTC day of now, padded a little past now so that
// sessions reported with a slightly skewed clock are still returned.
func TodaySoFar(now time.Time, pad time.Duration) Window {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Window{From: start, To: now.Add(pad)}
}

// ReachingBack moves From earlier so the window covers at least lookback
// before now. A window already reaching that far is unchanged.
func (w Window) ReachingBack(now time.Time, lookback time.Duration) Window {
	if earliest := now.Add(-lookback).UTC(); earliest.Before(w.From) {
		w.From = earliest
	}
	return w
}

// Day covers the full calendar day of date in the zone.
func (z Zone) Day(date time.Time) Window {
	local := z.In(date)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, z.location())
	return Window{From: start, To: start.AddDate(0, 0, 1)}
}

// Yesterday is the full zone-local day before now.
func (z Zone) Yesterday(now time.Time) Window {
	return z.Day(z.In(now).AddDate(0, 0, -1))
}

// FormatDuration renders whole minutes as "Xh YYm", or "Ym" under an hour.
// Negative input counts as zero.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
