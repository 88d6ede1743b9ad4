package domain

import (
	"strings"
	"time"
)

type Subject struct {
	ID          string
	DisplayName string
}

// Activity is one tracked work session as reported by the source. A nil
// EndTime means the session is still open.
type Activity struct {
	SubjectID string
	SessionID string
	StartTime time.Time
	EndTime   *time.Time
	Note      string
}

func (a Activity) HasStart() bool { return !a.StartTime.IsZero() }

func (a Activity) HasEnd() bool { return a.EndTime != nil && !a.EndTime.IsZero() }

// ActiveDuration is the tracked span, clamped at zero. Open sessions report zero.
func (a Activity) ActiveDuration() time.Duration {
	if !a.HasStart() || !a.HasEnd() {
		return 0
	}
	d := a.EndTime.Sub(a.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

func (a Activity) TrimmedNote() string {
	return strings.TrimSpace(a.Note)
}

type AppUsage struct {
	Name            string
	DurationSeconds float64
	Foreground      bool
}

// Screenshot is immutable once captured. ActivityLevel is nil when the
// tracker did not measure input for the interval.
type Screenshot struct {
	ID            string
	SessionID     string
	CapturedAt    time.Time
	ImageURL      string
	ActivityLevel *int
	Applications  []AppUsage
}
