package domain

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"time"
)

const (
	DefaultTargetWidth = 1280
	DefaultFPS         = 2
	DefaultNoteMaxLen  = 60
	ellipsis           = "…"
)

type App struct {
	Name            string
	DurationSeconds float64
	Foreground      bool
}

type Shot struct {
	ID            string
	CapturedAt    time.Time
	ImageURL      string
	ActivityLevel *int
	Apps          []App
}

// FrameResult is the outcome of fetching and preparing one screenshot. A
// non-nil Err marks the frame as skipped; the batch carries on.
type FrameResult struct {
	Shot  Shot
	Image image.Image
	Err   error
}

func (r FrameResult) OK() bool { return r.Err == nil && r.Image != nil }

// SortShots returns a copy ordered by capture time. Equal times keep their
// input order.
func SortShots(shots []Shot) []Shot {
	out := make([]Shot, len(shots))
	copy(out, shots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CapturedAt.Before(out[j].CapturedAt)
	})
	return out
}

// Cap keeps the first limit shots; limit <= 0 keeps all of them.
func Cap(shots []Shot, limit int) []Shot {
	if limit <= 0 || len(shots) <= limit {
		return shots
	}
	return shots[:limit]
}

// PrimaryApp picks a foreground entry over a background one, then the
// longest duration. On a full tie the earliest entry wins.
func PrimaryApp(apps []App) string {
	best := -1
	for i, app := range apps {
		if best < 0 || outranks(app, apps[best]) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return apps[best].Name
}

func outranks(a, b App) bool {
	if a.Foreground != b.Foreground {
		return a.Foreground
	}
	return a.DurationSeconds > b.DurationSeconds
}

// AverageActivity is the mean of the reported levels, or nil when no shot
// reported one.
func AverageActivity(shots []Shot) *float64 {
	sum, n := 0, 0
	for _, s := range shots {
		if s.ActivityLevel == nil {
			continue
		}
		sum += *s.ActivityLevel
		n++
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

// Truncate shortens s to at most limit runes, ending in an ellipsis when cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return ellipsis
	}
	return string(runes[:limit-1]) + ellipsis
}

// OverlayLines builds the caption drawn on a frame. stamp is the capture
// time already formatted in the display zone.
func OverlayLines(subjectName, stamp string, shot Shot, note string, noteMaxLen int) []string {
	level := 0
	if shot.ActivityLevel != nil {
		level = *shot.ActivityLevel
	}
	app := PrimaryApp(shot.Apps)
	if app == "" {
		app = "unknown"
	}
	lines := []string{
		fmt.Sprintf("%s | %s", subjectName, stamp),
		fmt.Sprintf("Activity: %d%% | App: %s", level, app),
	}
	if note = strings.TrimSpace(note); note != "" {
		lines = append(lines, "Note: "+Truncate(note, noteMaxLen))
	}
	return lines
}

// FitWidth returns the size a frame is scaled to. Frames narrower than the
// target keep their size.
func FitWidth(w, h, target int) (int, int) {
	if target <= 0 || w <= target || w == 0 {
		return w, h
	}
	nh := h * target / w
	if nh < 1 {
		nh = 1
	}
	return target, nh
}
