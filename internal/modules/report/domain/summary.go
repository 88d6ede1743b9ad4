package domain

import (
	"sort"
	"strings"
	"time"
)

const SchemaVersion = 1

type Activity struct {
	SessionID string
	StartTime time.Time
	EndTime   *time.Time
	Note      string
}

type App struct {
	Name            string
	DurationSeconds float64
	Foreground      bool
}

type Shot struct {
	ID            string
	SessionID     string
	CapturedAt    time.Time
	ImageURL      string
	ActivityLevel *int
	Apps          []App
}

// SessionLine is one activity as it counted towards the day.
type SessionLine struct {
	SessionID string
	From      time.Time
	To        time.Time
	Open      bool
	Seconds   int64
	Note      string
}

type Summary struct {
	SubjectID    string
	SubjectName  string
	Day          string
	From         time.Time
	To           time.Time
	TotalSeconds int64
	Notes        []string
	Sessions     []SessionLine
}

func (s Summary) Empty() bool { return len(s.Sessions) == 0 }

func (s Summary) SessionIDs() []string {
	out := make([]string, 0, len(s.Sessions))
	for _, line := range s.Sessions {
		out = append(out, line.SessionID)
	}
	return out
}

// Summarize totals the activities overlapping [from, to). Open activities
// count until to. Notes are deduplicated and sorted.
func Summarize(subjectID, subjectName, day string, from, to time.Time, activities []Activity) Summary {
	summary := Summary{SubjectID: subjectID, SubjectName: subjectName, Day: day, From: from, To: to}
	seen := map[string]bool{}
	for _, a := range activities {
		if a.SessionID == "" || a.StartTime.IsZero() {
			continue
		}
		end, open := to, true
		if a.EndTime != nil && !a.EndTime.IsZero() {
			end, open = *a.EndTime, false
		}
		start := a.StartTime
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if !end.After(start) {
			continue
		}
		note := strings.TrimSpace(a.Note)
		line := SessionLine{
			SessionID: a.SessionID,
			From:      start,
			To:        end,
			Open:      open,
			Seconds:   int64(end.Sub(start) / time.Second),
			Note:      note,
		}
		summary.TotalSeconds += line.Seconds
		summary.Sessions = append(summary.Sessions, line)
		if note != "" && !seen[note] {
			seen[note] = true
			summary.Notes = append(summary.Notes, note)
		}
	}
	sort.Strings(summary.Notes)
	sort.SliceStable(summary.Sessions, func(i, j int) bool {
		return summary.Sessions[i].From.Before(summary.Sessions[j].From)
	})
	return summary
}

// Hours is the total rounded to two decimals for display.
func (s Summary) Hours() float64 {
	return float64(s.TotalSeconds*100/3600) / 100
}
