package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"shotwatch/internal/platform/clock"
)

const (
	NoNotePlaceholder   = "(no note)"
	NoDailyNotes        = "No specific notes entered."
	sessionStartGlyph   = "▶"
	sessionStopGlyph    = "⏹"
	dailyNoteBullet     = "• "
	endCaptionSeparator = " – "
)

// ActiveSeconds is end minus start, clamped to zero.
func ActiveSeconds(start, end time.Time) int64 {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}

func NoteOrPlaceholder(note string) string {
	if note = strings.TrimSpace(note); note != "" {
		return note
	}
	return NoNotePlaceholder
}

func StartMessage(zone clock.Zone, n StartNotice) string {
	return fmt.Sprintf("%s %s STARTED session \"%s\" at %s (%s)",
		sessionStartGlyph, n.SubjectName, NoteOrPlaceholder(n.Note), zone.Kitchen(n.StartTime), zone.Label)
}

// EndCaption accompanies the session video.
func EndCaption(zone clock.Zone, n EndNotice) string {
	caption := fmt.Sprintf("%s %s STOPPED · \"%s\"\n%s%s%s %s (active %s), %d screenshots.",
		sessionStopGlyph, n.SubjectName, NoteOrPlaceholder(n.Note),
		zone.Kitchen(n.StartTime), endCaptionSeparator, zone.Kitchen(n.DetectedAt), zone.Label,
		clock.FormatDuration(ActiveSeconds(n.StartTime, n.EndTime)), n.Media.FrameCount)
	if n.Media.AverageActivity != nil {
		caption += fmt.Sprintf(" Avg activity %d%%.", int(math.RoundToEven(*n.Media.AverageActivity)))
	}
	return caption
}

// EndSummary is the text sent instead of a video. uploadFailed selects the
// upper-case wording used when a video existed but could not be uploaded.
func EndSummary(zone clock.Zone, n EndNotice, uploadFailed bool) string {
	verb := "finished"
	if uploadFailed {
		verb = "FINISHED"
	}
	return fmt.Sprintf("%s %s %s \"%s\" (active %s) %s–%s %s",
		sessionStopGlyph, n.SubjectName, verb, NoteOrPlaceholder(n.Note),
		clock.FormatDuration(ActiveSeconds(n.StartTime, n.EndTime)),
		zone.Kitchen(n.StartTime), zone.Kitchen(n.DetectedAt), zone.Label)
}

// DailyCaption is used both as the video caption and as the text fallback.
func DailyCaption(n DailyNotice) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Daily Summary – %s\n", n.Day)
	fmt.Fprintf(b, "Employee: %s\n", n.SubjectName)
	fmt.Fprintf(b, "Total Hours: %.2f\n\n", float64(n.TotalSeconds)/3600)
	b.WriteString("Notes:\n")
	if len(n.Notes) == 0 {
		b.WriteString(dailyNoteBullet + NoDailyNotes)
		return b.String()
	}
	for i, note := range n.Notes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(dailyNoteBullet + note)
	}
	return b.String()
}
