package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shotwatch/internal/modules/report/domain"
	reportout "shotwatch/internal/modules/report/port/out"
	"shotwatch/internal/platform/clock"
	"shotwatch/internal/platform/markdown"
	"shotwatch/internal/platform/slug"
)

const timestampLayout = "2006-01-02T15:04:05Z07:00"

var sessionsBlock = markdown.Block{Name: "shotwatch:sessions"}

// JournalStore keeps one note per subject and day under
// <dir>/<subject-slug>/<date>.md. Rewrites only touch the frontmatter and
// the generated sessions block.
type JournalStore struct {
	dir  string
	zone clock.Zone
}

func NewJournalStore(dir string, zone clock.Zone) reportout.Journal {
	return &JournalStore{dir: dir, zone: zone}
}

func (s *JournalStore) Write(_ context.Context, entry reportout.Entry) (string, error) {
	summary := entry.Summary
	dir := filepath.Join(s.dir, slug.Make(summary.SubjectName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	path := filepath.Join(dir, summary.Day+".md")

	body, err := s.existingBody(path)
	if err != nil {
		return "", err
	}
	if body == "" {
		body = fmt.Sprintf("# %s, %s\n\n", summary.SubjectName, summary.Day)
	}
	body = sessionsBlock.Replace(body, s.sessionsMarkdown(summary))

	fields := []markdown.Field{
		{Key: "schema_version", Value: domain.SchemaVersion},
		{Key: "subject_id", Value: summary.SubjectID},
		{Key: "subject", Value: summary.SubjectName},
		{Key: "date", Value: summary.Day},
		{Key: "total_seconds", Value: summary.TotalSeconds},
		{Key: "total_hours", Value: summary.Hours()},
		{Key: "sessions", Value: len(summary.Sessions)},
		{Key: "notes", Value: nonNil(summary.Notes)},
		{Key: "channel", Value: entry.Channel},
		{Key: "frames", Value: entry.Frames},
		{Key: "generated_at", Value: entry.GeneratedAt.UTC().Format(timestampLayout)},
	}
	rendered, err := markdown.RenderFrontmatter(fields, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}

func (s *JournalStore) existingBody(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read journal note: %w", err)
	}
	_, body, err := markdown.SplitFrontmatter(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse journal note %s: %w", path, err)
	}
	return strings.TrimLeft(body, "\n"), nil
}

func (s *JournalStore) sessionsMarkdown(summary domain.Summary) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Total: %s (%.2f h)\n\n", clock.FormatDuration(summary.TotalSeconds), summary.Hours())
	for _, line := range summary.Sessions {
		end := s.zone.Kitchen(line.To)
		if line.Open {
			end += " (open)"
		}
		note := line.Note
		if note == "" {
			note = "(no note)"
		}
		fmt.Fprintf(b, "- %s–%s %s · %s · %s\n", s.zone.Kitchen(line.From), end, s.zone.Label, clock.FormatDuration(line.Seconds), note)
	}
	return b.String()
}

func nonNil(notes []string) []string {
	if notes == nil {
		return []string{}
	}
	return notes
}
