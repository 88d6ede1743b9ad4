package markdown

import (
	"strings"
	"testing"
)

func TestRenderFrontmatterKeepsFieldOrder(t *testing.T) {
	t.Parallel()
	out, err := RenderFrontmatter([]Field{
		{Key: "subject", Value: "VOID"},
		{Key: "day", Value: "2025-12-01"},
		{Key: "total_minutes", Value: 95},
	}, "# Day\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	subject := strings.Index(out, "subject:")
	day := strings.Index(out, "day:")
	total := strings.Index(out, "total_minutes:")
	if subject < 0 || !(subject < day && day < total) {
		t.Fatalf("fields out of order:\n%s", out)
	}

	meta, body, err := SplitFrontmatter(out)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if meta["subject"] != "VOID" || meta["total_minutes"] != 95 {
		t.Fatalf("unexpected meta: %#v", meta)
	}
	if !strings.Contains(body, "# Day") {
		t.Fatalf("body lost: %q", body)
	}
}

func TestSplitFrontmatterWithoutFence(t *testing.T) {
	t.Parallel()
	meta, body, err := SplitFrontmatter("plain body")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(meta) != 0 || body != "plain body" {
		t.Fatalf("unexpected split result: %#v %q", meta, body)
	}
	if _, _, err := SplitFrontmatter("---\nkey: v\nno closing"); err == nil {
		t.Fatalf("expected error for unterminated frontmatter")
	}
}

func TestBlockReplaceIsIdempotent(t *testing.T) {
	t.Parallel()
	b := Block{Name: "shotwatch:sessions"}
	body := "# Notes\n\nhand written\n"
	once := b.Replace(body, "- one")
	twice := b.Replace(once, "- two")
	if strings.Count(twice, "shotwatch:sessions:start") != 1 {
		t.Fatalf("block duplicated:\n%s", twice)
	}
	if !strings.Contains(twice, "hand written") {
		t.Fatalf("surrounding text lost:\n%s", twice)
	}
	got, ok := b.Contents(twice)
	if !ok || got != "- two" {
		t.Fatalf("expected regenerated contents, got %q (ok=%v)", got, ok)
	}
}
