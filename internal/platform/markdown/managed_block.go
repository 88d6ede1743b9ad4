package markdown

import "strings"

// Block is a generated region of a note delimited by HTML comments, so that
// hand-written text around it survives regeneration.
type Block struct {
	Name string
}

func (b Block) start() string { return "<!-- " + b.Name + ":start -->" }
func (b Block) end() string   { return "<!-- " + b.Name + ":end -->" }

// Replace swaps the block's contents in body, appending the block when the
// body has none yet.
func (b Block) Replace(body, generated string) string {
	startMarker, endMarker := b.start(), b.end()
	block := startMarker + "\n" + strings.TrimRight(generated, "\n") + "\n" + endMarker

	start := strings.Index(body, startMarker)
	end := strings.Index(body, endMarker)
	if start >= 0 && end > start {
		return body[:start] + block + body[end+len(endMarker):]
	}
	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	if strings.HasSuffix(body, "\n") {
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}

// Contents returns the text currently inside the block.
func (b Block) Contents(body string) (string, bool) {
	startMarker, endMarker := b.start(), b.end()
	start := strings.Index(body, startMarker)
	end := strings.Index(body, endMarker)
	if start < 0 || end <= start {
		return "", false
	}
	return strings.Trim(body[start+len(startMarker):end], "\n"), true
}
