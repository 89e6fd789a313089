// CLAUDE:SUMMARY Transcript and biography export in txt, md and jsonl renderings.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hazyhaar/lifeweave/internal/db"
)

// Format names a download rendering of an interview.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatJSONL    Format = "jsonl"
)

// ParseFormat maps a query-string value onto a Format. The empty string
// defaults to plain text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "jsonl":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the MIME type served for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSONL:
		return "application/x-ndjson"
	}
	return "text/plain; charset=utf-8"
}

// record is one jsonl line of an exported interview.
type record struct {
	Type     string  `json:"type"`
	Theme    string  `json:"theme,omitempty"`
	Story    int     `json:"story,omitempty"`
	Order    int     `json:"order,omitempty"`
	Question string  `json:"question,omitempty"`
	Strategy string  `json:"strategy,omitempty"`
	Answer   string  `json:"answer,omitempty"`
	AQI      float64 `json:"aqi,omitempty"`
	Content  string  `json:"content,omitempty"`
}

// WriteTranscript renders the interview for handle into w. A biography, if
// present, is appended after the transcript.
func WriteTranscript(w io.Writer, f Format, handle string, entries []db.TranscriptEntry, bio *db.Biography) error {
	switch f {
	case FormatJSONL:
		return writeJSONL(w, entries, bio)
	case FormatMarkdown:
		return writeMarkdown(w, handle, entries, bio)
	default:
		return writeText(w, handle, entries, bio)
	}
}

func writeJSONL(w io.Writer, entries []db.TranscriptEntry, bio *db.Biography) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		r := record{
			Type:     "exchange",
			Theme:    e.Question.Theme,
			Story:    e.Question.Story,
			Order:    e.Question.Order,
			Question: e.Question.Content,
		}
		if e.Question.Strategy != nil {
			r.Strategy = *e.Question.Strategy
		}
		if e.Answer != nil {
			r.Answer = e.Answer.Body
			r.AQI = e.Answer.AQI()
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	if bio != nil {
		if err := enc.Encode(record{Type: "biography", Content: bio.Content}); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, handle string, entries []db.TranscriptEntry, bio *db.Biography) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Life interview — %s\n", handle)
	theme := ""
	for _, e := range entries {
		if e.Question.Theme != theme {
			theme = e.Question.Theme
			fmt.Fprintf(&b, "\n## %s\n", titleCase(theme))
		}
		fmt.Fprintf(&b, "\n**Q%d.** %s\n", e.Question.Order, e.Question.Content)
		if e.Answer != nil {
			fmt.Fprintf(&b, "\n> %s\n", strings.ReplaceAll(e.Answer.Body, "\n", "\n> "))
		} else {
			b.WriteString("\n> _unanswered_\n")
		}
	}
	if bio != nil {
		b.WriteString("\n## Biography\n\n")
		b.WriteString(bio.Content)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeText(w io.Writer, handle string, entries []db.TranscriptEntry, bio *db.Biography) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Life interview — %s\n", handle)
	theme := ""
	for _, e := range entries {
		if e.Question.Theme != theme {
			theme = e.Question.Theme
			fmt.Fprintf(&b, "\n=== %s ===\n", titleCase(theme))
		}
		fmt.Fprintf(&b, "\nQ%d: %s\n", e.Question.Order, e.Question.Content)
		if e.Answer != nil {
			fmt.Fprintf(&b, "A: %s\n", e.Answer.Body)
		}
	}
	if bio != nil {
		b.WriteString("\n=== Biography ===\n\n")
		b.WriteString(bio.Content)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
