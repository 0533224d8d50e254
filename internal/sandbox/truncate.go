package sandbox

import (
	"fmt"
	"strings"
)

// DefaultMaxOutputLines bounds the view of a command's stdout/stderr that is
// returned to the agent.
const DefaultMaxOutputLines = 20

// TruncatedView is a head-and-tail excerpt of an output stream. It is
// derived on demand; the full text lives in the outputs store.
type TruncatedView struct {
	Text       string `json:"text"`
	TotalLines int    `json:"totalLines"`
	Truncated  bool   `json:"truncated"`
}

// Truncate condenses text to at most maxLines lines, keeping the head and
// tail halves around an omission marker. maxLines <= 0 means the default.
func Truncate(text string, maxLines int) TruncatedView {
	if maxLines <= 0 {
		maxLines = DefaultMaxOutputLines
	}
	if text == "" {
		return TruncatedView{}
	}

	lines := strings.Split(text, "\n")
	// A trailing newline is not an extra line.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	total := len(lines)

	if total <= maxLines {
		return TruncatedView{
			Text:       strings.Join(lines, "\n"),
			TotalLines: total,
		}
	}

	head := maxLines / 2
	tail := maxLines / 2
	omitted := total - head - tail

	excerpt := make([]string, 0, head+tail+1)
	excerpt = append(excerpt, lines[:head]...)
	excerpt = append(excerpt, fmt.Sprintf("... (%d lines omitted) ...", omitted))
	excerpt = append(excerpt, lines[total-tail:]...)

	return TruncatedView{
		Text:       strings.Join(excerpt, "\n"),
		TotalLines: total,
		Truncated:  true,
	}
}
