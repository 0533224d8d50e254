package outputs

import (
	"fmt"
	"regexp"
	"strings"
)

// Stream names a captured output stream.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// DefaultMaxResults caps search results unless the caller asks otherwise.
const DefaultMaxResults = 50

// SearchQuery selects records and lines to match.
type SearchQuery struct {
	ConversationID string
	Pattern        string

	// CommandID restricts the search to a single record when set.
	CommandID string

	SearchStdout  bool
	SearchStderr  bool
	CaseSensitive bool
	MaxResults    int
}

// OutputMatch is one matched line.
type OutputMatch struct {
	CommandID  string `json:"commandId"`
	Command    string `json:"command"`
	Stream     Stream `json:"stream"`
	Line       string `json:"line"`
	LineNumber int    `json:"lineNumber"`
}

// SearchResult is the capped match list plus the true total.
type SearchResult struct {
	Matches      []OutputMatch `json:"matches"`
	TotalMatches int           `json:"totalMatches"`
	Limited      bool          `json:"limited"`
	Message      string        `json:"message,omitempty"`
}

// Search scans the selected records line by line against the pattern.
// Matches come back in record order, then stream order (stdout before
// stderr), then line order. A missing conversation or unknown command id is
// an empty result with an explanatory message, not an error.
func (s *Store) Search(q SearchQuery) (*SearchResult, error) {
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultMaxResults
	}

	pattern := q.Pattern
	if !q.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", q.Pattern, err)
	}

	records := s.Records(q.ConversationID)
	if len(records) == 0 {
		return &SearchResult{
			Matches: []OutputMatch{},
			Message: "no command output has been recorded for this conversation",
		}, nil
	}

	if q.CommandID != "" {
		rec, ok := s.Get(q.ConversationID, q.CommandID)
		if !ok {
			return &SearchResult{
				Matches: []OutputMatch{},
				Message: fmt.Sprintf("no command found with id %q", q.CommandID),
			}, nil
		}
		records = []Record{rec}
	}

	result := &SearchResult{Matches: []OutputMatch{}}
	for _, rec := range records {
		if q.SearchStdout {
			matchLines(result, re, rec, StreamStdout, rec.Stdout, q.MaxResults)
		}
		if q.SearchStderr {
			matchLines(result, re, rec, StreamStderr, rec.Stderr, q.MaxResults)
		}
	}

	if result.TotalMatches == 0 {
		result.Message = fmt.Sprintf("no matches for %q", q.Pattern)
	}
	return result, nil
}

func matchLines(result *SearchResult, re *regexp.Regexp, rec Record, stream Stream, text string, maxResults int) {
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	// A trailing newline is not an extra line.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}
		result.TotalMatches++
		if len(result.Matches) >= maxResults {
			result.Limited = true
			continue
		}
		result.Matches = append(result.Matches, OutputMatch{
			CommandID:  rec.ID,
			Command:    rec.Command,
			Stream:     stream,
			Line:       line,
			LineNumber: i + 1,
		})
	}
}
