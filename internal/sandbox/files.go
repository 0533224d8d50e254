package sandbox

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultReadMaxLines bounds the view returned by ReadFile. The full file
// content is always recorded in the outputs store.
const DefaultReadMaxLines = 100

// ListRequest asks for the entries under a path.
type ListRequest struct {
	ConversationID string
	RepositoryURL  string
	Path           string
	Recursive      bool
}

// ListResult is a normalized directory listing.
type ListResult struct {
	Path      string   `json:"path"`
	Recursive bool     `json:"recursive"`
	Entries   []string `json:"entries"`
	CommandID string   `json:"commandId"`
}

// ReadRequest asks for a file's content.
type ReadRequest struct {
	ConversationID string
	RepositoryURL  string
	Path           string

	// MaxLines bounds the returned view. Zero means DefaultReadMaxLines.
	MaxLines int
}

// ReadResult is a bounded view of a file.
type ReadResult struct {
	Path      string        `json:"path"`
	Content   TruncatedView `json:"content"`
	CommandID string        `json:"commandId"`
	Hint      string        `json:"hint,omitempty"`
}

// FileSearchRequest asks for lines matching a pattern under a path.
type FileSearchRequest struct {
	ConversationID string
	RepositoryURL  string
	Path           string
	Pattern        string

	// FileGlob restricts the search to matching file names. Empty or "*"
	// means all files.
	FileGlob string
}

// FileMatch is one matched line in one file.
type FileMatch struct {
	File       string `json:"file"`
	Line       string `json:"line"`
	LineNumber int    `json:"lineNumber,omitempty"`
}

// FileSearchResult is the merged, ordered match list.
type FileSearchResult struct {
	Matches []FileMatch `json:"matches"`
	Message string      `json:"message,omitempty"`
}

// grep exit codes: 0 matches found, 1 no matches, anything else is an error.
const grepNoMatches = 1

// ListFiles lists the entries under a path, recursively when asked.
func (e *Executor) ListFiles(ctx context.Context, req ListRequest) (*ListResult, error) {
	path := req.Path
	if path == "" {
		path = "."
	}

	rr := RunRequest{
		ConversationID: req.ConversationID,
		RepositoryURL:  req.RepositoryURL,
	}
	if req.Recursive {
		rr.Cmd = "find"
		rr.Args = []string{path, "-type", "f", "-o", "-type", "d"}
	} else {
		rr.Cmd = "ls"
		rr.Args = []string{"-la", path}
	}

	out, _, commandID, err := e.execute(ctx, rr)
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s", ErrListFailed, strings.TrimSpace(out.Stderr))
	}

	return &ListResult{
		Path:      path,
		Recursive: req.Recursive,
		Entries:   splitNonEmptyLines(out.Stdout),
		CommandID: commandID,
	}, nil
}

// ReadFile dumps a file's content. The returned view is bounded by
// req.MaxLines; the full content is recoverable through the output store.
func (e *Executor) ReadFile(ctx context.Context, req ReadRequest) (*ReadResult, error) {
	maxLines := req.MaxLines
	if maxLines <= 0 {
		maxLines = DefaultReadMaxLines
	}

	out, _, commandID, err := e.execute(ctx, RunRequest{
		ConversationID: req.ConversationID,
		RepositoryURL:  req.RepositoryURL,
		Cmd:            "cat",
		Args:           []string{req.Path},
	})
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		return nil, fmt.Errorf("%w %s: %s", ErrFileReadFailed, req.Path, strings.TrimSpace(out.Stderr))
	}

	result := &ReadResult{
		Path:      req.Path,
		Content:   Truncate(out.Stdout, maxLines),
		CommandID: commandID,
	}
	if result.Content.Truncated {
		result.Hint = truncationHint(commandID)
	}
	return result, nil
}

// SearchFiles searches file contents under a path. With a file glob, the
// matching files are enumerated first and searched one by one; without one,
// a single recursive search runs against the path.
func (e *Executor) SearchFiles(ctx context.Context, req FileSearchRequest) (*FileSearchResult, error) {
	path := req.Path
	if path == "" {
		path = "."
	}

	if req.FileGlob != "" && req.FileGlob != "*" {
		return e.searchByGlob(ctx, req, path)
	}
	return e.searchRecursive(ctx, req, path)
}

func (e *Executor) searchByGlob(ctx context.Context, req FileSearchRequest, path string) (*FileSearchResult, error) {
	out, _, _, err := e.execute(ctx, RunRequest{
		ConversationID: req.ConversationID,
		RepositoryURL:  req.RepositoryURL,
		Cmd:            "find",
		Args:           []string{path, "-type", "f", "-name", req.FileGlob},
	})
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, strings.TrimSpace(out.Stderr))
	}

	files := splitNonEmptyLines(out.Stdout)
	if len(files) == 0 {
		return &FileSearchResult{
			Matches: []FileMatch{},
			Message: fmt.Sprintf("no files matching %q under %s", req.FileGlob, path),
		}, nil
	}

	result := &FileSearchResult{Matches: []FileMatch{}}
	for _, file := range files {
		out, _, _, err := e.execute(ctx, RunRequest{
			ConversationID: req.ConversationID,
			RepositoryURL:  req.RepositoryURL,
			Cmd:            "grep",
			Args:           []string{"-n", "-e", req.Pattern, file},
		})
		if err != nil {
			return nil, err
		}
		switch {
		case out.ExitCode == 0:
			for _, line := range splitNonEmptyLines(out.Stdout) {
				result.Matches = append(result.Matches, parseGrepLine(file, line))
			}
		case out.ExitCode == grepNoMatches:
			// no matches in this file
		default:
			return nil, fmt.Errorf("%w: %s", ErrSearchFailed, strings.TrimSpace(out.Stderr))
		}
	}

	if len(result.Matches) == 0 {
		result.Message = fmt.Sprintf("no matches for %q", req.Pattern)
	}
	return result, nil
}

func (e *Executor) searchRecursive(ctx context.Context, req FileSearchRequest, path string) (*FileSearchResult, error) {
	out, _, _, err := e.execute(ctx, RunRequest{
		ConversationID: req.ConversationID,
		RepositoryURL:  req.RepositoryURL,
		Cmd:            "grep",
		Args:           []string{"-rn", "-e", req.Pattern, path},
	})
	if err != nil {
		return nil, err
	}

	switch {
	case out.ExitCode == 0:
		result := &FileSearchResult{Matches: []FileMatch{}}
		for _, line := range splitNonEmptyLines(out.Stdout) {
			result.Matches = append(result.Matches, parseRecursiveGrepLine(line))
		}
		return result, nil
	case out.ExitCode == grepNoMatches:
		return &FileSearchResult{
			Matches: []FileMatch{},
			Message: fmt.Sprintf("no matches for %q", req.Pattern),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, strings.TrimSpace(out.Stderr))
	}
}

// parseGrepLine parses "<lineno>:<content>" from grep -n.
func parseGrepLine(file, line string) FileMatch {
	num, rest, ok := strings.Cut(line, ":")
	if ok {
		if n, err := strconv.Atoi(num); err == nil {
			return FileMatch{File: file, Line: rest, LineNumber: n}
		}
	}
	return FileMatch{File: file, Line: line}
}

// parseRecursiveGrepLine parses "<file>:<lineno>:<content>" from grep -rn.
func parseRecursiveGrepLine(line string) FileMatch {
	file, rest, ok := strings.Cut(line, ":")
	if !ok {
		return FileMatch{Line: line}
	}
	num, content, ok := strings.Cut(rest, ":")
	if ok {
		if n, err := strconv.Atoi(num); err == nil {
			return FileMatch{File: file, Line: content, LineNumber: n}
		}
	}
	return FileMatch{File: file, Line: rest}
}

func splitNonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	if lines == nil {
		lines = []string{}
	}
	return lines
}
