package scan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrAnchorNotFound is returned (wrapped in an AnchorError) when a required
// anchor is missing before end of input.
var ErrAnchorNotFound = errors.New("anchor not found")

// Position identifies a point in the stream: the byte offset of the next
// unread line and the number of lines consumed so far.
type Position struct {
	Offset int64 `json:"offset"`
	Line   int   `json:"line"`
}

func (p Position) String() string {
	return fmt.Sprintf("line %d (offset %d)", p.Line, p.Offset)
}

// AnchorError reports a required anchor that was not found.
type AnchorError struct {
	Pattern string
	From    Position
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("anchor %q not found after %s", e.Pattern, e.From)
}

func (e *AnchorError) Unwrap() error {
	return ErrAnchorNotFound
}

// Match is a line that satisfied an anchor pattern.
type Match struct {
	// Groups holds the full match at index 0 followed by the captured groups.
	Groups []string
	// Text is the matching line without its line terminator.
	Text string
	// Line is the 1-based line number of the match.
	Line int
}

// Group returns captured group i, or "" if it does not exist.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// Cursor is a forward-only line reader over a seekable stream. It never
// rewinds on its own; callers save and restore positions explicitly.
type Cursor struct {
	src io.ReadSeeker
	r   *bufio.Reader
	pos Position
}

// NewCursor creates a cursor positioned at the start of src.
func NewCursor(src io.ReadSeeker) *Cursor {
	return &Cursor{src: src, r: bufio.NewReader(src)}
}

// Position returns the current read position.
func (c *Cursor) Position() Position {
	return c.pos
}

// Restore moves the cursor back (or forward) to a previously saved position.
func (c *Cursor) Restore(p Position) error {
	if _, err := c.src.Seek(p.Offset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to %s: %w", p, err)
	}
	c.r.Reset(c.src)
	c.pos = p
	return nil
}

// Rewind moves the cursor to the start of the stream.
func (c *Cursor) Rewind() error {
	return c.Restore(Position{})
}

// next returns the next raw line including its terminator.
func (c *Cursor) next() (string, error) {
	line, err := c.r.ReadString('\n')
	if len(line) > 0 {
		c.pos.Offset += int64(len(line))
		c.pos.Line++
		return line, nil
	}
	if err == nil {
		err = io.EOF
	}
	return "", err
}

// ReadLine returns the next line without its terminator. It returns io.EOF
// when the stream is exhausted.
func (c *Cursor) ReadLine() (string, error) {
	raw, err := c.next()
	if err != nil {
		return "", err
	}
	return trimEOL(raw), nil
}

// Fields reads the next line and splits it on whitespace.
func (c *Cursor) Fields() ([]string, error) {
	line, err := c.ReadLine()
	if err != nil {
		return nil, err
	}
	return strings.Fields(line), nil
}

// Skip discards n lines.
func (c *Cursor) Skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := c.next(); err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// Find advances until a line's prefix matches re. Reaching the end of the
// stream is reported as found=false, not as an error.
func (c *Cursor) Find(re *regexp.Regexp) (Match, bool, error) {
	_, m, ok, err := c.FindAny(re)
	return m, ok, err
}

// FindAny advances until a line's prefix matches one of the candidate
// patterns and reports which one matched. Candidates are tried in order on
// each line.
func (c *Cursor) FindAny(res ...*regexp.Regexp) (int, Match, bool, error) {
	for {
		raw, err := c.next()
		if errors.Is(err, io.EOF) {
			return -1, Match{}, false, nil
		}
		if err != nil {
			return -1, Match{}, false, fmt.Errorf("reading line %d: %w", c.pos.Line+1, err)
		}
		for i, re := range res {
			if groups := matchPrefix(re, raw); groups != nil {
				return i, Match{Groups: groups, Text: trimEOL(raw), Line: c.pos.Line}, true, nil
			}
		}
	}
}

// Require is Find for anchors whose absence means corrupt input.
func (c *Cursor) Require(re *regexp.Regexp) (Match, error) {
	from := c.pos
	m, ok, err := c.Find(re)
	if err != nil {
		return Match{}, err
	}
	if !ok {
		return Match{}, &AnchorError{Pattern: re.String(), From: from}
	}
	return m, nil
}

// Probe is Find for optional anchors: when the anchor is absent the cursor
// is restored to where the search started so no input is consumed.
func (c *Cursor) Probe(re *regexp.Regexp) (Match, bool, error) {
	from := c.pos
	m, ok, err := c.Find(re)
	if err != nil || ok {
		return m, ok, err
	}
	return Match{}, false, c.Restore(from)
}

// matchPrefix returns the submatches of re in s when the match starts at
// the first byte of s.
func matchPrefix(re *regexp.Regexp, s string) []string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 {
		return nil
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}

func trimEOL(s string) string {
	return strings.TrimRight(s, "\r\n")
}
