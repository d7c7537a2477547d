package chunker

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxSize = 8000
	DefaultOverlap = 200
)

// separators are tried in order; a lower-priority one is used only when no
// higher-priority split point fits inside the window.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(" "),
}

// Options controls how text is chunked. Sizes are counted in characters (runes).
type Options struct {
	MaxSize int
	Overlap int
}

// DefaultOptions returns the sizes used when nothing is configured.
func DefaultOptions() Options {
	return Options{MaxSize: DefaultMaxSize, Overlap: DefaultOverlap}
}

// Chunk represents a slice of the source text. Start and End are rune offsets
// into the source, End exclusive.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}

// ValidationError reports chunking options that violate MaxSize > Overlap >= 0.
type ValidationError struct {
	MaxSize int
	Overlap int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid chunk options: max size %d must be greater than overlap %d, and overlap must not be negative", e.MaxSize, e.Overlap)
}

// Validate checks the options, applying the default size when MaxSize is zero.
func (o Options) Validate() (Options, error) {
	if o.MaxSize == 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.Overlap < 0 || o.MaxSize <= o.Overlap {
		return o, &ValidationError{MaxSize: o.MaxSize, Overlap: o.Overlap}
	}
	return o, nil
}

// Split breaks text into overlapping chunks of at most opts.MaxSize characters.
// Boundaries prefer paragraph breaks, then line breaks, then spaces, and fall
// back to a hard cut when none of them fits in the window.
//
// Invalid UTF-8 is replaced with U+FFFD first; offsets and the reconstruction
// of the chunks refer to that sanitized text.
func Split(text string, opts Options) ([]Chunk, error) {
	opts, err := opts.Validate()
	if err != nil {
		return nil, err
	}

	runes := []rune(Sanitize(text))
	var chunks []Chunk
	if len(runes) == 0 {
		return chunks, nil
	}

	cursor, prevEnd := 0, 0
	for {
		limit := cursor + opts.MaxSize
		end := len(runes)
		if limit < len(runes) {
			end = boundary(runes, max(cursor, prevEnd), limit)
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Start: cursor,
			End:   end,
			Text:  string(runes[cursor:end]),
		})
		if end == len(runes) {
			return chunks, nil
		}
		prevEnd = end
		cursor = max(end-opts.Overlap, cursor+1)
	}
}

// Sanitize replaces each run of invalid UTF-8 bytes with U+FFFD. Valid text
// is returned unchanged.
func Sanitize(text string) string {
	return strings.ToValidUTF8(text, "\uFFFD")
}

// boundary finds the split point in (floor, limit]. The chunk ends just before
// the separator, so the separator opens the following span.
func boundary(runes []rune, floor, limit int) int {
	for _, sep := range separators {
		if p := lastIndex(runes, sep, floor, limit); p > 0 {
			return p
		}
	}
	return limit
}

// lastIndex returns the latest position p with floor < p <= limit where sep
// starts, or -1.
func lastIndex(runes, sep []rune, floor, limit int) int {
	for p := limit; p > floor; p-- {
		if p+len(sep) > len(runes) {
			continue
		}
		if hasPrefixAt(runes, sep, p) {
			return p
		}
	}
	return -1
}

func hasPrefixAt(runes, sep []rune, p int) bool {
	for i, r := range sep {
		if runes[p+i] != r {
			return false
		}
	}
	return true
}

// Texts returns the text of each chunk in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
