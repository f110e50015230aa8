package bridge

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

const (
	errorPrefix = "ERROR: "
	skipPrefix  = "SKIP: "
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// lineWriter writes whole lines and flushes after each one.
type lineWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (lw *lineWriter) WriteLine(line string) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if _, err := lw.w.WriteString(line); err != nil {
		return err
	}
	if err := lw.w.WriteByte('\n'); err != nil {
		return err
	}
	return lw.w.Flush()
}

// Output is the caller-facing side of the bridge: segment text on the result
// stream, prefixed diagnostics on the diagnostic stream.
type Output struct {
	results     *lineWriter
	diagnostics *lineWriter
}

// NewOutput wraps the result and diagnostic streams.
func NewOutput(results, diagnostics io.Writer) *Output {
	return &Output{
		results:     newLineWriter(results),
		diagnostics: newLineWriter(diagnostics),
	}
}

// Segment writes one segment as one line. Empty segments still produce a
// line so the output keeps one line per segment.
func (o *Output) Segment(text string) error {
	return o.results.WriteLine(SanitizeSegment(text))
}

// Error writes an "ERROR: " diagnostic.
func (o *Output) Error(err error) {
	o.diagnostics.WriteLine(errorPrefix + singleLine(err.Error()))
}

// Skip writes a "SKIP: " diagnostic for a path that was not processed.
func (o *Output) Skip(path string) {
	o.diagnostics.WriteLine(skipPrefix + singleLine(path))
}

// SanitizeSegment keeps engine text on a single valid UTF-8 line. The text is
// otherwise passed through unchanged.
func SanitizeSegment(text string) string {
	return lineBreaks.Replace(strings.ToValidUTF8(text, "\uFFFD"))
}

func singleLine(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}
