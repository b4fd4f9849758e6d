package cli

import (
	"fmt"
	"io"
)

// streamWriter prints generated text as it streams, without added newlines.
type streamWriter struct {
	out io.Writer
}

// NewStreamWriter builds a streamWriter for stdout/stderr.
func NewStreamWriter(out io.Writer) *streamWriter {
	return &streamWriter{out: out}
}

func (s *streamWriter) WriteChunk(text string) {
	if text == "" {
		return
	}
	fmt.Fprint(s.out, text)
}

func (s *streamWriter) Done() {
	fmt.Fprintln(s.out)
}
