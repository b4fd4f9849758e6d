package helpers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadLine reads one line without its trailing newline. A final line that is
// not newline terminated is returned with a nil error; io.EOF follows on the
// next call.
func ReadLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type lineResult struct {
	line string
	err  error
}

// LineReader reads lines on a background goroutine so a caller waiting for
// input can give up when its context is cancelled. Lines are handed over one
// at a time; none is read ahead of the next request and none is lost.
type LineReader struct {
	reader   *bufio.Reader
	requests chan struct{}
	results  chan lineResult
	pending  bool
	closed   error
}

// NewLineReader wraps in.
func NewLineReader(in io.Reader) *LineReader {
	r := &LineReader{
		reader:   bufio.NewReader(in),
		requests: make(chan struct{}),
		results:  make(chan lineResult, 1),
	}
	go r.loop()
	return r
}

func (r *LineReader) loop() {
	for range r.requests {
		line, err := ReadLine(r.reader)
		r.results <- lineResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}

// ReadLine returns the next line, or ctx.Err() if ctx ends first. A line that
// arrives after cancellation is kept for the next call.
// LineReader is not safe for concurrent callers.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if r.closed != nil {
		return "", r.closed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !r.pending {
		r.requests <- struct{}{}
		r.pending = true
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-r.results:
		r.pending = false
		if res.err != nil {
			r.closed = res.err
			close(r.requests)
		}
		return res.line, res.err
	}
}

// PromptForYesNo prompts the user for a yes/no question
// Returns the default value on empty input
func PromptForYesNo(ctx context.Context, out io.Writer, reader *LineReader, promptText string, defaultValue bool) (bool, error) {
	label := buildYesNoLabel(defaultValue)
	fmt.Fprintf(out, "%s [%s]: ", promptText, label)

	line, err := reader.ReadLine(ctx)
	if err != nil {
		return false, err
	}
	line = strings.TrimSpace(strings.ToLower(line))

	if line == "" {
		return defaultValue, nil
	}

	return isAffirmativeResponse(line), nil
}

// PromptForConfirmation asks the user to confirm an action
// Returns true if the user confirms, false otherwise
func PromptForConfirmation(ctx context.Context, out io.Writer, reader *LineReader, question string) (bool, error) {
	return PromptForYesNo(ctx, out, reader, question, false)
}

// ParseIndex converts a 1-based menu choice into a 0-based index below n.
func ParseIndex(input string, n int) (int, bool) {
	idx, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || idx < 1 || idx > n {
		return 0, false
	}
	return idx - 1, true
}

// buildYesNoLabel constructs the appropriate y/N or Y/n label based on the default
func buildYesNoLabel(defaultIsYes bool) string {
	if defaultIsYes {
		return "Y/n"
	}
	return "y/N"
}

// isAffirmativeResponse checks if a response is affirmative (yes)
func isAffirmativeResponse(response string) bool {
	return response == "y" || response == "yes"
}
