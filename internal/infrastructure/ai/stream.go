package ai

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/infernav/internal/domain"
)

type generateFragment struct {
	Response string `json:"response"`
	Error    string `json:"error"`
	Done     bool   `json:"done"`
}

// DecodeStream reads newline-delimited JSON fragments from r until EOF, appending
// each fragment's `response` text to the outcome and to out. Malformed fragments
// are skipped. End of stream is the only completion signal; `done` is not required.
func DecodeStream(r io.Reader, out domain.StreamWriter) domain.GenerationOutcome {
	var (
		outcome domain.GenerationOutcome
		text    strings.Builder
		errs    []string
	)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			var frag generateFragment
			if jsonErr := json.Unmarshal(trimmed, &frag); jsonErr != nil {
				outcome.Skipped++
			} else {
				outcome.Fragments++
				if frag.Error != "" {
					errs = append(errs, frag.Error)
				}
				if frag.Response != "" {
					text.WriteString(frag.Response)
					if out != nil {
						out.WriteChunk(frag.Response)
					}
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				outcome.Completed = true
			} else {
				errs = append(errs, fmt.Sprintf("stream interrupted: %v", err))
			}
			break
		}
	}
	if out != nil {
		out.Done()
	}
	outcome.Text = text.String()
	outcome.Detail = strings.Join(errs, "; ")
	return outcome
}
