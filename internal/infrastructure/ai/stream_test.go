package ai

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDecodeStreamHelloScenario(t *testing.T) {
	body := "{\"response\":\"Hel\"}\n{\"response\":\"lo\"}\n{}\n"
	out := &recordingWriter{}

	outcome := DecodeStream(strings.NewReader(body), out)

	if outcome.Text != "Hello" {
		t.Fatalf("Text = %q, want %q", outcome.Text, "Hello")
	}
	if !outcome.Completed {
		t.Fatal("expected clean completion on EOF")
	}
	if outcome.Fragments != 3 || outcome.Skipped != 0 {
		t.Fatalf("fragments=%d skipped=%d, want 3/0", outcome.Fragments, outcome.Skipped)
	}
	if !out.done {
		t.Fatal("writer was not finalized")
	}
}

func TestDecodeStreamSkipsMalformedFragments(t *testing.T) {
	body := strings.Join([]string{
		`{"response":"a"}`,
		`not json`,
		``,
		`{"response":`,
		`{"response":"b","done":false}`,
		`{"response":"c","done":true}`,
	}, "\n")

	outcome := DecodeStream(strings.NewReader(body), nil)
	if outcome.Text != "abc" {
		t.Fatalf("Text = %q, want %q", outcome.Text, "abc")
	}
	if outcome.Skipped != 2 {
		t.Fatalf("Skipped = %d, want 2", outcome.Skipped)
	}
	if !outcome.Completed {
		t.Fatal("final line without newline must still complete")
	}
}

func TestDecodeStreamSurfacesErrorFragment(t *testing.T) {
	outcome := DecodeStream(strings.NewReader(`{"error":"model 'x' not found"}`+"\n"), nil)
	if outcome.Detail != "model 'x' not found" {
		t.Fatalf("Detail = %q", outcome.Detail)
	}
	if outcome.Text != "" {
		t.Fatalf("unexpected text %q", outcome.Text)
	}
}

func TestDecodeStreamInterrupted(t *testing.T) {
	r := io.MultiReader(strings.NewReader("{\"response\":\"par\"}\n{\"respo"), failingReader{})
	out := &recordingWriter{}

	outcome := DecodeStream(r, out)
	if outcome.Completed {
		t.Fatal("interrupted stream must not be reported complete")
	}
	if outcome.Text != "par" {
		t.Fatalf("Text = %q, want partial output %q", outcome.Text, "par")
	}
	if !strings.Contains(outcome.Detail, "stream interrupted") {
		t.Fatalf("Detail = %q", outcome.Detail)
	}
	if !out.done {
		t.Fatal("writer must be finalized after interruption")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
