package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/doeshing/infernav/internal/application/registry"
	"github.com/doeshing/infernav/internal/application/session"
	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/infrastructure/cache"
	"github.com/doeshing/infernav/internal/pkg/logger"
)

// watchWriter records output and closes seen once want has been written.
type watchWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	want string
	seen chan struct{}
	once sync.Once
}

func newWatchWriter(want string) *watchWriter {
	return &watchWriter{want: want, seen: make(chan struct{})}
}

func (w *watchWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.buf.Write(p)
	if strings.Contains(w.buf.String(), w.want) {
		w.once.Do(func() { close(w.seen) })
	}
	return n, err
}

func (w *watchWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func (w *watchWriter) wait(t *testing.T) {
	t.Helper()
	select {
	case <-w.seen:
	case <-time.After(2 * time.Second):
		t.Fatalf("never saw %q in output:\n%s", w.want, w.String())
	}
}

type fixedRegistry struct{ valid []string }

func (r fixedRegistry) ValidateAll(context.Context, bool, registry.Reviewer) (domain.ValidationReport, error) {
	return domain.ValidationReport{Valid: r.valid, Invalid: []string{}}, nil
}

func (r fixedRegistry) GetAvailable(context.Context, bool, registry.Reviewer) ([]string, error) {
	return r.valid, nil
}

type fixedCatalog struct{}

func (fixedCatalog) FetchModels(context.Context, string) []domain.ModelDescriptor {
	return []domain.ModelDescriptor{{ID: "llama3"}}
}

type unusedStreamer struct{}

func (unusedStreamer) Generate(context.Context, string, string, string, domain.StreamWriter) domain.GenerationOutcome {
	return domain.GenerationOutcome{Detail: "unexpected generation"}
}

func TestPrompterReadsReturnOnCancel(t *testing.T) {
	calls := map[string]func(context.Context, *Prompter) error{
		"ConfirmValidation": func(ctx context.Context, p *Prompter) error {
			_, err := p.ConfirmValidation(ctx)
			return err
		},
		"ConfirmPrune": func(ctx context.Context, p *Prompter) error {
			_, err := p.ConfirmPrune(ctx, []string{"10.0.0.9:11434"})
			return err
		},
		"ChooseServer": func(ctx context.Context, p *Prompter) error {
			_, err := p.ChooseServer(ctx, testServers)
			return err
		},
		"EditNote": func(ctx context.Context, p *Prompter) error {
			_, err := p.EditNote(ctx, "10.0.0.1:11434", "")
			return err
		},
		"ChooseModel": func(ctx context.Context, p *Prompter) error {
			_, err := p.ChooseModel(ctx, "10.0.0.1:11434", testModels)
			return err
		},
		"ReadPrompt": func(ctx context.Context, p *Prompter) error {
			_, err := p.ReadPrompt(ctx, "10.0.0.1:11434", "llama3")
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			pr, pw := io.Pipe()
			defer pw.Close()
			p := NewPrompter(pr, io.Discard)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- call(ctx, p) }()
			time.AfterFunc(20*time.Millisecond, cancel)

			select {
			case err := <-done:
				require.ErrorIs(t, err, context.Canceled)
			case <-time.After(2 * time.Second):
				t.Fatal("read did not return after cancellation")
			}
		})
	}
}

func TestSessionEndsWhenInterruptedAtServerMenu(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	out := newWatchWriter("Select server number")
	prompter := NewPrompter(pr, out)

	metadata := cache.NewMetadataStore(filepath.Join(t.TempDir(), "metadata.json"), logger.NewNop())
	machine, err := session.New(session.Dependencies{
		Registry: fixedRegistry{valid: []string{"10.0.0.1:11434"}},
		Metadata: metadata,
		Catalog:  fixedCatalog{},
		Streamer: unusedStreamer{},
		Operator: prompter,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- machine.Run(ctx) }()

	_, err = io.WriteString(pw, "y\n")
	require.NoError(t, err)
	out.wait(t)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session kept waiting for input after cancellation")
	}
	require.Equal(t, domain.StateDone, machine.State())
	require.Empty(t, machine.Server())
}

func TestRootCommandInterruptedAtPromptSaysGoodbye(t *testing.T) {
	dir := t.TempDir()
	cfg := fmt.Sprintf("servers_file: %s\nvalidation_cache_file: %s\nmetadata_file: %s\nlog_level: error\n",
		filepath.Join(dir, "servers.txt"),
		filepath.Join(dir, "validation.csv"),
		filepath.Join(dir, "metadata.json"),
	)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	pr, pw := io.Pipe()
	defer pw.Close()
	out := newWatchWriter("Validate servers now?")

	root := NewRootCmd(Options{ConfigPath: cfgPath})
	root.SetArgs([]string{})
	root.SetIn(pr)
	root.SetOut(out)
	root.SetErr(out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	out.wait(t)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("interactive session kept waiting for input after cancellation")
	}
	require.Contains(t, out.String(), "Goodbye.")
}
