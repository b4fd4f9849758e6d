package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/infrastructure/cli/helpers"
	"github.com/doeshing/infernav/internal/ports"
)

// Menu commands accepted at the selection prompts.
const (
	cmdEditNote   = "n"
	cmdRevalidate = "v"
	cmdQuit       = "q"
	cmdRetry      = "r"
	cmdBack       = "s"
)

// Prompter implements ports.Operator using stdin/stdout. Every read gives up
// when its context is cancelled, so an interrupt ends the session at any prompt.
type Prompter struct {
	in    *helpers.LineReader
	out   io.Writer
	theme helpers.Theme
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:    helpers.NewLineReader(in),
		out:   out,
		theme: helpers.NewTheme(out),
	}
}

// ConfirmValidation asks whether to validate servers before listing them.
func (p *Prompter) ConfirmValidation(ctx context.Context) (bool, error) {
	return helpers.PromptForYesNo(ctx, p.out, p.in, p.theme.Prompt.Render("Validate servers now?"), true)
}

// ConfirmPrune lists invalid servers and asks whether to drop them all.
func (p *Prompter) ConfirmPrune(ctx context.Context, invalid []string) (bool, error) {
	fmt.Fprintln(p.out, p.theme.Error.Render(fmt.Sprintf("%d invalid server(s):", len(invalid))))
	for _, addr := range invalid {
		fmt.Fprintf(p.out, "  - %s\n", addr)
	}
	return helpers.PromptForConfirmation(ctx, p.out, p.in, p.theme.Error.Render("Remove invalid servers?"))
}

// ChooseServer shows the valid servers and reads a choice until one parses.
func (p *Prompter) ChooseServer(ctx context.Context, servers []domain.ServerView) (domain.ServerSelection, error) {
	RenderServerMenu(p.out, p.theme, servers)
	for {
		fmt.Fprint(p.out, p.theme.Prompt.Render("Select server number")+" ")
		fmt.Fprint(p.out, p.theme.Muted.Render("(n: edit note, v: revalidate, q: quit)")+": ")
		line, err := p.in.ReadLine(ctx)
		if err != nil {
			return domain.ServerSelection{}, err
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		switch choice {
		case cmdQuit:
			return domain.Quit(), nil
		case cmdRevalidate:
			return domain.Revalidate(), nil
		case cmdEditNote:
			idx, err := p.readIndex(ctx, "Server number to annotate", len(servers))
			if err != nil {
				return domain.ServerSelection{}, err
			}
			if idx < 0 {
				continue
			}
			return domain.EditNote(servers[idx].Address), nil
		}
		if idx, ok := helpers.ParseIndex(choice, len(servers)); ok {
			return domain.ChooseServer(servers[idx].Address), nil
		}
		p.Status(domain.StatusWarn, fmt.Sprintf("Enter a number between 1 and %d", len(servers)))
	}
}

// EditNote reads a new note. Empty input clears the note.
func (p *Prompter) EditNote(ctx context.Context, address, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(p.out, "Current note for %s: %s\n", address, p.theme.Note.Render(current))
	}
	fmt.Fprint(p.out, p.theme.Prompt.Render(fmt.Sprintf("New note for %s (empty clears)", address))+": ")
	line, err := p.in.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ChooseModel shows the catalog and reads a model choice, "r" to refetch or
// "s" to return to server selection.
func (p *Prompter) ChooseModel(ctx context.Context, address string, models []domain.ModelDescriptor) (domain.ModelSelection, error) {
	RenderModelMenu(p.out, p.theme, address, models)
	for {
		label := "Select model number"
		if len(models) == 0 {
			label = "No models to choose from"
		}
		fmt.Fprint(p.out, p.theme.Prompt.Render(label)+" ")
		fmt.Fprint(p.out, p.theme.Muted.Render("(r: refresh, s: change server)")+": ")
		line, err := p.in.ReadLine(ctx)
		if err != nil {
			return domain.ModelSelection{}, err
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		switch choice {
		case cmdRetry:
			return domain.Retry(), nil
		case cmdBack:
			return domain.BackToServer(), nil
		}
		if idx, ok := helpers.ParseIndex(choice, len(models)); ok {
			return domain.Selected(models[idx]), nil
		}
		if len(models) == 0 {
			p.Status(domain.StatusWarn, "Enter r or s")
		} else {
			p.Status(domain.StatusWarn, fmt.Sprintf("Enter a number between 1 and %d, r or s", len(models)))
		}
	}
}

// ReadPrompt reads one raw prompt line; the session interprets reserved tokens.
func (p *Prompter) ReadPrompt(ctx context.Context, address, model string) (string, error) {
	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, p.theme.Muted.Render(fmt.Sprintf("[%s @ %s]", model, address))+" ")
	fmt.Fprint(p.out, p.theme.Prompt.Render("Enter prompt")+" ")
	fmt.Fprint(p.out, p.theme.Warn.Render(fmt.Sprintf("('%s' change model, '%s' change server)", domain.TokenChangeModel, domain.TokenChangeServer))+": ")
	return p.in.ReadLine(ctx)
}

// Status prints one status line.
func (p *Prompter) Status(level domain.StatusLevel, msg string) {
	fmt.Fprintln(p.out, p.theme.Status(level, msg))
}

// Busy shows a spinner until the returned stop func is called.
func (p *Prompter) Busy(label string) func() {
	spinner := NewSpinner(p.out, p.theme.Muted.Render(label))
	spinner.Start()
	return spinner.Stop
}

// StreamWriter returns a writer that prints generated text as it arrives.
func (p *Prompter) StreamWriter() domain.StreamWriter {
	return NewStreamWriter(p.out)
}

// readIndex reads a 1-based index; -1 means the input did not parse.
func (p *Prompter) readIndex(ctx context.Context, label string, n int) (int, error) {
	fmt.Fprint(p.out, p.theme.Prompt.Render(label)+": ")
	line, err := p.in.ReadLine(ctx)
	if err != nil {
		return -1, err
	}
	idx, ok := helpers.ParseIndex(line, n)
	if !ok {
		p.Status(domain.StatusWarn, fmt.Sprintf("Enter a number between 1 and %d", n))
		return -1, nil
	}
	return idx, nil
}

var _ ports.Operator = (*Prompter)(nil)
