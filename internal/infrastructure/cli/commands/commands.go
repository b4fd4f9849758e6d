package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/doeshing/infernav/internal/app"
	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/infrastructure/cli/helpers"
)

// ContainerFunc yields the dependency container once flags are parsed.
type ContainerFunc func() (*app.Container, error)

// Success messages
const (
	msgConfigurationValid = "Configuration valid"
	msgNoServers          = "No servers registered."
	msgNoValidation       = "No validation records."
	msgNoMetadata         = "No server metadata."
)

// statusReviewer prints validation progress and asks before pruning.
type statusReviewer struct {
	out       io.Writer
	in        *helpers.LineReader
	theme     helpers.Theme
	assumeYes bool
}

func newStatusReviewer(in io.Reader, out io.Writer, assumeYes bool) *statusReviewer {
	return &statusReviewer{out: out, in: helpers.NewLineReader(in), theme: helpers.NewTheme(out), assumeYes: assumeYes}
}

func (r *statusReviewer) Status(level domain.StatusLevel, msg string) {
	fmt.Fprintln(r.out, r.theme.Status(level, msg))
}

func (r *statusReviewer) ConfirmPrune(ctx context.Context, invalid []string) (bool, error) {
	if r.assumeYes {
		return true, nil
	}
	return helpers.PromptForConfirmation(ctx, r.out, r.in, fmt.Sprintf("Remove %d invalid server(s)?", len(invalid)))
}
