package cli

import (
	"fmt"
	"io"

	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/infrastructure/cli/helpers"
)

// RenderServerMenu prints the numbered list of selectable servers.
func RenderServerMenu(out io.Writer, theme helpers.Theme, servers []domain.ServerView) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, theme.Title.Render("Available servers:"))
	for i, s := range servers {
		fmt.Fprintln(out, theme.MenuItem(i+1, s.Address, s.Note))
	}
}

// RenderModelMenu prints the numbered catalog of a server.
func RenderModelMenu(out io.Writer, theme helpers.Theme, address string, models []domain.ModelDescriptor) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Available models on %s:", address)))
	for i, m := range models {
		fmt.Fprintln(out, theme.MenuItem(i+1, m.ID, ""))
	}
}

// RenderWarnings prints startup warnings as status lines.
func RenderWarnings(out io.Writer, theme helpers.Theme, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(out, theme.Status(domain.StatusWarn, w))
	}
}
