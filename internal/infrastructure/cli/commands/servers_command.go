package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/infernav/internal/app"
	"github.com/doeshing/infernav/internal/infrastructure/cli/helpers"
)

// NewServersCommand creates the servers command with all subcommands
func NewServersCommand(containerFn ContainerFunc) *cobra.Command {
	serversCmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage the server list",
	}

	serversCmd.AddCommand(
		newServersListCommand(containerFn),
		newServersAddCommand(containerFn),
		newServersRemoveCommand(containerFn),
		newServersValidateCommand(containerFn),
	)

	return serversCmd
}

func newServersListCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List servers with their last validation verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			return listServers(cmd.OutOrStdout(), container, time.Now())
		},
	}
}

func newServersAddCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "add <address>",
		Short: "Append a server address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			if err := container.Registry.Add(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", args[0])
			return nil
		},
	}
}

func newServersRemoveCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <address>",
		Short: "Remove a server address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			if err := container.Registry.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newServersValidateCommand(containerFn ContainerFunc) *cobra.Command {
	var (
		noCache bool
		prune   bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Probe servers and optionally prune unreachable ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			reviewer := newStatusReviewer(cmd.InOrStdin(), cmd.OutOrStdout(), prune)
			report, err := container.Registry.ValidateAll(cmd.Context(), !noCache, reviewer)
			if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d valid, %d invalid\n", len(report.Valid), len(report.Invalid))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Probe every server even when a fresh verdict is cached")
	cmd.Flags().BoolVarP(&prune, "yes", "y", false, "Remove invalid servers without asking")
	return cmd
}

func listServers(out io.Writer, container *app.Container, now time.Time) error {
	known := container.Registry.Known()
	if len(known) == 0 {
		fmt.Fprintln(out, msgNoServers)
		return nil
	}
	theme := helpers.NewTheme(out)
	for i, addr := range known {
		verdict := theme.Muted.Render("unknown")
		if rec, ok := container.Validation.Get(addr); ok {
			switch {
			case rec.Reachable:
				verdict = theme.Success.Render("reachable")
			default:
				verdict = theme.Error.Render("unreachable")
			}
			if !container.Validation.IsFresh(rec, now) {
				verdict += theme.Muted.Render(" (stale)")
			}
		}
		fmt.Fprintf(out, "%s  %s\n", theme.MenuItem(i+1, addr, container.Metadata.GetNote(addr)), verdict)
	}
	return nil
}
