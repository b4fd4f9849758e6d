package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewNotesCommand creates the notes command with all subcommands
func NewNotesCommand(containerFn ContainerFunc) *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Annotate servers",
	}

	notesCmd.AddCommand(
		&cobra.Command{
			Use:   "set <address> [note...]",
			Short: "Set the note for a server (no note clears it)",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				container, err := containerFn()
				if err != nil {
					return err
				}
				note := strings.TrimSpace(strings.Join(args[1:], " "))
				if err := container.Metadata.SetNote(args[0], note); err != nil {
					return err
				}
				if note == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared note for %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Note saved for %s\n", args[0])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <address>",
			Short: "Show the note for a server",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				container, err := containerFn()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), container.Metadata.GetNote(args[0]))
				return nil
			},
		},
	)

	return notesCmd
}
