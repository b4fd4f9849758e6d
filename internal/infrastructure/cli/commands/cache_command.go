package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/infernav/internal/app"
	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/infrastructure/cli/helpers"
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(containerFn ContainerFunc) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear validation and metadata caches",
	}

	cacheCmd.AddCommand(
		newCacheShowCommand(containerFn),
		newCacheClearCommand(containerFn),
	)

	return cacheCmd
}

func newCacheShowCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display cached validation verdicts and metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				return err
			}
			displayCaches(cmd.OutOrStdout(), container, time.Now())
			return nil
		},
	}
}

func newCacheClearCommand(containerFn ContainerFunc) *cobra.Command {
	var (
		validationOnly bool
		metadataOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached entries (both caches unless a flag narrows it)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if validationOnly && metadataOnly {
				return fmt.Errorf("--validation and --metadata are mutually exclusive")
			}
			container, err := containerFn()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !metadataOnly {
				if err := container.Validation.Clear(); err != nil {
					return fmt.Errorf("clear validation cache: %w", err)
				}
				fmt.Fprintf(out, "Cleared %s\n", container.Validation.Path())
			}
			if !validationOnly {
				if err := container.Metadata.Clear(); err != nil {
					return fmt.Errorf("clear metadata: %w", err)
				}
				fmt.Fprintf(out, "Cleared %s\n", container.Metadata.Path())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&validationOnly, "validation", false, "Clear only validation verdicts")
	cmd.Flags().BoolVar(&metadataOnly, "metadata", false, "Clear only notes and cached catalogs")
	return cmd
}

func displayCaches(out io.Writer, container *app.Container, now time.Time) {
	theme := helpers.NewTheme(out)

	fmt.Fprintln(out, theme.Title.Render("Validation cache: "+container.Validation.Path()))
	records := container.Validation.Records()
	if len(records) == 0 {
		fmt.Fprintln(out, "  "+msgNoValidation)
	}
	for _, rec := range records {
		verdict := "unreachable"
		if rec.Reachable {
			verdict = "reachable"
		}
		age := now.Sub(rec.CheckedAt).Truncate(time.Second)
		freshness := "stale"
		if container.Validation.IsFresh(rec, now) {
			freshness = "fresh"
		}
		fmt.Fprintf(out, "  %s  %s  checked %s ago (%s)\n", rec.Address, verdict, age, freshness)
	}

	fmt.Fprintln(out, theme.Title.Render("Metadata: "+container.Metadata.Path()))
	meta := container.Metadata.Records()
	if len(meta) == 0 {
		fmt.Fprintln(out, "  "+msgNoMetadata)
	}
	for _, rec := range meta {
		line := "  " + rec.Address
		if rec.Note != "" {
			line += "  " + theme.Note.Render("("+rec.Note+")")
		}
		if rec.ModelsCachedAt != nil {
			line += fmt.Sprintf("  %d model(s) cached %s", len(rec.Models), rec.ModelsCachedAt.Local().Format(domain.DisplayTimeFormat))
		}
		fmt.Fprintln(out, line)
	}
}
