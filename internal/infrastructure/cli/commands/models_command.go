package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/infernav/internal/app"
	"github.com/doeshing/infernav/internal/domain"
)

// NewModelsCommand creates the models command with all subcommands
func NewModelsCommand(containerFn ContainerFunc) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect server model catalogs",
	}

	modelsCmd.AddCommand(
		&cobra.Command{
			Use:   "list <address>",
			Short: "List models, fetching the catalog only when none is cached",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				container, err := containerFn()
				if err != nil {
					return err
				}
				return listModels(cmd.Context(), cmd.OutOrStdout(), container, args[0], false)
			},
		},
		&cobra.Command{
			Use:   "refresh <address>",
			Short: "Drop the cached catalog and fetch it again",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				container, err := containerFn()
				if err != nil {
					return err
				}
				return listModels(cmd.Context(), cmd.OutOrStdout(), container, args[0], true)
			},
		},
	)

	return modelsCmd
}

func listModels(ctx context.Context, out io.Writer, container *app.Container, address string, refresh bool) error {
	if refresh {
		if err := container.Metadata.ClearModels(address); err != nil {
			return err
		}
	}
	models := container.Metadata.GetCachedModels(address)
	source := "cached"
	if len(models) == 0 {
		models = container.Client.FetchModels(ctx, address)
		source = "live"
		if len(models) > 0 {
			if err := container.Metadata.CacheModels(address, models); err != nil {
				return fmt.Errorf("cache models: %w", err)
			}
		}
	}
	if len(models) == 0 {
		return fmt.Errorf("no models available on %s", address)
	}
	fmt.Fprintf(out, "%d model(s) on %s (%s):\n", len(models), address, source)
	for _, id := range domain.ModelIDs(models) {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}
