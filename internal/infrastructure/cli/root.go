package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/infernav/internal/app"
	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/infrastructure/cli/commands"
	"github.com/doeshing/infernav/internal/infrastructure/cli/helpers"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCmd wires the cobra root command. The container is built on first use,
// after flags are parsed, so --config and --debug apply to every subcommand.
func NewRootCmd(opts Options) *cobra.Command {
	var (
		container *app.Container
		buildErr  error
	)

	containerFn := func() (*app.Container, error) {
		if buildErr != nil {
			return nil, buildErr
		}
		if container == nil {
			return nil, fmt.Errorf("container not initialised")
		}
		return container, nil
	}

	root := &cobra.Command{
		Use:   "infernav",
		Short: "infernav - browse and prompt OpenAI/Ollama-compatible servers",
		Long: "infernav validates a list of inference servers, lets you pick one and a model,\n" +
			"then streams completions for your prompts.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || container != nil {
				return nil
			}
			container, buildErr = app.BuildContainer(cmd.Context(), app.Options{
				ConfigPath: opts.ConfigPath,
				Verbose:    opts.Verbose,
			})
			// doctor reports the failure itself.
			if buildErr != nil && cmd.Name() != "doctor" {
				return buildErr
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := containerFn()
			if err != nil {
				return err
			}
			return runInteractive(cmd, c)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to the config file (yaml, json or toml)")
	root.PersistentFlags().BoolVar(&opts.Verbose, "debug", opts.Verbose, "Log debug output to stderr")

	root.AddCommand(
		commands.NewServersCommand(containerFn),
		commands.NewNotesCommand(containerFn),
		commands.NewModelsCommand(containerFn),
		commands.NewCacheCommand(containerFn),
		commands.NewConfigCommand(containerFn),
		commands.NewDoctorCommand(containerFn),
		commands.NewVersionCommand(),
	)
	return root
}

// runInteractive drives the session until the operator quits or stdin closes.
func runInteractive(cmd *cobra.Command, container *app.Container) error {
	out := cmd.OutOrStdout()
	prompter := NewPrompter(cmd.InOrStdin(), out)
	theme := helpers.NewTheme(out)

	RenderWarnings(out, theme, container.LoadWarnings())

	machine, err := container.NewSession(prompter)
	if err != nil {
		return err
	}
	if err := machine.Run(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(out, theme.Status(domain.StatusInfo, "Goodbye."))
	return nil
}
