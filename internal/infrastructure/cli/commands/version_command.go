package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/doeshing/infernav/internal/version"
)

// buildInfo is what `infernav version` reports.
type buildInfo struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

func currentBuild() buildInfo {
	return buildInfo{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show infernav build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			writeBuildInfo(cmd.OutOrStdout(), currentBuild(), short)
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

// writeBuildInfo prints info; fields not stamped at link time show as "unknown".
func writeBuildInfo(out io.Writer, info buildInfo, short bool) {
	if short {
		fmt.Fprintln(out, info.Version)
		return
	}
	fmt.Fprintf(out, "infernav %s\n", info.Version)
	fmt.Fprintf(out, "  commit:   %s\n", orUnknown(info.Commit))
	fmt.Fprintf(out, "  built:    %s\n", orUnknown(info.BuildDate))
	fmt.Fprintf(out, "  go:       %s %s\n", info.GoVersion, info.Platform)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
