package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"paracord-hq/gateway/pkg/cli"
)

// Set with -ldflags "-X main.Version=... -X main.GitCommit=... -X main.BuildDate=...".
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionFlags struct {
	short bool
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the gateway version with the commit, build date and toolchain it
was built from. With --short only the version number is printed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if versionFlags.short {
			fmt.Fprintln(out, Version)
			return
		}

		fmt.Fprintf(out, "Paracord gateway %s\n", Version)
		fmt.Fprintln(out, cli.Fields{
			{Label: "Git commit", Value: commit()},
			{Label: "Build date", Value: BuildDate},
			{Label: "Go version", Value: runtime.Version()},
			{Label: "OS/Arch", Value: runtime.GOOS + "/" + runtime.GOARCH},
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionFlags.short, "short", false, "print only the version number")
}

// commit falls back to the revision the go tool stamped into the binary
// when none was set at link time.
func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return GitCommit
}
