package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set at release time:
//
//	go build -ldflags "-X github.com/AntonPalyok/dotnet-monitor/cmd/dotnet-monitor/cmd.Version=v1.2.3"
//
// Binaries built with go install report the module version instead.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version, revision := buildVersion()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dotnet-monitor %s\n", version)
		if revision != "" {
			fmt.Fprintf(out, "  Revision:   %s\n", revision)
		}
		fmt.Fprintf(out, "  Go version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildVersion returns the release version and the VCS revision embedded in
// the binary, if any.
func buildVersion() (version, revision string) {
	version = Version
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, ""
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			revision = s.Value
		}
	}
	return version, revision
}
