package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/content"
)

// version is set via -ldflags at build time.
var version = "(devel)"

// buildRevision returns the short VCS revision stamped by the Go toolchain,
// with a "+dirty" suffix for modified trees.
func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev, dirty string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "+dirty"
			}
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev == "" {
		return ""
	}
	return rev + dirty
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build and the goal file format it reads",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if rev := buildRevision(); rev != "" {
			fmt.Fprintf(out, "pathwise %s (%s)\n", version, rev)
		} else {
			fmt.Fprintf(out, "pathwise %s\n", version)
		}
		fmt.Fprintf(out, "goal files: version %s\n", content.SupportedVersion)
	},
}
