package cmd

import (
	"fmt"

	"github.com/coreos/go-semver/semver"
	"github.com/spf13/cobra"

	mhtml "github.com/zostay/go-mhtml"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE:  RunVersion,
}

// RunVersion prints the version of the module.
func RunVersion(cmd *cobra.Command, _ []string) error {
	ver, err := semver.NewVersion(mhtml.Version)
	if err != nil {
		return fmt.Errorf("bad version %q: %w", mhtml.Version, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mhtml v%s\n", ver)
	if ver.Major == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "pre-release: options and output may still change")
	}

	return nil
}
