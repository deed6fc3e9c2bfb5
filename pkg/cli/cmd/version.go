package cmd

import (
	"github.com/biolinks/biolinks/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Biolinks CLI version",
	Example: `
biolinks version
`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("%s version: %s\n", version.Component(), version.Version())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
