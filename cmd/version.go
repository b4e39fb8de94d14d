package cmd

import (
	"github.com/kiwicloudninja/arnexport/internal/message"
	"github.com/kiwicloudninja/arnexport/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of arnexport",
	Run: func(cmd *cobra.Command, args []string) {
		message.Info("%s", version.FullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
