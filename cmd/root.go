package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kiwicloudninja/arnexport/internal/logs"
	"github.com/kiwicloudninja/arnexport/internal/message"
)

var (
	outputDir string
	quiet     bool
	noColor   bool
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "arnexport",
	Short: "arnexport creates a CloudFormation template in YAML format from an AWS resource ARN.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		message.SetQuiet(quiet)
		if noColor {
			message.SetNoColor(true)
		}
		logs.SetVerbose(verbose)
		logs.ConsoleLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "templates", "directory template files are written to")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress user messages")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, including AWS SDK wire logs")
}
