package cmd

import (
	"os"

	"github.com/pgrind/pgrind/pkg/trace"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pgrind",
	Short: "pgrind - random-access decoder for preprocessed call-graph traces",
	Long: `pgrind decodes the compact binary trace files produced by the offline
call-graph preprocessor. Queries seek straight to the requested record, so
even large traces open instantly.`,
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
	rootCmd.PersistentFlags().StringP("format", "f", "usec", "Cost format: percent, msec or usec")
}

// openReader opens a trace file with the cost format chosen on the command line.
func openReader(cmd *cobra.Command, path string) (*trace.Reader, error) {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := trace.ParseCostFormat(formatFlag)
	if err != nil {
		return nil, err
	}
	return trace.Open(path, format)
}
