package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show trace file metadata",
	Long: `Show the metadata of a preprocessed trace file: function count, the
recorded time unit and the aggregated header values.

Example:
  pgrind info trace.pgrind`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reader, err := openReader(cmd, args[0])
		if err != nil {
			fmt.Printf("Error opening trace: %v\n", err)
			return
		}
		defer reader.Close()

		runs, err := reader.Runs()
		if err != nil {
			fmt.Printf("Error reading header: %v\n", err)
			return
		}
		summary, _ := reader.Summary()

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintf(w, "functions:\t%d\n", reader.FunctionCount())
		fmt.Fprintf(w, "time unit:\t%s\n", reader.TimeUnit())
		fmt.Fprintf(w, "runs:\t%d\n", runs)
		fmt.Fprintf(w, "summary:\t%g\n", summary)
		for _, key := range []string{"cmd", "creator", "events"} {
			value, err := reader.Header(key)
			if err != nil {
				fmt.Printf("Error reading header: %v\n", err)
				return
			}
			fmt.Fprintf(w, "%s:\t%s\n", key, value)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
