package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pgrind/pgrind/pkg/analyze"
	"github.com/spf13/cobra"
)

// functionsCmd represents the functions command
var functionsCmd = &cobra.Command{
	Use:   "functions <file>",
	Short: "List the most expensive functions",
	Long: `List the functions of a trace ordered by cost.

Examples:
  pgrind functions trace.pgrind
  pgrind functions trace.pgrind --by inclusive --limit 10 --format percent`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		byFlag, _ := cmd.Flags().GetString("by")
		limit, _ := cmd.Flags().GetInt("limit")

		by, err := analyze.ParseSortKey(byFlag)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		reader, err := openReader(cmd, args[0])
		if err != nil {
			fmt.Printf("Error opening trace: %v\n", err)
			return
		}
		defer reader.Close()

		summaries, err := analyze.Hotspots(reader, by, limit)
		if err != nil {
			fmt.Printf("Error decoding trace: %v\n", err)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NR\tSELF\tINCL\tCALLS\tFUNCTION\tFILE")
		for _, s := range summaries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s:%d\n",
				s.Nr, s.FormattedSelfCost, s.FormattedInclusiveCost,
				s.InvocationCount, s.Function, s.File, s.Line)
		}
		w.Flush()
	},
}

func init() {
	functionsCmd.Flags().String("by", "self", "Sort key: self or inclusive")
	functionsCmd.Flags().IntP("limit", "n", 20, "Maximum number of functions to list (0 = all)")
	rootCmd.AddCommand(functionsCmd)
}
