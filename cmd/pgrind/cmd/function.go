package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// functionCmd represents the function command
var functionCmd = &cobra.Command{
	Use:   "function <file> <nr>",
	Short: "Show one function record with its call edges",
	Long: `Decode a single function record, including every called-from and
sub-call edge recorded for it.

Example:
  pgrind function trace.pgrind 42 --format msec`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		nr, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid function number %q\n", args[1])
			return
		}

		reader, err := openReader(cmd, args[0])
		if err != nil {
			fmt.Printf("Error opening trace: %v\n", err)
			return
		}
		defer reader.Close()

		info, err := reader.FunctionInfo(uint32(nr))
		if err != nil {
			fmt.Printf("Error decoding function: %v\n", err)
			return
		}

		fmt.Printf("%s\n  %s:%d\n", info.Function, info.File, info.Line)
		fmt.Printf("  self %s, inclusive %s, %d invocation(s)\n",
			info.FormattedSelfCost, info.FormattedInclusiveCost, info.InvocationCount)

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		for i := uint32(0); i < info.CalledFromCount; i++ {
			call, err := reader.CalledFromInfo(info.Nr, i)
			if err != nil {
				fmt.Printf("Error decoding called-from record %d: %v\n", i, err)
				return
			}
			fmt.Fprintf(w, "called from\t#%d\tline %d\t%d call(s)\t%s\n",
				call.FunctionNr, call.Line, call.CallCount, call.FormattedCost)
		}
		for i := uint32(0); i < info.SubCallCount; i++ {
			call, err := reader.SubCallInfo(info.Nr, i)
			if err != nil {
				fmt.Printf("Error decoding sub-call record %d: %v\n", i, err)
				return
			}
			fmt.Fprintf(w, "calls\t#%d\tline %d\t%d call(s)\t%s\n",
				call.FunctionNr, call.Line, call.CallCount, call.FormattedCost)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(functionCmd)
}
