package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// headerCmd represents the header command
var headerCmd = &cobra.Command{
	Use:   "header <file> [key]",
	Short: "Print header values from a trace file",
	Long: `Print one header value, or the well-known header keys when no key is
given.

Examples:
  pgrind header trace.pgrind
  pgrind header trace.pgrind creator`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		reader, err := openReader(cmd, args[0])
		if err != nil {
			fmt.Printf("Error opening trace: %v\n", err)
			return
		}
		defer reader.Close()

		keys := []string{"runs", "summary", "cmd", "creator", "events"}
		if len(args) == 2 {
			keys = args[1:]
		}

		for _, key := range keys {
			value, err := reader.Header(key)
			if err != nil {
				fmt.Printf("Error reading header: %v\n", err)
				return
			}
			if len(args) == 2 {
				fmt.Println(value)
			} else {
				fmt.Printf("%s: %s\n", key, value)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(headerCmd)
}
