package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aglab",
	Short: "Artificial grammar learning experiment runner",
	Long: `aglab runs artificial grammar learning sessions in the terminal.

Participants first copy nonsense words until they reproduce each one exactly,
then judge new words as grammatical or ungrammatical with a single keypress.
Results are written as CSV files, one directory per participant, and can be
summarised with the analyze command.`,
	SilenceUsage: true,
}

// Flags
var cfgPath string

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "YAML config file (default: built-in settings)")
}
