package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/mavyfaby/tiny-excel/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "tiny-excel",
	Short: "Tiny Excel — edit workbook cells from the command line",
	Long: `Read and write individual cells of .xlsx workbooks in place.

Cells are addressed as <column letters><row number>, e.g. A1 or AB12.
Everything in the package that is not a cell value (styles, relationships,
content types) passes through saves untouched.

Output:
  default  Human-friendly summaries
  --json   Machine-readable JSON for automation`,
	Version:       Version,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-formatted summaries")
}

// resolveSheet picks the sheet index for a command: the --sheet flag when
// given, else the configured default, else 0.
func resolveSheet(cmd *cobra.Command, flagValue int) int {
	if cmd.Flags().Changed("sheet") {
		return flagValue
	}
	cfg, err := config.Load()
	if err == nil && cfg.DefaultSheet != nil {
		return *cfg.DefaultSheet
	}
	return flagValue
}

func Execute() error {
	return rootCmd.Execute()
}

// ExitError signals a non-zero exit code without printing an error message.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return "" }

// jsonPrint writes v to stdout as indented JSON, for --json output modes.
func jsonPrint(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
