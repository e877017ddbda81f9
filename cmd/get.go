package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mavyfaby/tiny-excel/xlsx"
)

var getSheet int

var getCmd = &cobra.Command{
	Use:   "get <file> <address>",
	Short: "Read a cell's text value",
	Long: `Read the text value of one cell.

Only string cells resolve to text; a numeric or formula cell, like a cell
that was never written, reads as empty.

Examples:
  tiny-excel get report.xlsx A1
  tiny-excel get report.xlsx B12 --sheet 2
  tiny-excel get report.xlsx A1 --json`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().IntVarP(&getSheet, "sheet", "s", 0, "Zero-based sheet index")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	filePath, address := args[0], args[1]

	wb := xlsx.New(filePath)
	if err := wb.Load(xlsx.LoadOptions{}); err != nil {
		return err
	}

	index := resolveSheet(cmd, getSheet)
	sheet, err := wb.GetSheet(index)
	if err != nil {
		return err
	}

	value, ok, err := sheet.GetCell(address)
	if err != nil {
		return err
	}

	if jsonOutput {
		out := map[string]any{
			"sheet":   index,
			"address": address,
			"empty":   !ok,
		}
		if ok {
			out["value"] = value
		}
		return jsonPrint(out)
	}

	if !ok {
		fmt.Printf("%s is empty\n", address)
		return nil
	}
	fmt.Println(value)
	return nil
}
