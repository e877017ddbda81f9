package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mavyfaby/tiny-excel/xlsx"
)

var setSheet int

var setCmd = &cobra.Command{
	Use:   "set <file> <address=value ...>",
	Short: "Write cell values or formulas and save the workbook",
	Long: `Set one or more cells and write the workbook back in place.

Each edit is specified as address=value. A value starting with = is stored
as a formula (so use a double = after the address). A value that parses as
a number is stored as a raw numeric literal; everything else is stored as
text through the shared string table.

Examples:
  tiny-excel set report.xlsx A1=hello
  tiny-excel set report.xlsx A1=hello B2=42
  tiny-excel set report.xlsx "C3==SUM(A1:A9)"   # formula (double =)
  tiny-excel set report.xlsx A1=hello --sheet 1`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().IntVarP(&setSheet, "sheet", "s", 0, "Zero-based sheet index")
	rootCmd.AddCommand(setCmd)
}

// edit kinds, chosen by sniffing the value text.
const (
	kindString  = "string"
	kindNumber  = "number"
	kindFormula = "formula"
)

type cellEdit struct {
	Address string
	Kind    string
	Text    string
	Number  float64
}

// parseSetArg parses "A1=42" into a cellEdit.
// A value starting with "=" is a formula (the leading "=" is stripped).
// Otherwise: number → string.
func parseSetArg(arg string) (cellEdit, error) {
	address, value, ok := strings.Cut(arg, "=")
	if !ok {
		return cellEdit{}, fmt.Errorf("invalid edit %q: expected address=value", arg)
	}
	if address == "" {
		return cellEdit{}, fmt.Errorf("invalid edit %q: empty address", arg)
	}

	if strings.HasPrefix(value, "=") {
		return cellEdit{Address: address, Kind: kindFormula, Text: value[1:]}, nil
	}

	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return cellEdit{Address: address, Kind: kindNumber, Number: n, Text: value}, nil
	}

	return cellEdit{Address: address, Kind: kindString, Text: value}, nil
}

func applyEdit(sheet *xlsx.Sheet, edit cellEdit) error {
	switch edit.Kind {
	case kindFormula:
		return sheet.SetFormula(edit.Address, edit.Text)
	case kindNumber:
		return sheet.SetNumber(edit.Address, edit.Number)
	default:
		return sheet.SetCell(edit.Address, edit.Text)
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	filePath := args[0]

	edits := make([]cellEdit, 0, len(args)-1)
	for _, arg := range args[1:] {
		edit, err := parseSetArg(arg)
		if err != nil {
			return err
		}
		edits = append(edits, edit)
	}

	wb := xlsx.New(filePath)
	if err := wb.Load(xlsx.LoadOptions{}); err != nil {
		return err
	}

	sheet, err := wb.GetSheet(resolveSheet(cmd, setSheet))
	if err != nil {
		return err
	}

	for _, edit := range edits {
		if err := applyEdit(sheet, edit); err != nil {
			return err
		}
	}

	out, err := wb.Save(filepath.Base(filePath))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, out.Data, 0o644); err != nil {
		return fmt.Errorf("writing updated file: %w", err)
	}

	touched := wb.Dirty()
	wb.ClearDirty()

	if jsonOutput {
		return jsonPrint(map[string]any{
			"edits":  len(edits),
			"sheets": touched,
		})
	}
	fmt.Printf("Applied %d edit(s) to %d sheet(s).\n", len(edits), len(touched))
	return nil
}
