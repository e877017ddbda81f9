package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mavyfaby/tiny-excel/xlsx"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets <file>",
	Short: "List a workbook's sheets and their dimensions",
	Long: `List the worksheets of a workbook with the cell range each one
covers, plus the size of the shared string table.

Examples:
  tiny-excel sheets report.xlsx
  tiny-excel sheets report.xlsx --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSheets,
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
}

type sheetInfo struct {
	Index     int    `json:"index"`
	Dimension string `json:"dimension,omitempty"`
	Empty     bool   `json:"empty"`
}

func runSheets(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	wb := xlsx.New(args[0])
	if err := wb.Load(xlsx.LoadOptions{}); err != nil {
		return err
	}

	infos := make([]sheetInfo, 0, wb.SheetCount())
	for i := 0; i < wb.SheetCount(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil {
			return err
		}
		dim, ok := sheet.Dimension()
		infos = append(infos, sheetInfo{Index: i, Dimension: dim, Empty: !ok})
	}

	if jsonOutput {
		return jsonPrint(map[string]any{
			"sheets":         infos,
			"shared_strings": wb.SharedStrings().Len(),
		})
	}

	fmt.Printf("%d sheet(s), %d shared string(s)\n", len(infos), wb.SharedStrings().Len())
	for _, info := range infos {
		if info.Empty {
			fmt.Printf("  sheet %d: empty\n", info.Index)
			continue
		}
		fmt.Printf("  sheet %d: %s\n", info.Index, info.Dimension)
	}
	return nil
}
