package main

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// printTable writes rows as a borderless, left-aligned table. A nil
// header prints key/value style rows.
func printTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	if header != nil {
		table.SetHeader(header)
	}

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(rows)
	table.Render()
	return nil
}
