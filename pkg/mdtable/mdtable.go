// Package mdtable renders small Markdown tables for terminal reports.
package mdtable

import (
	"strings"

	"github.com/kataras/tablewriter"
)

// Render returns the table as GitHub-flavored Markdown. An empty row set
// yields an empty string.
func Render(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var buf strings.Builder
	tw := tablewriter.NewWriter(&buf)
	tw.SetHeader(headers)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	tw.SetCenterSeparator("|")
	tw.AppendBulk(rows)
	tw.Render()
	return buf.String()
}
