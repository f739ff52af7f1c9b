package report

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCell caps a rendered cell in display columns
const maxCell = 32

// table writes rows as a pipe table whose columns are padded by display width
func table(w io.Writer, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, header)
	for _, r := range rows {
		cr := make([]string, len(header))
		for i := range cr {
			if i < len(r) {
				cr[i] = runewidth.Truncate(r[i], maxCell, "...")
			}
		}
		cells = append(cells, cr)
	}
	for _, r := range cells {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c), 3)
		}
	}

	var sb strings.Builder
	line := func(r []string) {
		sb.WriteString("|")
		for i, c := range r {
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(c, widths[i]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
	line(cells[0])
	sb.WriteString("|")
	for _, wd := range widths {
		sb.WriteString(strings.Repeat("-", wd+2))
		sb.WriteString("|")
	}
	sb.WriteString("\n")
	for _, r := range cells[1:] {
		line(r)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
