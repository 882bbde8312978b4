// Package report renders the end-of-run summary.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/go-scripts/gmaps/internal/runner"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// Render writes one line per query followed by the run totals.
func Render(w io.Writer, r *runner.Report) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Category", "Requested", "Collected", "Attempts", "Status"})
	for i, o := range r.Outcomes {
		status := "ok"
		if !o.Succeeded() {
			status = o.Kind
		}
		t.AppendRow(table.Row{i + 1, o.Category, o.Requested, o.Collected, o.Attempts, status})
	}
	t.AppendFooter(table.Row{"", "Total", "", r.Collected(), "", footerStatus(r)})
	t.Render()
}

func footerStatus(r *runner.Report) string {
	if r.Abandoned() == 0 {
		return "all ok"
	}
	return fmt.Sprintf("%d abandoned", r.Abandoned())
}
