// Package report renders wheel inventories and release history as terminal tables.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/prizm-build/wheelhouse/internal/history"
	"github.com/prizm-build/wheelhouse/pkg/wheel"
)

// DrawWheels renders the wheels of a directory.
func DrawWheels(w io.Writer, dir string, entries []wheel.Entry) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No wheels in %s\n", dir)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(dir)
	t.AppendHeader(table.Row{"Package", "Version", "Tags", "Size", "Modified"})

	for _, e := range entries {
		t.AppendRow(table.Row{
			e.Filename.Distribution,
			e.Filename.Version,
			e.Filename.Tags(),
			humanize.Bytes(uint64(e.Size)),
			humanize.Time(e.ModTime),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func formatStatus(status string) string {
	if status == history.StatusSucceeded {
		return text.FgGreen.Sprint(status)
	}
	return text.FgRed.Sprint(status)
}

// Errors longer than this many characters are cut in the runs table.
const errorWidth = 60

// DrawRuns renders recorded release runs, newest first.
func DrawRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Started", "Package", "Version", "Status", "Stage", "Duration", "Size", "Error"})

	for _, r := range runs {
		size := ""
		if r.Size > 0 {
			size = humanize.Bytes(uint64(r.Size))
		}

		t.AppendRow(table.Row{
			r.StartedAt.Local().Format(time.DateTime),
			r.PkgName,
			r.PkgVersion,
			formatStatus(r.Status),
			r.Stage,
			r.Duration().Round(time.Millisecond).String(),
			size,
			text.Snip(r.Error, errorWidth, "..."),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
