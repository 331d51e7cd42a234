// Package output renders AnalysisReport and HistorySearchOutput in the three
// shapes memoria analyze supports: a human table for a TTY, plain JSON, and
// the teacher's compact toon encoding.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"

	"github.com/byronwade/memoria/pkg/report"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatToon  Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to table.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "toon":
		return FormatToon
	default:
		return FormatTable
	}
}

// Formatter writes a report in the configured Format.
type Formatter struct {
	format  Format
	writer  io.Writer
	colored bool
}

// NewFormatter creates a Formatter writing to os.Stdout.
func NewFormatter(format Format, colored bool) *Formatter {
	return &Formatter{format: format, writer: os.Stdout, colored: colored}
}

// Output writes data (an *report.AnalysisReport or *report.HistorySearchOutput)
// in the configured format.
func (f *Formatter) Output(data any) error {
	switch f.format {
	case FormatJSON:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case FormatToon:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return err
		}
		fmt.Fprintln(f.writer, string(out))
		return nil
	default:
		return f.renderTable(data)
	}
}

func (f *Formatter) renderTable(data any) error {
	switch v := data.(type) {
	case *report.AnalysisReport:
		return f.renderAnalysisReport(v)
	case *report.HistorySearchOutput:
		return f.renderHistory(v)
	default:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
}

func (f *Formatter) renderAnalysisReport(rep *report.AnalysisReport) error {
	f.heading(fmt.Sprintf("%s  (risk %d/100, %s)", rep.FilePath, rep.Risk.Score, rep.Risk.Level))
	if len(rep.Risk.Factors) > 0 {
		fmt.Fprintln(f.writer, strings.Join(rep.Risk.Factors, "; "))
	}
	if rep.Partial {
		f.warn("partial result")
	}
	fmt.Fprintln(f.writer)

	if len(rep.Coupled) > 0 {
		rows := make([][]string, 0, len(rep.Coupled))
		for _, edge := range rep.Coupled {
			rows = append(rows, []string{edge.File, fmt.Sprintf("%d%%", edge.Score), string(edge.Source), edge.Reason})
		}
		f.table("Coupled files", []string{"file", "score", "source", "reason"}, rows)
	}

	if len(rep.Drift) > 0 {
		rows := make([][]string, 0, len(rep.Drift))
		for _, d := range rep.Drift {
			rows = append(rows, []string{d.File, fmt.Sprintf("%d days", d.DaysOld)})
		}
		f.table("Drift", []string{"file", "age"}, rows)
	}

	if len(rep.Importers) > 0 {
		rows := make([][]string, 0, len(rep.Importers))
		for _, imp := range rep.Importers {
			rows = append(rows, []string{string(imp)})
		}
		f.table("Importers", []string{"file"}, rows)
	}

	return nil
}

func (f *Formatter) renderHistory(out *report.HistorySearchOutput) error {
	f.heading(fmt.Sprintf("%d matches (%d found)", len(out.Results), out.TotalFound))
	if out.Partial {
		f.warn("partial result")
	}

	rows := make([][]string, 0, len(out.Results))
	for _, m := range out.Results {
		rows = append(rows, []string{m.SHA[:min(8, len(m.SHA))], m.Author, m.Date.Format("2006-01-02"), string(m.MatchType), m.Subject})
	}
	f.table("", []string{"sha", "author", "date", "match", "subject"}, rows)
	return nil
}

func (f *Formatter) heading(title string) {
	if f.colored {
		color.New(color.Bold).Fprintln(f.writer, title)
	} else {
		fmt.Fprintln(f.writer, title)
	}
}

func (f *Formatter) warn(msg string) {
	if f.colored {
		color.Yellow(msg)
	} else {
		fmt.Fprintln(f.writer, "WARNING: "+msg)
	}
}

func (f *Formatter) table(title string, headers []string, rows [][]string) {
	if title != "" {
		fmt.Fprintln(f.writer, title)
	}
	table := tablewriter.NewTable(f.writer,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)
	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	fmt.Fprintln(f.writer)
}
