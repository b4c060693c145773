// Package table converts reconciled results into rows for CLI tables.
package table

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/smactrace/internal/cmd/emoji"
	"github.com/agentstation/smactrace/pkg/matrix"
	"github.com/agentstation/smactrace/pkg/reconcile"
	dtable "github.com/agentstation/smactrace/pkg/table"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// MaxCellWidth is the longest cell shown by narrow tables.
const MaxCellWidth = 24

// FromTable converts a reconciled table. Numeric columns are right aligned.
// Unless wide is set, long cells are truncated to MaxCellWidth.
func FromTable(t *dtable.Table, wide bool) Data {
	if t == nil {
		return Data{}
	}
	data := Data{
		Headers:         t.Keys(),
		ColumnAlignment: make([]Align, t.Width()),
	}
	for j := range t.Width() {
		data.ColumnAlignment[j] = AlignRight
		for i := range t.Len() {
			if t.Cell(i, j).IsString() {
				data.ColumnAlignment[j] = AlignLeft
				break
			}
		}
	}
	for _, row := range t.StringRows() {
		if !wide {
			for j, cell := range row {
				row[j] = truncate(cell, MaxCellWidth)
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// FilesToTableData lists the files a result was merged from.
func FilesToTableData(files []reconcile.FileProvenance, wide bool) Data {
	headers := []string{"Label", "Rows", "Cached", "Path"}
	if wide {
		headers = append(headers, "Preprocessor", "Companion")
	}
	data := Data{
		Headers:         headers,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignCenter, AlignLeft, AlignLeft, AlignLeft},
	}
	for _, f := range files {
		cached := ""
		if f.Cached {
			cached = emoji.Success
		}
		row := []string{f.Label, strconv.Itoa(f.Rows), cached, f.Path}
		if wide {
			row = append(row, f.Preprocessor, f.Companion)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// SkipsToTableData lists the files a result excluded.
func SkipsToTableData(skips []reconcile.Skip) Data {
	data := Data{Headers: []string{"", "Label", "Path", "Reason"}}
	for _, s := range skips {
		data.Rows = append(data.Rows, []string{emoji.Warning, s.Label, s.Path, s.Reason})
	}
	return data
}

// ArtifactsToTableData lists the matrices a save wrote.
func ArtifactsToTableData(artifacts []matrix.Artifact) Data {
	data := Data{
		Headers:         []string{"Name", "File", "Rows", "Columns"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight},
	}
	for _, a := range artifacts {
		data.Rows = append(data.Rows, []string{a.Name, a.File, strconv.Itoa(a.Rows), strconv.Itoa(a.Columns)})
	}
	return data
}

// Property is one row of a key/value table. Keys are snake_case.
type Property struct {
	Key   string
	Value string
}

// PropertiesToTableData renders properties as a two-column table with
// titled keys.
func PropertiesToTableData(props ...Property) Data {
	data := Data{Headers: []string{"Property", "Value"}}
	for _, p := range props {
		data.Rows = append(data.Rows, []string{Title(p.Key), p.Value})
	}
	return data
}

// Title turns a snake_case key into a header: "lsm_bytes" becomes
// "Lsm Bytes".
func Title(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
