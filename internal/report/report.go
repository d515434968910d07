// Package report formats classification results for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"cmegrid/domain/cme"
	"cmegrid/internal/profiling"
)

// Summary is what a finished run prints
type Summary struct {
	RunID       string
	Source      string
	Records     int
	Classified  int
	Fingerprint string
	Pivot       *cme.PivotTable
	Profiles    []profiling.ColumnProfile
	Artifacts   []string
	RuntimeMs   int64
}

// PivotTable renders the counts with row and column totals
func PivotTable(pivot *cme.PivotTable) string {
	if pivot == nil {
		return ""
	}

	headers := append([]string{cme.IndexName}, pivot.ColumnLabels...)
	headers = append(headers, "Total")
	t := NewSimpleTable("Conteo de CME", headers)
	for j := 1; j < len(headers); j++ {
		t.RightAlign[j] = true
	}

	rowTotals := pivot.RowTotals()
	rows, cols := pivot.Dims()
	for i := 0; i < rows; i++ {
		row := []string{pivot.RowLabels[i]}
		for j := 0; j < cols; j++ {
			row = append(row, strconv.Itoa(pivot.At(i, j)))
		}
		row = append(row, strconv.Itoa(rowTotals[i]))
		t.AddRow(row...)
	}

	totals := []string{"Total"}
	for _, n := range pivot.ColumnTotals() {
		totals = append(totals, strconv.Itoa(n))
	}
	totals = append(totals, strconv.Itoa(pivot.Total()))
	t.AddRow(totals...)

	return t.View()
}

// Profiles renders one line per column profile
func Profiles(profiles []profiling.ColumnProfile) string {
	t := NewSimpleTable("Perfil de columnas", []string{"Columna", "N", "Faltantes", "Min", "Q1", "Mediana", "Media", "Q3", "Max", "Desv. Est."})
	for j := 1; j < 10; j++ {
		t.RightAlign[j] = true
	}
	for _, p := range profiles {
		if p.Empty() {
			t.AddRow(p.Name, "0", strconv.Itoa(p.Missing), "-", "-", "-", "-", "-", "-", "-")
			continue
		}
		t.AddRow(p.Name,
			strconv.Itoa(p.Count),
			strconv.Itoa(p.Missing),
			formatFloat(p.Min),
			formatFloat(p.Q1),
			formatFloat(p.Median),
			formatFloat(p.Mean),
			formatFloat(p.Q3),
			formatFloat(p.Max),
			formatFloat(p.StdDev),
		)
	}
	return t.View()
}

// Write prints the full run summary
func Write(w io.Writer, s Summary) error {
	var sb strings.Builder

	if s.RunID != "" {
		fmt.Fprintf(&sb, "Run %s\n", s.RunID)
	}
	fmt.Fprintf(&sb, "Fuente: %s  registros: %d  clasificados: %d\n", s.Source, s.Records, s.Classified)
	if s.Fingerprint != "" {
		fmt.Fprintf(&sb, "Huella: %s\n", s.Fingerprint)
	}
	sb.WriteString("\n")

	if len(s.Profiles) > 0 {
		sb.WriteString(Profiles(s.Profiles))
		sb.WriteString("\n")
	}
	if s.Pivot != nil {
		sb.WriteString(PivotTable(s.Pivot))
		sb.WriteString("\n")
	}

	for _, a := range s.Artifacts {
		fmt.Fprintf(&sb, "  -> %s\n", a)
	}
	if s.RuntimeMs > 0 {
		fmt.Fprintf(&sb, "Completado en %dms\n", s.RuntimeMs)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
