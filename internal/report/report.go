// Package report exports learner progress, attempt history and model usage
// as a spreadsheet.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/store"
)

// Sheet names, in workbook order.
const (
	SheetProgress = "Progress"
	SheetAttempts = "Attempts"
	SheetUsage    = "LLM Usage"
)

// Source is the data the report reads.
type Source interface {
	ProgressRepo() store.ProgressRepo
	EventRepo() store.EventRepo
}

// Build assembles the workbook. goals supplies titles and lists goals that
// have no progress yet.
func Build(ctx context.Context, src Source, goals []content.Goal) (*excelize.File, error) {
	rows, err := src.ProgressRepo().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	attempts, err := src.EventRepo().QueryAttempts(ctx, store.QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	events, err := src.EventRepo().QueryLLMEvents(ctx, store.QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}

	f := excelize.NewFile()
	w := &writer{f: f}
	if w.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F46E5"}},
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// NewFile starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", SheetProgress); err != nil {
		f.Close()
		return nil, err
	}
	w.progress(rows, goals)
	w.attempts(attempts)
	w.usage(Summarize(events))
	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and writes it to out.
func Write(ctx context.Context, out io.Writer, src Source, goals []content.Goal) error {
	f, err := Build(ctx, src, goals)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(out)
}

// SaveFile builds the workbook and saves it at path.
func SaveFile(ctx context.Context, path string, src Source, goals []content.Goal) error {
	f, err := Build(ctx, src, goals)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// writer keeps the first error so sheet code reads straight through.
type writer struct {
	f      *excelize.File
	header int
	err    error
}

func (w *writer) sheet(name string, widths []float64, header []any) {
	if w.err != nil {
		return
	}
	if name != SheetProgress {
		if _, err := w.f.NewSheet(name); err != nil {
			w.err = err
			return
		}
	}
	w.row(name, 1, header)
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if w.err == nil {
		w.err = w.f.SetCellStyle(name, "A1", last, w.header)
	}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if w.err == nil {
			w.err = w.f.SetColWidth(name, col, col, width)
		}
	}
	if w.err == nil {
		w.err = w.f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
}

func (w *writer) row(sheet string, n int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *writer) progress(rows []store.GoalProgress, goals []content.Goal) {
	w.sheet(SheetProgress, []float64{24, 40, 14, 12, 12, 22},
		[]any{"Goal", "Title", "Status", "Percentage", "Completions", "Updated"})

	byID := make(map[string]store.GoalProgress, len(rows))
	for _, r := range rows {
		byID[r.GoalID] = r
	}
	n := 2
	seen := make(map[string]bool, len(goals))
	for _, g := range goals {
		seen[g.ID] = true
		r, ok := byID[g.ID]
		if !ok {
			w.row(SheetProgress, n, []any{g.ID, g.Title, "not started", 0, 0, ""})
		} else {
			w.row(SheetProgress, n, []any{g.ID, g.Title, r.Status, r.Percentage, r.Completions, r.UpdatedAt.Format("2006-01-02 15:04")})
		}
		n++
	}
	// Progress for goals no longer in the library is still reported.
	for _, r := range rows {
		if seen[r.GoalID] {
			continue
		}
		w.row(SheetProgress, n, []any{r.GoalID, "", r.Status, r.Percentage, r.Completions, r.UpdatedAt.Format("2006-01-02 15:04")})
		n++
	}
}

func (w *writer) attempts(events []store.AttemptEvent) {
	w.sheet(SheetAttempts, []float64{8, 20, 24, 8, 9, 7, 12, 8, 12},
		[]any{"Seq", "Time", "Goal", "Stage", "Correct", "Total", "Percentage", "Passed", "Proficiency"})
	for i, e := range events {
		w.row(SheetAttempts, i+2, []any{
			e.Sequence, e.Timestamp.Format("2006-01-02 15:04"), e.GoalID, e.Stage,
			e.Correct, e.Total, e.Percentage, e.Passed, e.Proficiency,
		})
	}
}

func (w *writer) usage(rows []Usage) {
	w.sheet(SheetUsage, []float64{22, 30, 8, 10, 14, 14, 16, 12},
		[]any{"Purpose", "Model", "Calls", "Failures", "Input tokens", "Output tokens", "Avg latency ms", "Cost USD"})
	for i, u := range rows {
		w.row(SheetUsage, i+2, []any{
			u.Purpose, u.Model, u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs, u.CostUSD,
		})
	}
}
