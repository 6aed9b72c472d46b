package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/stockwatch/internal/domain/model"
)

const (
	alertSheet   = "Alertas"
	failureSheet = "Falhas"
)

var (
	alertHeader   = []any{"Evento", "Produto", "Quantidade", "Data/Hora"}
	failureHeader = []any{"Identificador", "Tipo", "Mensagem"}
)

// ExcelReporter writes one spreadsheet per run into a directory.
type ExcelReporter struct {
	dir string
	loc *time.Location
}

// NewExcelReporter returns a reporter writing into dir. A nil location means UTC.
func NewExcelReporter(dir string, loc *time.Location) (*ExcelReporter, error) {
	if dir == "" {
		return nil, ErrEmptyDir
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ExcelReporter{dir: dir, loc: loc}, nil
}

// Name implements Reporter.
func (r *ExcelReporter) Name() string { return "excel" }

// PathFor returns the file the outcome is written to.
func (r *ExcelReporter) PathFor(o *model.RunOutcome) string {
	return filepath.Join(r.dir, fmt.Sprintf("alertas-%s.xlsx", o.RunID))
}

// Deliver implements Reporter.
func (r *ExcelReporter) Deliver(_ context.Context, o *model.RunOutcome) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSpreadsheet, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", alertSheet); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSpreadsheet, err)
	}
	if err := r.writeAlerts(f, o); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSpreadsheet, err)
	}
	if len(o.Failures) > 0 || len(o.NotFound) > 0 {
		if err := r.writeFailures(f, o); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteSpreadsheet, err)
		}
	}

	if err := f.SaveAs(r.PathFor(o)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSpreadsheet, err)
	}
	return nil
}

func (r *ExcelReporter) writeAlerts(f *excelize.File, o *model.RunOutcome) error {
	if err := writeHeader(f, alertSheet, alertHeader); err != nil {
		return err
	}
	stamp := o.FinishedAt.In(r.loc).Format(timestampLayout)
	row := 2
	for _, g := range o.AlertGroups {
		for _, e := range g.Entries {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []any{g.EventName, e.Label, e.Quantity, stamp}
			if err := f.SetSheetRow(alertSheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}
	if err := f.SetColWidth(alertSheet, "A", "B", 45); err != nil {
		return err
	}
	return f.SetColWidth(alertSheet, "C", "D", 20)
}

func (r *ExcelReporter) writeFailures(f *excelize.File, o *model.RunOutcome) error {
	if _, err := f.NewSheet(failureSheet); err != nil {
		return err
	}
	if err := writeHeader(f, failureSheet, failureHeader); err != nil {
		return err
	}
	row := 2
	put := func(values []any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(failureSheet, cell, &values)
	}
	for _, fl := range o.Failures {
		if err := put([]any{string(fl.Identifier), string(fl.Kind), fl.Message}); err != nil {
			return err
		}
	}
	for _, id := range o.NotFound {
		if err := put([]any{string(id), "not_found", "carrinho fechado"}); err != nil {
			return err
		}
	}
	return f.SetColWidth(failureSheet, "A", "C", 40)
}

func writeHeader(f *excelize.File, sheet string, header []any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}
