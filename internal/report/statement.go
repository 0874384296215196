// Package report renders tenant statements as spreadsheets.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gosuda/aquabill/internal/billing"
	"github.com/gosuda/aquabill/internal/domain"
)

// Sheet names of a statement workbook.
const (
	SheetSummary  = "Summary"
	SheetReadings = "Readings"
	SheetBills    = "Bills"
)

// ContentType is the MIME type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	readingHeader = []string{"Reading ID", "Reading Date", "Units", "Recorded", "Notes", "Created By"}
	billHeader    = []string{
		"Bill ID", "Period Start", "Period End", "Units", "Rate", "Total",
		"Currency", "Status", "Generated", "Due", "Paid",
	}
)

// StatementFilename returns the attachment name for a tenant's statement.
func StatementFilename(st *billing.Statement) string {
	return fmt.Sprintf("statement-%s-%s.xlsx", st.Tenant.TenantID, st.GeneratedAt.Format("20060102"))
}

// StatementXLSX renders st as an xlsx workbook with summary, readings and
// bills sheets.
func StatementXLSX(st *billing.Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("report.StatementXLSX: header style: %w", err)
	}

	if err = f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("report.StatementXLSX: %w", err)
	}
	if err = writeSummary(f, st, header); err != nil {
		return nil, fmt.Errorf("report.StatementXLSX: summary: %w", err)
	}

	readings := make([][]any, 0, len(st.Readings))
	for _, r := range st.Readings {
		readings = append(readings, []any{
			r.ID,
			r.ReadingDate.Format(time.DateOnly),
			r.ReadingUnits.InexactFloat64(),
			r.RecordedDate.Format(time.DateTime),
			deref(r.Notes),
			deref(r.CreatedBy),
		})
	}
	if err = writeTable(f, SheetReadings, readingHeader, readings, header); err != nil {
		return nil, fmt.Errorf("report.StatementXLSX: readings: %w", err)
	}

	bills := make([][]any, 0, len(st.Bills))
	for _, b := range st.Bills {
		paid := ""
		if b.PaidAt != nil {
			paid = b.PaidAt.Format(time.DateTime)
		}
		bills = append(bills, []any{
			b.ID,
			b.PeriodStart.Format(time.DateOnly),
			b.PeriodEnd.Format(time.DateOnly),
			b.UnitsConsumed.InexactFloat64(),
			b.RatePerUnit.InexactFloat64(),
			b.TotalAmount.StringFixed(domain.MonetaryPlaces),
			b.Currency,
			string(b.Status),
			b.GeneratedAt.Format(time.DateTime),
			b.DueDate.Format(time.DateOnly),
			paid,
		})
	}
	if err = writeTable(f, SheetBills, billHeader, bills, header); err != nil {
		return nil, fmt.Errorf("report.StatementXLSX: bills: %w", err)
	}

	var buf bytes.Buffer
	if err = f.Write(&buf); err != nil {
		return nil, fmt.Errorf("report.StatementXLSX: write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, st *billing.Statement, style int) error {
	sum := st.Summary
	last := ""
	if sum.LastReadingDate != nil {
		last = sum.LastReadingDate.Format(time.DateOnly)
	}

	rows := [][]any{
		{"Tenant ID", st.Tenant.TenantID},
		{"Name", st.Tenant.Name},
		{"Apartment", st.Tenant.ApartmentNumber},
		{"Generated", st.GeneratedAt.Format(time.DateTime)},
		{"Total Readings", sum.TotalReadings},
		{"Last Reading", last},
		{"Total Bills", sum.TotalBills},
		{"Paid Bills", sum.PaidBills},
		{"Outstanding Bills", sum.OutstandingBills},
		{"Total Paid", sum.TotalPaid.StringFixed(domain.MonetaryPlaces)},
		{"Outstanding Amount", sum.OutstandingAmount.StringFixed(domain.MonetaryPlaces)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), style); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 22)
}

func writeTable(f *excelize.File, sheet string, header []string, rows [][]any, style int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err = f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
