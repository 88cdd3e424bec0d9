package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/farmsight/backend/internal/domain"
)

const expenseSheet = "Expenses"

// ReportService renders expense data into downloadable spreadsheets
type ReportService struct {
	repo DataRepository
}

// NewReportService creates a new report service
func NewReportService(repo DataRepository) *ReportService {
	return &ReportService{repo: repo}
}

// ExpenseWorkbook builds an XLSX workbook of every expense matching the
// filter, one row per entry plus a closing totals row, and returns the
// serialized bytes ready to stream as a download.
func (s *ReportService) ExpenseWorkbook(ctx context.Context, filter domain.ExpenseFilter) (*bytes.Buffer, error) {
	expenses, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("report: failed to list expenses: %w", err)
	}

	farms, err := s.repo.ListFarmsByOwner(ctx, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("report: failed to list farms: %w", err)
	}
	farmNames := make(map[string]string, len(farms))
	for _, farm := range farms {
		farmNames[farm.ID] = farm.Name
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", expenseSheet); err != nil {
		return nil, fmt.Errorf("report: failed to name sheet: %w", err)
	}

	headers := []string{"Date", "Farm", "Category", "Description", "Quantity", "Unit Price", "Amount", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(expenseSheet, cell, h)
	}
	if styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetRowStyle(expenseSheet, 1, 1, styleID)
	}

	var grandTotal float64
	for i, exp := range expenses {
		row := i + 2
		farmName := farmNames[exp.FarmID]
		if farmName == "" {
			farmName = exp.FarmID
		}
		values := []interface{}{
			exp.IncurredOn.Format("2006-01-02"),
			farmName,
			exp.Category,
			exp.Description,
			exp.Quantity,
			exp.UnitPrice,
			exp.Amount,
			exp.Notes,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(expenseSheet, cell, v)
		}
		grandTotal += exp.Amount
	}

	totalRow := len(expenses) + 2
	labelCell, _ := excelize.CoordinatesToCellName(6, totalRow)
	f.SetCellValue(expenseSheet, labelCell, "Total")
	totalCell, _ := excelize.CoordinatesToCellName(7, totalRow)
	f.SetCellValue(expenseSheet, totalCell, grandTotal)

	f.SetColWidth(expenseSheet, "A", "A", 12)
	f.SetColWidth(expenseSheet, "B", "D", 20)
	f.SetColWidth(expenseSheet, "H", "H", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report: failed to render workbook: %w", err)
	}
	return buf, nil
}

// ExpenseFilename names the export after the day it was generated
func ExpenseFilename(now time.Time) string {
	return fmt.Sprintf("expenses-%s.xlsx", now.Format("2006-01-02"))
}
