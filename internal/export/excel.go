package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hotelops/internal/domain"
	"hotelops/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const revenueSheet = "Revenue"

// Exporter writes revenue reports as Excel files for the back office.
type Exporter struct {
	store  domain.LedgerStore
	path   string
	logger *zerolog.Logger
}

func NewExporter(store domain.LedgerStore, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		path:   path,
		logger: logger,
	}
}

// ExportRevenueReport renders a report with its paid bookings and cost lines
// into an xlsx file and returns the file path.
func (e *Exporter) ExportRevenueReport(ctx context.Context, report *models.RevenueReport) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := e.store.GetPaidBookingsBetween(ctx, report.PeriodStart, report.PeriodEnd)
	if err != nil {
		return "", fmt.Errorf("error getting paid bookings: %v", err)
	}
	costs, err := e.store.GetCostEntriesBetween(ctx, report.PeriodStart, report.PeriodEnd)
	if err != nil {
		return "", fmt.Errorf("error getting cost entries: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(revenueSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(revenueSheet, "A1", fmt.Sprintf("Revenue %s: %s - %s",
		report.Period,
		report.PeriodStart.Format("02.01.2006"),
		report.PeriodEnd.Format("02.01.2006")))
	_ = f.MergeCell(revenueSheet, "A1", "F1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(revenueSheet, "A1", "A1", titleStyle)

	// Summary block
	_ = f.SetCellValue(revenueSheet, "A3", "Collected")
	_ = f.SetCellValue(revenueSheet, "B3", report.Collected.String())
	_ = f.SetCellValue(revenueSheet, "A4", "Upcoming")
	_ = f.SetCellValue(revenueSheet, "B4", report.Upcoming.String())
	_ = f.SetCellValue(revenueSheet, "A5", "Costs")
	_ = f.SetCellValue(revenueSheet, "B5", report.Costs.String())
	_ = f.SetCellValue(revenueSheet, "A6", "Net profit")
	_ = f.SetCellValue(revenueSheet, "B6", report.NetProfit.String())

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(revenueSheet, "A3", "A6", boldStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// Paid bookings detail
	row := 8
	headers := []string{"Booking ID", "Guest", "Room", "Paid At", "Final Amount", "Discount"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(revenueSheet, cell, header)
		_ = f.SetCellStyle(revenueSheet, cell, cell, headerStyle)
	}
	row++
	for _, b := range bookings {
		paidAt := ""
		if b.PaidAt != nil {
			paidAt = b.PaidAt.Format("02.01.2006 15:04")
		}
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("B%d", row), b.GuestName)
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("C%d", row), b.RoomID)
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("D%d", row), paidAt)
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("E%d", row), b.FinalAmount.String())
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("F%d", row), b.DiscountAmount.String())
		row++
	}

	// Cost lines
	row++
	costHeaders := []string{"Cost ID", "Category", "Date", "Amount", "Payment Method", "Description"}
	for i, header := range costHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(revenueSheet, cell, header)
		_ = f.SetCellStyle(revenueSheet, cell, cell, headerStyle)
	}
	row++
	for _, c := range costs {
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("A%d", row), c.ID)
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("B%d", row), c.Category)
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("C%d", row), c.Date.Format("02.01.2006"))
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("D%d", row), c.Amount.String())
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("E%d", row), c.PaymentMethod)
		_ = f.SetCellValue(revenueSheet, fmt.Sprintf("F%d", row), c.Description)
		row++
	}

	_ = f.SetColWidth(revenueSheet, "A", "A", 38)
	_ = f.SetColWidth(revenueSheet, "B", "F", 20)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("revenue_%s_%s.xlsx", report.Period, time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Revenue Excel file created")
	return filePath, nil
}
