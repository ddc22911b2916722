package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"tourdesk/internal/domain/models"
	"tourdesk/internal/repositories"
	"tourdesk/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the printable driver dispatch sheet (surat jalan).
type DocsService struct {
	Drivers   repositories.DriverRepository
	Dispatch  DispatchService
	RequestID string
	Loader    func(ctx context.Context, driverID int64) (sheetData, error)
	Now       func() time.Time
}

type sheetData struct {
	Driver models.Driver
	Jobs   models.DriverJobs
}

func (s DocsService) GenerateDispatchSheet(ctx context.Context, driverID int64) ([]byte, string, error) {
	data, err := s.load(ctx, driverID)
	if err != nil {
		return nil, "", err
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	utils.LogEvent(s.RequestID, "docs", "dispatch_sheet",
		fmt.Sprintf("driver_id=%d jobs=%d orphaned=%d", driverID, len(data.Jobs.Jobs), len(data.Jobs.Orphaned)))
	return buildDispatchSheetPDF(data, now)
}

func (s DocsService) load(ctx context.Context, driverID int64) (sheetData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, driverID)
	}
	driver, err := DriverService{Drivers: s.Drivers, RequestID: s.RequestID}.Get(ctx, driverID)
	if err != nil {
		return sheetData{}, err
	}
	jobs, err := s.Dispatch.DriverJobs(ctx, driverID)
	if err != nil {
		return sheetData{}, err
	}
	return sheetData{Driver: driver, Jobs: jobs}, nil
}

func buildDispatchSheetPDF(d sheetData, printedAt time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Dispatch Sheet", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "SURAT JALAN DRIVER")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		fmt.Sprintf("Driver     : %s", safe(d.Driver.Name, "-")),
		fmt.Sprintf("No HP      : %s", safe(d.Driver.Phone, "-")),
		fmt.Sprintf("Kendaraan  : %s %s", safe(d.Driver.VehicleType, "-"), safe(d.Driver.VehiclePlate, "")),
		fmt.Sprintf("Dicetak    : %s", printedAt.Format("2006-01-02 15:04")),
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	widths := []float64{26, 20, 62, 28, 30, 24}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Tanggal", "Jenis", "Customer", "Status", "Tugas", "Jumlah"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	var total float64
	for _, j := range d.Jobs.Jobs {
		cells := []string{
			safe(j.Date, "-"),
			string(j.Type),
			utils.Truncate(safe(j.CustomerName, "-"), 32),
			string(j.Status),
			string(j.AssignmentStatus),
			utils.FormatAmount(j.Amount),
		}
		for i, c := range cells {
			align := "L"
			if i == len(cells)-1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
		total += j.Amount
	}
	if len(d.Jobs.Jobs) == 0 {
		pdf.CellFormat(190, 7, "Belum ada tugas.", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(166, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(24, 8, utils.FormatAmount(total), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	if n := len(d.Jobs.Orphaned); n > 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, fmt.Sprintf("Perhatian: %d tugas merujuk booking yang sudah tidak ada dan tidak dicetak.", n), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("SURAT_JALAN_%d_%s.pdf", d.Driver.ID, safeFilenamePart(d.Driver.Name))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
