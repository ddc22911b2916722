package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

func TestDocsServiceDispatchSheet(t *testing.T) {
	loader := func(_ context.Context, id int64) (sheetData, error) {
		return sheetData{
			Driver: models.Driver{ID: id, Name: "Budi Santoso", Phone: "0800", VehicleType: "Hiace", VehiclePlate: "BM 1234 XY"},
			Jobs: models.DriverJobs{
				DriverID: id,
				Jobs: []models.Job{
					{ID: models.TourRef(1), Type: domain.KindTour, CustomerName: "Alice", Date: "2099-12-31", Status: domain.BookingConfirmed, Amount: 100, AssignmentStatus: domain.AssignmentAssigned},
				},
				Orphaned: []models.OrphanedAssignment{{AssignmentID: 9, DriverID: id}},
			},
		}, nil
	}

	svc := DocsService{Loader: loader, Now: func() time.Time { return time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC) }}
	pdf, filename, err := svc.GenerateDispatchSheet(context.Background(), 3)
	if err != nil {
		t.Fatalf("GenerateDispatchSheet returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if filename != "SURAT_JALAN_3_Budi_Santoso.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocsServiceEmptySheet(t *testing.T) {
	loader := func(_ context.Context, id int64) (sheetData, error) {
		return sheetData{Driver: models.Driver{ID: id}, Jobs: models.DriverJobs{DriverID: id}}, nil
	}
	pdf, filename, err := DocsService{Loader: loader}.GenerateDispatchSheet(context.Background(), 4)
	if err != nil || len(pdf) == 0 {
		t.Fatalf("empty sheet: len=%d err=%v", len(pdf), err)
	}
	if filename != "SURAT_JALAN_4_NA.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}
