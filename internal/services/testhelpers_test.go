package services

import (
	"testing"
	"time"

	intdb "tourdesk/internal/db"
	"tourdesk/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	assignmentCols = []string{"id", "driver_id", "booking_kind", "booking_id", "assignment_status", "notes", "created_at", "updated_at"}
	tourCols       = []string{"id", "customer_name", "customer_email", "customer_phone", "tour_name", "booking_date", "guests", "total_amount", "status", "created_at"}
	airportCols    = []string{"id", "customer_name", "customer_email", "customer_phone", "flight_number", "arrival_date", "departure_date", "pickup_location", "dropoff_location", "passengers", "total_price", "status", "created_at"}
	fixedNow       = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
)

func newMockAssignmentService(t *testing.T) (AssignmentService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return AssignmentService{
		Assignments: repositories.AssignmentRepository{DB: db},
		Bookings:    repositories.BookingRepository{DB: db},
		Outbox:      repositories.OutboxRepository{DB: db},
		Tx:          intdb.TxManager{DB: db},
		RequestID:   "req-test",
	}, mock
}

func tourRow(id int64, date string, amount float64, status string) *sqlmock.Rows {
	return sqlmock.NewRows(tourCols).AddRow(id, "Alice", "", "", "Bromo Sunrise", date, 2, amount, status, fixedNow)
}
