package services

import (
	"context"
	"errors"
	"testing"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDispatch(t *testing.T) (DispatchService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return DispatchService{
		Assignments: repositories.AssignmentRepository{DB: db},
		Bookings:    repositories.BookingRepository{DB: db},
		RequestID:   "req-test",
	}, mock
}

func TestDriverJobsSingleTourBooking(t *testing.T) {
	svc, mock := newMockDispatch(t)

	mock.ExpectQuery("WHERE a.driver_id = \\?").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(assignmentCols).AddRow(1, 1, "tour", "11", "assigned", "", fixedNow, fixedNow))
	mock.ExpectQuery("FROM tour_bookings WHERE id IN").WithArgs(int64(11)).
		WillReturnRows(tourRow(11, "2099-12-31", 100, "pending"))

	got, err := svc.DriverJobs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got.Jobs, 1)
	job := got.Jobs[0]
	assert.Equal(t, models.TourRef(11), job.ID)
	assert.Equal(t, domain.KindTour, job.Type)
	assert.Equal(t, "2099-12-31", job.Date)
	assert.Equal(t, 100.0, job.Amount)
	assert.Equal(t, domain.BookingPending, job.Status)
	assert.Empty(t, got.Orphaned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverJobsSurfacesOrphansAndSortsByDateDesc(t *testing.T) {
	svc, mock := newMockDispatch(t)
	airportID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	mock.ExpectQuery("WHERE a.driver_id = \\?").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(4, 3, "tour", "99", "assigned", "", fixedNow, fixedNow).
			AddRow(3, 3, "airport", airportID.String(), "in_progress", "", fixedNow, fixedNow).
			AddRow(2, 3, "tour", "10", "completed", "", fixedNow, fixedNow).
			AddRow(1, 3, "tour", "12", "assigned", "", fixedNow, fixedNow))
	mock.ExpectQuery("FROM tour_bookings WHERE id IN \\(\\?,\\?,\\?\\)").
		WillReturnRows(sqlmock.NewRows(tourCols).
			AddRow(10, "Budi", "", "", "", "2025-01-05", 1, 50.0, "completed", fixedNow).
			AddRow(12, "Citra", "", "", "", "2025-03-01", 1, 75.0, "confirmed", fixedNow))
	mock.ExpectQuery("FROM airport_bookings WHERE id IN \\(\\?\\)").WithArgs(airportID.String()).
		WillReturnRows(sqlmock.NewRows(airportCols).
			AddRow(airportID.String(), "Dewi", "", "", "GA123", "", "2025-02-10", "", "", 2, 40.0, "confirmed", fixedNow))

	got, err := svc.DriverJobs(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got.Jobs, 3, "N-M jobs expected")
	assert.Equal(t, []string{"2025-03-01", "2025-02-10", "2025-01-05"},
		[]string{got.Jobs[0].Date, got.Jobs[1].Date, got.Jobs[2].Date})
	assert.Equal(t, domain.KindAirport, got.Jobs[1].Type)
	assert.Equal(t, 40.0, got.Jobs[1].Amount, "airport amount comes from total_price")
	require.Len(t, got.Orphaned, 1)
	assert.Equal(t, int64(4), got.Orphaned[0].AssignmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverJobsStoreErrorAborts(t *testing.T) {
	svc, mock := newMockDispatch(t)

	mock.ExpectQuery("WHERE a.driver_id = \\?").
		WillReturnRows(sqlmock.NewRows(assignmentCols).AddRow(1, 1, "tour", "11", "assigned", "", fixedNow, fixedNow))
	mock.ExpectQuery("FROM tour_bookings WHERE id IN").WillReturnError(errors.New("connection reset"))

	got, err := svc.DriverJobs(context.Background(), 1)
	assert.True(t, domain.IsInternal(err))
	assert.Nil(t, got.Jobs, "no partial results")
}

func TestCalendarEventsFiltersAndOrders(t *testing.T) {
	svc, mock := newMockDispatch(t)
	cols := append(append([]string{}, assignmentCols...), "driver_name")

	mock.ExpectQuery("LEFT JOIN drivers d").WillReturnRows(sqlmock.NewRows(cols).
		AddRow(3, 1, "tour", "12", "assigned", "", fixedNow, fixedNow, "Budi").
		AddRow(2, 1, "tour", "10", "assigned", "", fixedNow, fixedNow, "Budi").
		AddRow(1, 2, "tour", "13", "assigned", "", fixedNow, fixedNow, "Eko"))
	mock.ExpectQuery("FROM tour_bookings WHERE id IN").WillReturnRows(sqlmock.NewRows(tourCols).
		AddRow(10, "Alice", "", "", "", "2025-01-20", 1, 10.0, "confirmed", fixedNow).
		AddRow(12, "Bob", "", "", "", "2025-01-05", 1, 20.0, "confirmed", fixedNow).
		AddRow(13, "Carol", "", "", "", "2025-02-01", 1, 30.0, "confirmed", fixedNow))

	feed, err := svc.CalendarEvents(context.Background(), "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, feed.Events, 2)
	assert.Equal(t, "2025-01-05", feed.Events[0].Date)
	assert.Equal(t, "Tour: Bob (Budi)", feed.Events[0].Title)
	assert.Equal(t, "assignment-3", feed.Events[0].ID)
	assert.Equal(t, "2025-01-20", feed.Events[1].Date)
	assert.Equal(t, CalendarRefreshSeconds, feed.RefreshIntervalSeconds)
}

func TestCalendarEventsRejectsBadRange(t *testing.T) {
	svc, _ := newMockDispatch(t)

	_, err := svc.CalendarEvents(context.Background(), "2025-02-01", "2025-01-01")
	assert.True(t, domain.IsValidation(err))
	_, err = svc.CalendarEvents(context.Background(), "01/02/2025", "")
	assert.True(t, domain.IsValidation(err))
}
