package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAssignmentCreateWritesRowAndOutboxInOneTx(t *testing.T) {
	svc, mock := newMockAssignmentService(t)
	var changes []AssignmentChange
	svc.Hooks = []ChangeHook{func(_ context.Context, c AssignmentChange) { changes = append(changes, c) }}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tour_bookings WHERE id = \\?").WithArgs(int64(1)).
		WillReturnRows(tourRow(1, "2099-12-31", 100, "confirmed"))
	mock.ExpectExec("INSERT INTO driver_assignments").
		WithArgs(int64(2), "tour", "1", "assigned", nil).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("FROM driver_assignments a WHERE a.id = \\?").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(assignmentCols).AddRow(5, 2, "tour", "1", "assigned", "", fixedNow, fixedNow))
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), models.EventAssignmentCreated, "5", sqlmock.AnyArg(), models.OutboxNew, "req-test").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := svc.Create(context.Background(), models.AssignmentInput{DriverID: 2, Booking: models.TourRef(1), Status: domain.AssignmentAssigned})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.ID != 5 || a.Status != domain.AssignmentAssigned {
		t.Fatalf("unexpected assignment: %+v", a)
	}
	if len(changes) != 1 || changes[0].Op != "create" || changes[0].AssignmentID != 5 {
		t.Fatalf("hook not called once after commit: %+v", changes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignmentCreateMissingBookingRollsBack(t *testing.T) {
	svc, mock := newMockAssignmentService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tour_bookings WHERE id = \\?").WithArgs(int64(77)).WillReturnRows(sqlmock.NewRows(tourCols))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), models.AssignmentInput{DriverID: 2, Booking: models.TourRef(77), Status: domain.AssignmentAssigned})
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Details()["booking_id"] == "" {
		t.Fatalf("expected booking_id validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignmentUpdateMissingIsNotFoundAndWritesNothing(t *testing.T) {
	svc, mock := newMockAssignmentService(t)
	called := false
	svc.Hooks = []ChangeHook{func(context.Context, AssignmentChange) { called = true }}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM driver_assignments a WHERE a.id = \\?").WithArgs(int64(999999)).
		WillReturnRows(sqlmock.NewRows(assignmentCols))
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), 999999, models.AssignmentInput{DriverID: 2, Booking: models.TourRef(1), Status: domain.AssignmentCompleted})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if called {
		t.Fatalf("hook must not run on a failed write")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignmentUpdateMissingRowWinsOverMissingBooking(t *testing.T) {
	svc, mock := newMockAssignmentService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM driver_assignments a WHERE a.id = \\?").WithArgs(int64(999999)).
		WillReturnRows(sqlmock.NewRows(assignmentCols))
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), 999999, models.AssignmentInput{DriverID: 2, Booking: models.TourRef(888), Status: domain.AssignmentAssigned})
	if !domain.IsNotFound(err) || domain.IsValidation(err) {
		t.Fatalf("expected not found for the assignment, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("booking must not be looked up: %v", err)
	}
}

func TestAssignmentUpdateExistingRowWithMissingBookingIsValidation(t *testing.T) {
	svc, mock := newMockAssignmentService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM driver_assignments a WHERE a.id = \\?").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(assignmentCols).AddRow(3, 2, "tour", "1", "assigned", "", fixedNow, fixedNow))
	mock.ExpectQuery("FROM tour_bookings WHERE id = \\?").WithArgs(int64(888)).WillReturnRows(sqlmock.NewRows(tourCols))
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), 3, models.AssignmentInput{DriverID: 2, Booking: models.TourRef(888), Status: domain.AssignmentAssigned})
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Details()["booking_id"] == "" {
		t.Fatalf("expected booking_id validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignmentDeleteTwiceSucceeds(t *testing.T) {
	svc, mock := newMockAssignmentService(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM driver_assignments").WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), models.EventAssignmentDeleted, "4", sqlmock.AnyArg(), models.OutboxNew, "req-test").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM driver_assignments").WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	first, err := svc.Delete(context.Background(), 4)
	if err != nil || !first {
		t.Fatalf("first delete: deleted=%v err=%v", first, err)
	}
	second, err := svc.Delete(context.Background(), 4)
	if err != nil || second {
		t.Fatalf("second delete: deleted=%v err=%v", second, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmAndAssignRollsBackBookingWhenInsertFails(t *testing.T) {
	svc, mock := newMockAssignmentService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tour_bookings WHERE id = \\?").WithArgs(int64(1)).WillReturnRows(tourRow(1, "2099-12-31", 100, "pending"))
	mock.ExpectExec("UPDATE tour_bookings SET status").WithArgs("confirmed", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO driver_assignments").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.ConfirmAndAssign(context.Background(), models.AssignmentInput{DriverID: 2, Booking: models.TourRef(1)})
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("booking update was not rolled back: %v", err)
	}
}

func TestConfirmAndAssignMissingBookingIsNotFound(t *testing.T) {
	svc, mock := newMockAssignmentService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tour_bookings WHERE id = \\?").WithArgs(int64(404)).WillReturnRows(sqlmock.NewRows(tourCols))
	mock.ExpectRollback()

	_, err := svc.ConfirmAndAssign(context.Background(), models.AssignmentInput{DriverID: 2, Booking: models.TourRef(404)})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmAndAssignCommitsAllWrites(t *testing.T) {
	svc, mock := newMockAssignmentService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tour_bookings WHERE id = \\?").WillReturnRows(tourRow(1, "2099-12-31", 100, "pending"))
	mock.ExpectExec("UPDATE tour_bookings SET status").WithArgs("confirmed", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO driver_assignments").WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery("FROM driver_assignments a WHERE a.id = \\?").
		WillReturnRows(sqlmock.NewRows(assignmentCols).AddRow(8, 2, "tour", "1", "assigned", "", fixedNow, fixedNow))
	mock.ExpectQuery("FROM tour_bookings WHERE id = \\?").WillReturnRows(tourRow(1, "2099-12-31", 100, "confirmed"))
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), models.EventBookingConfirmed, "tour:1", sqlmock.AnyArg(), models.OutboxNew, "req-test").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.ConfirmAndAssign(context.Background(), models.AssignmentInput{DriverID: 2, Booking: models.TourRef(1)})
	if err != nil {
		t.Fatalf("ConfirmAndAssign error: %v", err)
	}
	if res.Booking.Status() != domain.BookingConfirmed || res.Assignment.ID != 8 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.PreviousStatus != domain.BookingPending {
		t.Fatalf("previous status = %q, want pending", res.PreviousStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmAndAssignRecordsReopenedStatusInEvent(t *testing.T) {
	svc, mock := newMockAssignmentService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tour_bookings WHERE id = \\?").WillReturnRows(tourRow(1, "2099-12-31", 100, "cancelled"))
	mock.ExpectExec("UPDATE tour_bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO driver_assignments").WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery("FROM driver_assignments a WHERE a.id = \\?").
		WillReturnRows(sqlmock.NewRows(assignmentCols).AddRow(9, 2, "tour", "1", "assigned", "", fixedNow, fixedNow))
	mock.ExpectQuery("FROM tour_bookings WHERE id = \\?").WillReturnRows(tourRow(1, "2099-12-31", 100, "confirmed"))
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), models.EventBookingConfirmed, "tour:1", payloadContains(`"previous_status":"cancelled"`), models.OutboxNew, "req-test").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.ConfirmAndAssign(context.Background(), models.AssignmentInput{DriverID: 2, Booking: models.TourRef(1)})
	if err != nil {
		t.Fatalf("ConfirmAndAssign error: %v", err)
	}
	if res.PreviousStatus != domain.BookingCancelled {
		t.Fatalf("previous status = %q, want cancelled", res.PreviousStatus)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// payloadContains matches a JSON payload argument holding want.
type payloadContains string

func (p payloadContains) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	return ok && strings.Contains(string(b), string(p))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, mock := newMockAssignmentService(t)
	_, err := svc.UpdateStatus(context.Background(), 1, domain.AssignmentStatus("Completed"))
	if !domain.IsValidation(err) {
		t.Fatalf("status is case-sensitive, expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no store access expected: %v", err)
	}
}
