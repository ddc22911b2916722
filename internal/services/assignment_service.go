package services

import (
	"context"
	"fmt"
	"strconv"

	intdb "tourdesk/internal/db"
	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/metrics"
	"tourdesk/internal/repositories"
	"tourdesk/internal/utils"
)

// AssignmentChange describes a committed assignment write.
type AssignmentChange struct {
	Op           string             `json:"op"`
	AssignmentID int64              `json:"assignment_id"`
	DriverID     int64              `json:"driver_id,omitempty"`
	BookingType  domain.BookingKind `json:"booking_type,omitempty"`
	BookingID    *models.BookingRef `json:"booking_id,omitempty"`
	RequestID    string             `json:"request_id,omitempty"`
}

// ChangeHook runs after commit. It must not fail the request.
type ChangeHook func(ctx context.Context, change AssignmentChange)

// AssignmentService owns every write to driver_assignments. Each write and its
// outbox event commit together.
type AssignmentService struct {
	Assignments repositories.AssignmentRepository
	Bookings    repositories.BookingRepository
	Outbox      repositories.OutboxRepository
	Tx          intdb.TxManager
	Hooks       []ChangeHook
	RequestID   string
}

// ConfirmResult is the booking after confirmation and its new assignment.
// PreviousStatus is the booking status the confirmation replaced.
type ConfirmResult struct {
	Booking        models.Booking       `json:"booking"`
	Assignment     models.Assignment    `json:"assignment"`
	PreviousStatus domain.BookingStatus `json:"previous_status"`
}

func (s AssignmentService) List(ctx context.Context) ([]models.Assignment, error) {
	list, err := s.Assignments.List(ctx)
	if err != nil {
		return nil, domain.StoreError("gagal memuat assignment", err)
	}
	return list, nil
}

func (s AssignmentService) Create(ctx context.Context, in models.AssignmentInput) (models.Assignment, error) {
	var created models.Assignment
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureBooking(ctx, in.Booking); err != nil {
			return err
		}
		a, err := s.Assignments.Create(ctx, in)
		if err != nil {
			return err
		}
		if _, err := s.Outbox.Create(ctx, models.EventAssignmentCreated, idString(a.ID), s.RequestID, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return models.Assignment{}, domain.StoreError("gagal membuat assignment", err)
	}

	utils.LogEvent(s.RequestID, "assignment", "create",
		fmt.Sprintf("assignment_id=%d driver_id=%d booking=%s", created.ID, created.DriverID, created.BookingID))
	s.committed(ctx, "create", created)
	return created, nil
}

// Update replaces the row. A missing id is NotFound and writes nothing, even
// when the named booking is missing too.
func (s AssignmentService) Update(ctx context.Context, id int64, in models.AssignmentInput) (models.Assignment, error) {
	if id <= 0 {
		return models.Assignment{}, domain.ValidationError{Field: "id", Msg: "must be greater than 0"}
	}
	var updated models.Assignment
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.Assignments.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.ensureBooking(ctx, in.Booking); err != nil {
			return err
		}
		a, err := s.Assignments.Update(ctx, id, in)
		if err != nil {
			return err
		}
		if _, err := s.Outbox.Create(ctx, models.EventAssignmentUpdated, idString(a.ID), s.RequestID, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return models.Assignment{}, domain.StoreError("gagal memperbarui assignment", err)
	}

	utils.LogEvent(s.RequestID, "assignment", "update",
		fmt.Sprintf("assignment_id=%d status=%s", updated.ID, updated.Status))
	s.committed(ctx, "update", updated)
	return updated, nil
}

// UpdateStatus changes only assignment_status. Any status may follow any other.
func (s AssignmentService) UpdateStatus(ctx context.Context, id int64, status domain.AssignmentStatus) (models.Assignment, error) {
	if id <= 0 {
		return models.Assignment{}, domain.ValidationError{Field: "id", Msg: "must be greater than 0"}
	}
	if !status.Valid() {
		return models.Assignment{}, domain.ValidationError{Field: "assignment_status", Msg: "must be one of assigned, in_progress, completed, cancelled"}
	}
	var updated models.Assignment
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.Assignments.UpdateStatus(ctx, id, status)
		if err != nil {
			return err
		}
		if _, err := s.Outbox.Create(ctx, models.EventAssignmentUpdated, idString(a.ID), s.RequestID, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return models.Assignment{}, domain.StoreError("gagal memperbarui status assignment", err)
	}

	utils.LogEvent(s.RequestID, "assignment", "update_status",
		fmt.Sprintf("assignment_id=%d status=%s", updated.ID, updated.Status))
	s.committed(ctx, "update_status", updated)
	return updated, nil
}

// Delete is idempotent: a missing id returns (false, nil).
func (s AssignmentService) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, domain.ValidationError{Field: "id", Msg: "must be greater than 0"}
	}
	var removed bool
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.Assignments.Delete(ctx, id)
		if err != nil || !ok {
			return err
		}
		removed = true
		_, err = s.Outbox.Create(ctx, models.EventAssignmentDeleted, idString(id), s.RequestID, map[string]int64{"id": id})
		return err
	})
	if err != nil {
		return false, domain.StoreError("gagal menghapus assignment", err)
	}

	utils.LogEvent(s.RequestID, "assignment", "delete", fmt.Sprintf("assignment_id=%d deleted=%t", id, removed))
	if removed {
		metrics.AssignmentMutation("delete")
		s.notify(ctx, AssignmentChange{Op: "delete", AssignmentID: id, RequestID: s.RequestID})
	}
	return removed, nil
}

// ConfirmAndAssign confirms the booking and assigns a driver in one
// transaction. A missing booking or a failed insert leaves both untouched.
func (s AssignmentService) ConfirmAndAssign(ctx context.Context, in models.AssignmentInput) (ConfirmResult, error) {
	if in.Booking.IsZero() {
		return ConfirmResult{}, domain.ValidationError{Field: "booking_id", Msg: "is required"}
	}
	if in.Status == "" {
		in.Status = domain.AssignmentAssigned
	}
	if err := domain.Validate(in); err != nil {
		return ConfirmResult{}, err
	}

	var out ConfirmResult
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		prior, err := s.Bookings.Get(ctx, in.Booking)
		if err != nil {
			return err
		}
		if err := s.Bookings.UpdateStatus(ctx, in.Booking, domain.BookingConfirmed); err != nil {
			return err
		}
		a, err := s.Assignments.Create(ctx, in)
		if err != nil {
			return err
		}
		b, err := s.Bookings.Get(ctx, in.Booking)
		if err != nil {
			return err
		}
		out = ConfirmResult{Booking: b, Assignment: a, PreviousStatus: prior.Status()}
		_, err = s.Outbox.Create(ctx, models.EventBookingConfirmed, in.Booking.String(), s.RequestID, out)
		return err
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "assignment", "confirm_rollback", fmt.Sprintf("booking=%s err=%v", in.Booking, err))
		return ConfirmResult{}, domain.StoreError("gagal konfirmasi booking", err)
	}

	utils.LogEvent(s.RequestID, "assignment", "confirm",
		fmt.Sprintf("booking=%s previous_status=%s assignment_id=%d driver_id=%d",
			in.Booking, out.PreviousStatus, out.Assignment.ID, out.Assignment.DriverID))
	if out.PreviousStatus == domain.BookingCancelled || out.PreviousStatus == domain.BookingCompleted {
		utils.LogWarn(s.RequestID, "assignment", "confirm_reopened",
			fmt.Sprintf("booking=%s was %s and is confirmed again", in.Booking, out.PreviousStatus))
	}
	s.committed(ctx, "confirm", out.Assignment)
	return out, nil
}

// ensureBooking rejects refs to bookings that do not exist in their own table.
func (s AssignmentService) ensureBooking(ctx context.Context, ref models.BookingRef) error {
	if _, err := s.Bookings.Get(ctx, ref); err != nil {
		if domain.IsNotFound(err) {
			return domain.ValidationError{Field: "booking_id", Msg: string(ref.Kind) + " booking not found", Err: err}
		}
		return err
	}
	return nil
}

func (s AssignmentService) committed(ctx context.Context, op string, a models.Assignment) {
	metrics.AssignmentMutation(op)
	ref := a.BookingID
	s.notify(ctx, AssignmentChange{
		Op:           op,
		AssignmentID: a.ID,
		DriverID:     a.DriverID,
		BookingType:  a.BookingType,
		BookingID:    &ref,
		RequestID:    s.RequestID,
	})
}

func (s AssignmentService) notify(ctx context.Context, change AssignmentChange) {
	for _, hook := range s.Hooks {
		if hook != nil {
			hook(ctx, change)
		}
	}
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }
