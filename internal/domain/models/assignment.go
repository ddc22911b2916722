package models

import (
	"time"

	"tourdesk/internal/domain"
)

// Assignment links one driver to one booking.
type Assignment struct {
	ID          int64                   `json:"id"`
	DriverID    int64                   `json:"driver_id"`
	BookingType domain.BookingKind      `json:"booking_type"`
	BookingID   BookingRef              `json:"booking_id"`
	Status      domain.AssignmentStatus `json:"assignment_status"`
	Notes       string                  `json:"notes"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// AssignmentInput is a validated create/update payload.
type AssignmentInput struct {
	DriverID int64                   `json:"driver_id" validate:"required,gt=0"`
	Booking  BookingRef              `json:"booking_id"`
	Status   domain.AssignmentStatus `json:"assignment_status" validate:"required,assignment_status"`
	Notes    string                  `json:"notes" validate:"max=500"`
}

// AssignmentView is an assignment joined with its driver name, used by the calendar.
type AssignmentView struct {
	Assignment
	DriverName string `json:"driver_name"`
}

// OrphanedAssignment points at a booking that exists in neither table.
type OrphanedAssignment struct {
	AssignmentID int64              `json:"assignment_id"`
	DriverID     int64              `json:"driver_id"`
	BookingType  domain.BookingKind `json:"booking_type"`
	BookingID    BookingRef         `json:"booking_id"`
}

func OrphanOf(a Assignment) OrphanedAssignment {
	return OrphanedAssignment{
		AssignmentID: a.ID,
		DriverID:     a.DriverID,
		BookingType:  a.BookingType,
		BookingID:    a.BookingID,
	}
}
