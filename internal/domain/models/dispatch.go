package models

import "tourdesk/internal/domain"

// Job is one booking on a driver's list, normalized across booking kinds.
type Job struct {
	ID               BookingRef              `json:"id"`
	Type             domain.BookingKind      `json:"type"`
	CustomerName     string                  `json:"customer_name"`
	Date             string                  `json:"date"`
	Status           domain.BookingStatus    `json:"status"`
	Amount           float64                 `json:"amount"`
	AssignmentID     int64                   `json:"assignment_id"`
	AssignmentStatus domain.AssignmentStatus `json:"assignment_status"`
}

type DriverJobs struct {
	DriverID int64                `json:"driver_id"`
	Jobs     []Job                `json:"jobs"`
	Orphaned []OrphanedAssignment `json:"orphaned_assignments"`
}

// CalendarEvent is the flat event shape the dispatch calendar renders.
type CalendarEvent struct {
	ID               string                  `json:"id"`
	AssignmentID     int64                   `json:"assignment_id"`
	Title            string                  `json:"title"`
	Date             string                  `json:"date"`
	AllDay           bool                    `json:"all_day"`
	DriverID         int64                   `json:"driver_id"`
	DriverName       string                  `json:"driver_name"`
	BookingType      domain.BookingKind      `json:"booking_type"`
	BookingID        BookingRef              `json:"booking_id"`
	CustomerName     string                  `json:"customer_name"`
	BookingStatus    domain.BookingStatus    `json:"booking_status"`
	AssignmentStatus domain.AssignmentStatus `json:"assignment_status"`
	Amount           float64                 `json:"amount"`
}

type CalendarFeed struct {
	Events                 []CalendarEvent      `json:"events"`
	Orphaned               []OrphanedAssignment `json:"orphaned_assignments"`
	RefreshIntervalSeconds int                  `json:"refresh_interval_seconds"`
}
