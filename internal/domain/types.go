package domain

// AssignmentStatus is the wire-level, case-sensitive assignment state.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentCancelled  AssignmentStatus = "cancelled"
)

var AssignmentStatuses = []AssignmentStatus{AssignmentAssigned, AssignmentInProgress, AssignmentCompleted, AssignmentCancelled}

func (s AssignmentStatus) Valid() bool {
	for _, v := range AssignmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// BookingStatus is the lifecycle of a tour or airport booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// BookingKind tells which booking table an id belongs to.
type BookingKind string

const (
	KindTour    BookingKind = "tour"
	KindAirport BookingKind = "airport"
)

func (k BookingKind) Valid() bool {
	return k == KindTour || k == KindAirport
}

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverActive    DriverStatus = "active"
	DriverBusy      DriverStatus = "busy"
	DriverInactive  DriverStatus = "inactive"
)

func (s DriverStatus) Valid() bool {
	switch s {
	case DriverAvailable, DriverActive, DriverBusy, DriverInactive:
		return true
	}
	return false
}

// RequestContext carries the authenticated operator.
type RequestContext struct {
	OperatorID int64  `json:"operatorId"`
	Role       string `json:"role"`
}
