package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tourdesk/internal/domain"

	"github.com/google/uuid"
)

// TourBooking mirrors tour_bookings (integer ids).
type TourBooking struct {
	ID            int64                `json:"id" db:"id"`
	CustomerName  string               `json:"customer_name" db:"customer_name" validate:"required,max=255"`
	CustomerEmail string               `json:"customer_email" db:"customer_email" validate:"omitempty,email"`
	CustomerPhone string               `json:"customer_phone" db:"customer_phone" validate:"max=50"`
	TourName      string               `json:"tour_name" db:"tour_name" validate:"max=255"`
	BookingDate   string               `json:"booking_date" db:"booking_date" validate:"required,datetime=2006-01-02"`
	Guests        int                  `json:"guests" db:"guests" validate:"gte=0"`
	TotalAmount   float64              `json:"total_amount" db:"total_amount" validate:"gte=0"`
	Status        domain.BookingStatus `json:"status" db:"status" validate:"booking_status"`
	CreatedAt     time.Time            `json:"created_at" db:"created_at"`
}

// AirportBooking mirrors airport_bookings (UUID ids).
type AirportBooking struct {
	ID              uuid.UUID            `json:"id" db:"id"`
	CustomerName    string               `json:"customer_name" db:"customer_name" validate:"required,max=255"`
	CustomerEmail   string               `json:"customer_email" db:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string               `json:"customer_phone" db:"customer_phone" validate:"max=50"`
	FlightNumber    string               `json:"flight_number" db:"flight_number" validate:"max=20"`
	ArrivalDate     string               `json:"arrival_date" db:"arrival_date" validate:"omitempty,datetime=2006-01-02"`
	DepartureDate   string               `json:"departure_date" db:"departure_date" validate:"omitempty,datetime=2006-01-02"`
	PickupLocation  string               `json:"pickup_location" db:"pickup_location"`
	DropoffLocation string               `json:"dropoff_location" db:"dropoff_location"`
	Passengers      int                  `json:"passengers" db:"passengers" validate:"gte=0"`
	TotalPrice      float64              `json:"total_price" db:"total_price" validate:"gte=0"`
	Status          domain.BookingStatus `json:"status" db:"status" validate:"booking_status"`
	CreatedAt       time.Time            `json:"created_at" db:"created_at"`
}

// Booking is one of the two booking kinds; exactly one detail pointer is set.
type Booking struct {
	Kind    domain.BookingKind `json:"type"`
	Tour    *TourBooking       `json:"tour,omitempty"`
	Airport *AirportBooking    `json:"airport,omitempty"`
}

func TourBookingOf(t TourBooking) Booking { return Booking{Kind: domain.KindTour, Tour: &t} }

func AirportBookingOf(a AirportBooking) Booking {
	return Booking{Kind: domain.KindAirport, Airport: &a}
}

func (b Booking) Ref() BookingRef {
	if b.Airport != nil {
		return AirportRef(b.Airport.ID)
	}
	if b.Tour != nil {
		return TourRef(b.Tour.ID)
	}
	return BookingRef{}
}

func (b Booking) CustomerName() string {
	if b.Airport != nil {
		return b.Airport.CustomerName
	}
	if b.Tour != nil {
		return b.Tour.CustomerName
	}
	return ""
}

// Date is booking_date for tours, arrival_date then departure_date for airport transfers.
func (b Booking) Date() string {
	if b.Airport != nil {
		if d := strings.TrimSpace(b.Airport.ArrivalDate); d != "" {
			return d
		}
		return strings.TrimSpace(b.Airport.DepartureDate)
	}
	if b.Tour != nil {
		return strings.TrimSpace(b.Tour.BookingDate)
	}
	return ""
}

func (b Booking) Amount() float64 {
	if b.Airport != nil {
		return b.Airport.TotalPrice
	}
	if b.Tour != nil {
		return b.Tour.TotalAmount
	}
	return 0
}

func (b Booking) Status() domain.BookingStatus {
	if b.Airport != nil {
		return b.Airport.Status
	}
	if b.Tour != nil {
		return b.Tour.Status
	}
	return ""
}

// BookingRef identifies a booking across both tables. On the wire a tour id is
// a JSON number and an airport id a UUID string.
type BookingRef struct {
	Kind      domain.BookingKind
	TourID    int64
	AirportID uuid.UUID
}

func TourRef(id int64) BookingRef { return BookingRef{Kind: domain.KindTour, TourID: id} }

func AirportRef(id uuid.UUID) BookingRef {
	return BookingRef{Kind: domain.KindAirport, AirportID: id}
}

func (r BookingRef) IsZero() bool {
	switch r.Kind {
	case domain.KindTour:
		return r.TourID <= 0
	case domain.KindAirport:
		return r.AirportID == uuid.Nil
	}
	return true
}

// Key is the value stored in driver_assignments.booking_id.
func (r BookingRef) Key() string {
	if r.Kind == domain.KindAirport {
		return r.AirportID.String()
	}
	return strconv.FormatInt(r.TourID, 10)
}

func (r BookingRef) String() string { return string(r.Kind) + ":" + r.Key() }

func (r BookingRef) MarshalJSON() ([]byte, error) {
	if r.Kind == domain.KindAirport {
		return json.Marshal(r.AirportID.String())
	}
	return []byte(strconv.FormatInt(r.TourID, 10)), nil
}

// ParseStoredRef rebuilds a ref from the booking_kind/booking_id columns.
func ParseStoredRef(kind, key string) (BookingRef, error) {
	switch domain.BookingKind(kind) {
	case domain.KindTour:
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return BookingRef{}, fmt.Errorf("tour booking id %q: %w", key, err)
		}
		return TourRef(id), nil
	case domain.KindAirport:
		id, err := uuid.Parse(strings.TrimSpace(key))
		if err != nil {
			return BookingRef{}, fmt.Errorf("airport booking id %q: %w", key, err)
		}
		return AirportRef(id), nil
	}
	return BookingRef{}, fmt.Errorf("unknown booking kind %q", kind)
}

// ParseBookingRefJSON reads a booking_id value. kindHint may be empty, "tour" or
// "airport"; when empty the JSON shape decides.
func ParseBookingRefJSON(raw json.RawMessage, kindHint domain.BookingKind) (BookingRef, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return BookingRef{}, fmt.Errorf("is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return BookingRef{}, fmt.Errorf("must be an integer")
		}
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil || kindHint == domain.KindTour {
			if kindHint == domain.KindAirport {
				return BookingRef{}, fmt.Errorf("must be a UUID")
			}
			return BookingRef{}, fmt.Errorf("must be an integer")
		}
		return AirportRef(id), nil
	}
	if kindHint == domain.KindAirport {
		return BookingRef{}, fmt.Errorf("must be a UUID")
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return BookingRef{}, fmt.Errorf("must be an integer")
	}
	if id <= 0 {
		return BookingRef{}, fmt.Errorf("must be greater than 0")
	}
	return TourRef(id), nil
}

// ParseBookingRefParam reads a ref from a path segment pair such as /bookings/tour/12.
func ParseBookingRefParam(kind, id string) (BookingRef, error) {
	k := domain.BookingKind(strings.ToLower(strings.TrimSpace(kind)))
	switch k {
	case "tours":
		k = domain.KindTour
	case "airport-transfers", "airports":
		k = domain.KindAirport
	}
	if !k.Valid() {
		return BookingRef{}, domain.ValidationError{Field: "type", Msg: "must be tour or airport"}
	}
	ref, err := ParseStoredRef(string(k), id)
	if err != nil || ref.IsZero() {
		msg := "must be an integer"
		if k == domain.KindAirport {
			msg = "must be a UUID"
		}
		return BookingRef{}, domain.ValidationError{Field: "id", Msg: msg}
	}
	return ref, nil
}

// BookingStatusUpdate is the body of the booking status endpoints.
type BookingStatusUpdate struct {
	Status domain.BookingStatus `json:"status" validate:"required,booking_status"`
}
