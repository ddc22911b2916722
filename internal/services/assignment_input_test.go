package services

import (
	"errors"
	"testing"

	"tourdesk/internal/domain"

	"github.com/google/uuid"
)

func TestParseAssignmentInputDefaultsStatus(t *testing.T) {
	_, in, err := ParseAssignmentInput([]byte(`{"driver_id":3,"booking_id":12}`), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Status != domain.AssignmentAssigned || in.Booking.Kind != domain.KindTour || in.Booking.TourID != 12 {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestParseAssignmentInputAirportByShape(t *testing.T) {
	id := uuid.New()
	_, in, err := ParseAssignmentInput([]byte(`{"driver_id":3,"booking_id":"`+id.String()+`","assignment_status":"in_progress"}`), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Booking.Kind != domain.KindAirport || in.Booking.AirportID != id || in.Status != domain.AssignmentInProgress {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestParseAssignmentInputReportsEveryField(t *testing.T) {
	_, _, err := ParseAssignmentInput([]byte(`{"id":"7","driver_id":"3","booking_id":"not-a-uuid","assignment_status":"bogus"}`), true)
	var verr domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := verr.Details()
	for _, field := range []string{"id", "driver_id", "booking_id", "assignment_status"} {
		if details[field] == "" {
			t.Fatalf("missing detail for %s: %v", field, details)
		}
	}
}

func TestParseAssignmentInputRejectsFractionalAndZero(t *testing.T) {
	for _, body := range []string{
		`{"driver_id":1.5,"booking_id":1}`,
		`{"driver_id":0,"booking_id":1}`,
		`{"driver_id":1,"booking_id":-4}`,
		`{"driver_id":1,"booking_id":3,"booking_type":"airport"}`,
		`[]`,
	} {
		if _, _, err := ParseAssignmentInput([]byte(body), false); !domain.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", body, err)
		}
	}
}

func TestParseAssignmentStatus(t *testing.T) {
	if s, err := ParseAssignmentStatus([]byte(`{"assignment_status":"cancelled"}`)); err != nil || s != domain.AssignmentCancelled {
		t.Fatalf("got %q %v", s, err)
	}
	if _, err := ParseAssignmentStatus([]byte(`{}`)); !domain.IsValidation(err) {
		t.Fatalf("missing status must be a validation error, got %v", err)
	}
}
