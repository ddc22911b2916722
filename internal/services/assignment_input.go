package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

// ParseAssignmentInput decodes a create (requireID=false) or full-replace
// (requireID=true) body. Every malformed field is reported, not just the first.
func ParseAssignmentInput(body []byte, requireID bool) (int64, models.AssignmentInput, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return 0, models.AssignmentInput{}, domain.ValidationError{Field: "body", Msg: "must be a JSON object"}
	}

	fields := map[string]string{}
	var id int64
	if requireID {
		v, msg := positiveInt(raw["id"])
		if msg != "" {
			fields["id"] = msg
		}
		id = v
	}

	in := models.AssignmentInput{Status: domain.AssignmentAssigned}
	if v, msg := positiveInt(raw["driver_id"]); msg != "" {
		fields["driver_id"] = msg
	} else {
		in.DriverID = v
	}

	var hint domain.BookingKind
	if rawType, ok := raw["booking_type"]; ok && !isNull(rawType) {
		var s string
		if err := json.Unmarshal(rawType, &s); err != nil || !domain.BookingKind(strings.TrimSpace(s)).Valid() {
			fields["booking_type"] = "must be tour or airport"
		} else {
			hint = domain.BookingKind(strings.TrimSpace(s))
		}
	}
	if ref, err := models.ParseBookingRefJSON(raw["booking_id"], hint); err != nil {
		fields["booking_id"] = err.Error()
	} else {
		in.Booking = ref
	}

	if rawStatus, ok := raw["assignment_status"]; ok && !isNull(rawStatus) {
		var s string
		if err := json.Unmarshal(rawStatus, &s); err != nil {
			fields["assignment_status"] = "must be a string"
		} else {
			in.Status = domain.AssignmentStatus(s)
		}
	}

	if rawNotes, ok := raw["notes"]; ok && !isNull(rawNotes) {
		if err := json.Unmarshal(rawNotes, &in.Notes); err != nil {
			fields["notes"] = "must be a string"
		}
	}

	if err := domain.Validate(in); err != nil {
		for k, v := range validationDetails(err) {
			if _, seen := fields[k]; !seen {
				fields[k] = v
			}
		}
	}
	if len(fields) > 0 {
		return 0, models.AssignmentInput{}, domain.ValidationError{Fields: fields}
	}
	return id, in, nil
}

// ParseAssignmentStatus reads the body of the status PATCH.
func ParseAssignmentStatus(body []byte) (domain.AssignmentStatus, error) {
	var req struct {
		Status *string `json:"assignment_status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return "", domain.ValidationError{Field: "body", Msg: "must be a JSON object"}
	}
	if req.Status == nil {
		return "", domain.ValidationError{Field: "assignment_status", Msg: "is required"}
	}
	status := domain.AssignmentStatus(*req.Status)
	if !status.Valid() {
		return "", domain.ValidationError{Field: "assignment_status", Msg: "must be one of assigned, in_progress, completed, cancelled"}
	}
	return status, nil
}

// positiveInt accepts only a JSON integer literal greater than zero.
func positiveInt(raw json.RawMessage) (int64, string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return 0, "is required"
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, "must be an integer"
	}
	if v <= 0 {
		return 0, "must be greater than 0"
	}
	return v, ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func validationDetails(err error) map[string]string {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Details()
	}
	return map[string]string{"body": err.Error()}
}
