package handlers

import (
	"encoding/json"
	"net/http"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTourBookings(c *gin.Context) {
	list, err := h.bookings(c).ListTours(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (h *Handler) CreateTourBooking(c *gin.Context) {
	var req models.TourBooking
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookings(c).CreateTour(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, b)
}

func (h *Handler) ListAirportBookings(c *gin.Context) {
	list, err := h.bookings(c).ListAirport(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (h *Handler) CreateAirportBooking(c *gin.Context) {
	var req models.AirportBooking
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookings(c).CreateAirport(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, b)
}

// GetBooking, UpdateBookingStatus and ConfirmBooking are mounted once per
// kind; the kind is fixed by the route, the id comes from the path.
func (h *Handler) GetBooking(kind domain.BookingKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := models.ParseBookingRefParam(string(kind), c.Param("id"))
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		b, err := h.bookings(c).Get(c.Request.Context(), ref)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		respondOK(c, http.StatusOK, b)
	}
}

func (h *Handler) UpdateBookingStatus(kind domain.BookingKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := models.ParseBookingRefParam(string(kind), c.Param("id"))
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		var req models.BookingStatusUpdate
		if !BindJSONOrError(c, &req) {
			return
		}
		b, err := h.bookings(c).UpdateStatus(c.Request.Context(), ref, req.Status)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		h.Calendar.Bump(c.Request.Context())
		respondOK(c, http.StatusOK, b)
	}
}

type confirmRequest struct {
	DriverID json.RawMessage `json:"driver_id"`
	Notes    string          `json:"notes"`
}

// ConfirmBooking marks the booking confirmed and assigns the driver in one
// transaction.
func (h *Handler) ConfirmBooking(kind domain.BookingKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := models.ParseBookingRefParam(string(kind), c.Param("id"))
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		var req confirmRequest
		if !BindJSONOrError(c, &req) {
			return
		}
		var driverID int64
		if err := json.Unmarshal(req.DriverID, &driverID); err != nil || driverID <= 0 {
			RespondDomainError(c, domain.ValidationError{Field: "driver_id", Msg: "must be a positive integer"})
			return
		}
		res, err := h.assignments(c).ConfirmAndAssign(c.Request.Context(), models.AssignmentInput{
			DriverID: driverID,
			Booking:  ref,
			Status:   domain.AssignmentAssigned,
			Notes:    req.Notes,
		})
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, res)
	}
}
