package services

import (
	"context"
	"fmt"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/repositories"
	"tourdesk/internal/utils"

	"github.com/google/uuid"
)

// BookingService manages both booking kinds. Airport ids are generated here.
type BookingService struct {
	Bookings  repositories.BookingRepository
	RequestID string
}

func (s BookingService) CreateTour(ctx context.Context, b models.TourBooking) (models.TourBooking, error) {
	b.CustomerName = utils.NormalizeSpace(b.CustomerName)
	if b.Status == "" {
		b.Status = domain.BookingPending
	}
	if b.Guests == 0 {
		b.Guests = 1
	}
	if err := domain.Validate(b); err != nil {
		return models.TourBooking{}, err
	}
	created, err := s.Bookings.CreateTour(ctx, b)
	if err != nil {
		return models.TourBooking{}, domain.StoreError("gagal membuat booking tour", err)
	}
	utils.LogEvent(s.RequestID, "booking", "create_tour", fmt.Sprintf("booking_id=%d date=%s", created.ID, created.BookingDate))
	return created, nil
}

func (s BookingService) CreateAirport(ctx context.Context, b models.AirportBooking) (models.AirportBooking, error) {
	b.CustomerName = utils.NormalizeSpace(b.CustomerName)
	if b.Status == "" {
		b.Status = domain.BookingPending
	}
	if b.Passengers == 0 {
		b.Passengers = 1
	}
	if err := domain.Validate(b); err != nil {
		return models.AirportBooking{}, err
	}
	if b.ArrivalDate == "" && b.DepartureDate == "" {
		return models.AirportBooking{}, domain.ValidationError{Fields: map[string]string{
			"arrival_date":   "arrival_date or departure_date is required",
			"departure_date": "arrival_date or departure_date is required",
		}}
	}
	b.ID = uuid.New()
	created, err := s.Bookings.CreateAirport(ctx, b)
	if err != nil {
		return models.AirportBooking{}, domain.StoreError("gagal membuat booking airport", err)
	}
	utils.LogEvent(s.RequestID, "booking", "create_airport", "booking_id="+created.ID.String())
	return created, nil
}

func (s BookingService) ListTours(ctx context.Context) ([]models.TourBooking, error) {
	list, err := s.Bookings.ListTours(ctx)
	if err != nil {
		return nil, domain.StoreError("gagal memuat booking tour", err)
	}
	return list, nil
}

func (s BookingService) ListAirport(ctx context.Context) ([]models.AirportBooking, error) {
	list, err := s.Bookings.ListAirport(ctx)
	if err != nil {
		return nil, domain.StoreError("gagal memuat booking airport", err)
	}
	return list, nil
}

func (s BookingService) Get(ctx context.Context, ref models.BookingRef) (models.Booking, error) {
	b, err := s.Bookings.Get(ctx, ref)
	if err != nil {
		return models.Booking{}, domain.StoreError("gagal memuat booking", err)
	}
	return b, nil
}

// UpdateStatus sets any lifecycle status; confirming with a driver goes
// through AssignmentService.ConfirmAndAssign instead.
func (s BookingService) UpdateStatus(ctx context.Context, ref models.BookingRef, status domain.BookingStatus) (models.Booking, error) {
	if err := domain.Validate(models.BookingStatusUpdate{Status: status}); err != nil {
		return models.Booking{}, err
	}
	if err := s.Bookings.UpdateStatus(ctx, ref, status); err != nil {
		return models.Booking{}, domain.StoreError("gagal memperbarui status booking", err)
	}
	utils.LogEvent(s.RequestID, "booking", "update_status", fmt.Sprintf("booking=%s status=%s", ref, status))
	return s.Get(ctx, ref)
}
