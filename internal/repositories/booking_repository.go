package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	intconfig "tourdesk/internal/config"
	intdb "tourdesk/internal/db"
	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

const tourColumns = `id, customer_name,
	COALESCE(customer_email, '') AS customer_email,
	COALESCE(customer_phone, '') AS customer_phone,
	COALESCE(tour_name, '') AS tour_name,
	DATE_FORMAT(booking_date, '%Y-%m-%d') AS booking_date,
	guests, total_amount, status, created_at`

const airportColumns = `id, customer_name,
	COALESCE(customer_email, '') AS customer_email,
	COALESCE(customer_phone, '') AS customer_phone,
	COALESCE(flight_number, '') AS flight_number,
	COALESCE(DATE_FORMAT(arrival_date, '%Y-%m-%d'), '') AS arrival_date,
	COALESCE(DATE_FORMAT(departure_date, '%Y-%m-%d'), '') AS departure_date,
	COALESCE(pickup_location, '') AS pickup_location,
	COALESCE(dropoff_location, '') AS dropoff_location,
	passengers, total_price, status, created_at`

// BookingRepository covers both booking tables. Callers pick the table by kind;
// nothing here checks both.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BookingRepository) conn(ctx context.Context) intdb.Executor {
	return intdb.Conn(ctx, r.db())
}

func (r BookingRepository) CreateTour(ctx context.Context, b models.TourBooking) (models.TourBooking, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO tour_bookings (customer_name, customer_email, customer_phone, tour_name, booking_date, guests, total_amount, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.CustomerName, intdb.NullIfEmpty(b.CustomerEmail), intdb.NullIfEmpty(b.CustomerPhone), intdb.NullIfEmpty(b.TourName),
		b.BookingDate, b.Guests, b.TotalAmount, string(b.Status))
	if err != nil {
		return models.TourBooking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.TourBooking{}, err
	}
	return r.GetTour(ctx, id)
}

func (r BookingRepository) CreateAirport(ctx context.Context, b models.AirportBooking) (models.AirportBooking, error) {
	_, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO airport_bookings (id, customer_name, customer_email, customer_phone, flight_number,
			arrival_date, departure_date, pickup_location, dropoff_location, passengers, total_price, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID.String(), b.CustomerName, intdb.NullIfEmpty(b.CustomerEmail), intdb.NullIfEmpty(b.CustomerPhone),
		intdb.NullIfEmpty(b.FlightNumber), intdb.NullIfEmpty(b.ArrivalDate), intdb.NullIfEmpty(b.DepartureDate),
		intdb.NullIfEmpty(b.PickupLocation), intdb.NullIfEmpty(b.DropoffLocation), b.Passengers, b.TotalPrice, string(b.Status))
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicate) {
			return models.AirportBooking{}, domain.ConflictError{Resource: "airport booking", Msg: "id already exists", Err: err}
		}
		return models.AirportBooking{}, err
	}
	return r.GetAirport(ctx, b.ID)
}

func (r BookingRepository) GetTour(ctx context.Context, id int64) (models.TourBooking, error) {
	var b models.TourBooking
	err := sqlscan.Get(ctx, r.conn(ctx), &b, `SELECT `+tourColumns+` FROM tour_bookings WHERE id = ? LIMIT 1`, id)
	if err != nil {
		if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return b, domain.NotFoundError{Resource: "tour booking", ID: strconv.FormatInt(id, 10), Err: err}
		}
		return b, err
	}
	return b, nil
}

func (r BookingRepository) GetAirport(ctx context.Context, id uuid.UUID) (models.AirportBooking, error) {
	var b models.AirportBooking
	err := sqlscan.Get(ctx, r.conn(ctx), &b, `SELECT `+airportColumns+` FROM airport_bookings WHERE id = ? LIMIT 1`, id.String())
	if err != nil {
		if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return b, domain.NotFoundError{Resource: "airport booking", ID: id.String(), Err: err}
		}
		return b, err
	}
	return b, nil
}

// Get loads the booking a ref points at from its own table.
func (r BookingRepository) Get(ctx context.Context, ref models.BookingRef) (models.Booking, error) {
	if ref.Kind == domain.KindAirport {
		b, err := r.GetAirport(ctx, ref.AirportID)
		if err != nil {
			return models.Booking{}, err
		}
		return models.AirportBookingOf(b), nil
	}
	b, err := r.GetTour(ctx, ref.TourID)
	if err != nil {
		return models.Booking{}, err
	}
	return models.TourBookingOf(b), nil
}

func (r BookingRepository) ListTours(ctx context.Context) ([]models.TourBooking, error) {
	out := []models.TourBooking{}
	err := sqlscan.Select(ctx, r.conn(ctx), &out, `SELECT `+tourColumns+` FROM tour_bookings ORDER BY booking_date DESC, id DESC`)
	return out, err
}

func (r BookingRepository) ListAirport(ctx context.Context) ([]models.AirportBooking, error) {
	out := []models.AirportBooking{}
	err := sqlscan.Select(ctx, r.conn(ctx), &out, `SELECT `+airportColumns+`
		FROM airport_bookings
		ORDER BY COALESCE(arrival_date, departure_date) DESC, created_at DESC`)
	return out, err
}

// ToursByIDs returns the tour bookings that exist among ids, keyed by id.
func (r BookingRepository) ToursByIDs(ctx context.Context, ids []int64) (map[int64]models.TourBooking, error) {
	out := map[int64]models.TourBooking{}
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	var rows []models.TourBooking
	if err := sqlscan.Select(ctx, r.conn(ctx), &rows,
		`SELECT `+tourColumns+` FROM tour_bookings WHERE id IN (`+placeholders(len(ids))+`)`, args...); err != nil {
		return nil, err
	}
	for _, b := range rows {
		out[b.ID] = b
	}
	return out, nil
}

// AirportByIDs returns the airport bookings that exist among ids, keyed by id.
func (r BookingRepository) AirportByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.AirportBooking, error) {
	out := map[uuid.UUID]models.AirportBooking{}
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id.String())
	}
	var rows []models.AirportBooking
	if err := sqlscan.Select(ctx, r.conn(ctx), &rows,
		`SELECT `+airportColumns+` FROM airport_bookings WHERE id IN (`+placeholders(len(ids))+`)`, args...); err != nil {
		return nil, err
	}
	for _, b := range rows {
		out[b.ID] = b
	}
	return out, nil
}

// UpdateStatus sets the lifecycle status of the booking ref points at.
func (r BookingRepository) UpdateStatus(ctx context.Context, ref models.BookingRef, status domain.BookingStatus) error {
	table, key := "tour_bookings", any(ref.TourID)
	if ref.Kind == domain.KindAirport {
		table, key = "airport_bookings", ref.AirportID.String()
	}
	res, err := r.conn(ctx).ExecContext(ctx, `UPDATE `+table+` SET status = ? WHERE id = ?`, string(status), key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: string(ref.Kind) + " booking", ID: ref.Key()}
	}
	return nil
}
