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
)

const driverColumns = `id, name,
	COALESCE(email, '') AS email,
	COALESCE(phone, '') AS phone,
	COALESCE(license_number, '') AS license_number,
	COALESCE(vehicle_type, '') AS vehicle_type,
	COALESCE(vehicle_plate, '') AS vehicle_plate,
	status, created_at, updated_at`

type DriverRepository struct {
	DB *sql.DB
}

func (r DriverRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r DriverRepository) conn(ctx context.Context) intdb.Executor {
	return intdb.Conn(ctx, r.db())
}

func (r DriverRepository) List(ctx context.Context) ([]models.Driver, error) {
	out := []models.Driver{}
	err := sqlscan.Select(ctx, r.conn(ctx), &out, `SELECT `+driverColumns+` FROM drivers ORDER BY name ASC, id ASC`)
	return out, err
}

func (r DriverRepository) Get(ctx context.Context, id int64) (models.Driver, error) {
	var d models.Driver
	err := sqlscan.Get(ctx, r.conn(ctx), &d, `SELECT `+driverColumns+` FROM drivers WHERE id = ? LIMIT 1`, id)
	if err != nil {
		if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return d, domain.NotFoundError{Resource: "driver", ID: strconv.FormatInt(id, 10), Err: err}
		}
		return d, err
	}
	return d, nil
}

func (r DriverRepository) Create(ctx context.Context, d models.Driver) (models.Driver, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO drivers (name, email, phone, license_number, vehicle_type, vehicle_plate, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.Name, intdb.NullIfEmpty(d.Email), intdb.NullIfEmpty(d.Phone), intdb.NullIfEmpty(d.LicenseNumber),
		intdb.NullIfEmpty(d.VehicleType), intdb.NullIfEmpty(d.VehiclePlate), string(d.Status))
	if err != nil {
		return models.Driver{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Driver{}, err
	}
	return r.Get(ctx, id)
}

func (r DriverRepository) Update(ctx context.Context, id int64, d models.Driver) (models.Driver, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE drivers
		SET name = ?, email = ?, phone = ?, license_number = ?, vehicle_type = ?, vehicle_plate = ?, status = ?
		WHERE id = ?
	`, d.Name, intdb.NullIfEmpty(d.Email), intdb.NullIfEmpty(d.Phone), intdb.NullIfEmpty(d.LicenseNumber),
		intdb.NullIfEmpty(d.VehicleType), intdb.NullIfEmpty(d.VehiclePlate), string(d.Status), id)
	if err != nil {
		return models.Driver{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Driver{}, domain.NotFoundError{Resource: "driver", ID: strconv.FormatInt(id, 10)}
	}
	return r.Get(ctx, id)
}

// Delete removes the driver; its assignments go with it through the FK cascade.
func (r DriverRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM drivers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "driver", ID: strconv.FormatInt(id, 10)}
	}
	return nil
}
