package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	intconfig "tourdesk/internal/config"
	intdb "tourdesk/internal/db"
	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"

	"github.com/georgysavva/scany/v2/sqlscan"
)

const assignmentColumns = `a.id, a.driver_id, a.booking_kind, a.booking_id, a.assignment_status,
	COALESCE(a.notes, '') AS notes, a.created_at, a.updated_at`

type assignmentRow struct {
	ID          int64     `db:"id"`
	DriverID    int64     `db:"driver_id"`
	BookingKind string    `db:"booking_kind"`
	BookingID   string    `db:"booking_id"`
	Status      string    `db:"assignment_status"`
	Notes       string    `db:"notes"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	DriverName  string    `db:"driver_name"`
}

func (r assignmentRow) toModel() (models.Assignment, error) {
	ref, err := models.ParseStoredRef(r.BookingKind, r.BookingID)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("assignment %d: %w", r.ID, err)
	}
	return models.Assignment{
		ID:          r.ID,
		DriverID:    r.DriverID,
		BookingType: ref.Kind,
		BookingID:   ref,
		Status:      domain.AssignmentStatus(r.Status),
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// AssignmentRepository reads and writes driver_assignments.
type AssignmentRepository struct {
	DB *sql.DB
}

func (r AssignmentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r AssignmentRepository) conn(ctx context.Context) intdb.Executor {
	return intdb.Conn(ctx, r.db())
}

func (r AssignmentRepository) Create(ctx context.Context, in models.AssignmentInput) (models.Assignment, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO driver_assignments (driver_id, booking_kind, booking_id, assignment_status, notes)
		VALUES (?, ?, ?, ?, ?)
	`, in.DriverID, string(in.Booking.Kind), in.Booking.Key(), string(in.Status), intdb.NullIfEmpty(in.Notes))
	if err != nil {
		return models.Assignment{}, mapAssignmentWriteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Assignment{}, err
	}
	return r.GetByID(ctx, id)
}

func (r AssignmentRepository) GetByID(ctx context.Context, id int64) (models.Assignment, error) {
	var row assignmentRow
	err := sqlscan.Get(ctx, r.conn(ctx), &row, `SELECT `+assignmentColumns+` FROM driver_assignments a WHERE a.id = ? LIMIT 1`, id)
	if err != nil {
		if sqlscan.NotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return models.Assignment{}, domain.NotFoundError{Resource: "assignment", ID: strconv.FormatInt(id, 10), Err: err}
		}
		return models.Assignment{}, err
	}
	return row.toModel()
}

// Update replaces every mutable column. Relies on clientFoundRows so an
// unchanged row still counts as affected.
func (r AssignmentRepository) Update(ctx context.Context, id int64, in models.AssignmentInput) (models.Assignment, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE driver_assignments
		SET driver_id = ?, booking_kind = ?, booking_id = ?, assignment_status = ?, notes = ?
		WHERE id = ?
	`, in.DriverID, string(in.Booking.Kind), in.Booking.Key(), string(in.Status), intdb.NullIfEmpty(in.Notes), id)
	if err != nil {
		return models.Assignment{}, mapAssignmentWriteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Assignment{}, domain.NotFoundError{Resource: "assignment", ID: strconv.FormatInt(id, 10)}
	}
	return r.GetByID(ctx, id)
}

func (r AssignmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AssignmentStatus) (models.Assignment, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `UPDATE driver_assignments SET assignment_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return models.Assignment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Assignment{}, domain.NotFoundError{Resource: "assignment", ID: strconv.FormatInt(id, 10)}
	}
	return r.GetByID(ctx, id)
}

// Delete reports whether a row was removed.
func (r AssignmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM driver_assignments WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// List returns every assignment, newest first. Unbounded.
func (r AssignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	return r.selectAssignments(ctx, `SELECT `+assignmentColumns+`
		FROM driver_assignments a
		ORDER BY a.created_at DESC, a.id DESC`)
}

func (r AssignmentRepository) ListByDriver(ctx context.Context, driverID int64) ([]models.Assignment, error) {
	return r.selectAssignments(ctx, `SELECT `+assignmentColumns+`
		FROM driver_assignments a
		WHERE a.driver_id = ?
		ORDER BY a.created_at DESC, a.id DESC`, driverID)
}

// ListWithDrivers joins the driver name for calendar rendering.
func (r AssignmentRepository) ListWithDrivers(ctx context.Context) ([]models.AssignmentView, error) {
	var rows []assignmentRow
	err := sqlscan.Select(ctx, r.conn(ctx), &rows, `SELECT `+assignmentColumns+`, COALESCE(d.name, '') AS driver_name
		FROM driver_assignments a
		LEFT JOIN drivers d ON d.id = a.driver_id
		ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, err
	}
	out := make([]models.AssignmentView, 0, len(rows))
	for _, row := range rows {
		a, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, models.AssignmentView{Assignment: a, DriverName: row.DriverName})
	}
	return out, nil
}

func (r AssignmentRepository) selectAssignments(ctx context.Context, query string, args ...any) ([]models.Assignment, error) {
	var rows []assignmentRow
	if err := sqlscan.Select(ctx, r.conn(ctx), &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]models.Assignment, 0, len(rows))
	for _, row := range rows {
		a, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func mapAssignmentWriteError(err error) error {
	if isMySQLError(err, mysqlErrNoParent) {
		return domain.ValidationError{Field: "driver_id", Msg: "driver not found", Err: err}
	}
	return err
}
