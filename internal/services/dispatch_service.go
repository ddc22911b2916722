package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/metrics"
	"tourdesk/internal/repositories"
	"tourdesk/internal/utils"

	"github.com/google/uuid"
)

// CalendarRefreshSeconds is the polling interval calendar clients are told to use.
const CalendarRefreshSeconds = 10

// DispatchService builds the read views over assignments: a driver's job list
// and the calendar feed. Bookings are looked up in the table named by the
// kind stored on each assignment.
type DispatchService struct {
	Assignments repositories.AssignmentRepository
	Bookings    repositories.BookingRepository
	RequestID   string
}

// DriverJobs lists a driver's bookings newest date first. Assignments whose
// booking is gone are reported in Orphaned instead of Jobs.
func (s DispatchService) DriverJobs(ctx context.Context, driverID int64) (models.DriverJobs, error) {
	if driverID <= 0 {
		return models.DriverJobs{}, domain.ValidationError{Field: "id", Msg: "must be greater than 0"}
	}
	assignments, err := s.Assignments.ListByDriver(ctx, driverID)
	if err != nil {
		return models.DriverJobs{}, domain.StoreError("gagal memuat job driver", err)
	}
	bookings, err := s.resolve(ctx, assignments)
	if err != nil {
		return models.DriverJobs{}, domain.StoreError("gagal memuat booking", err)
	}

	out := models.DriverJobs{DriverID: driverID, Jobs: []models.Job{}, Orphaned: []models.OrphanedAssignment{}}
	for _, a := range assignments {
		b, ok := bookings[a.BookingID.String()]
		if !ok {
			out.Orphaned = append(out.Orphaned, models.OrphanOf(a))
			continue
		}
		out.Jobs = append(out.Jobs, models.Job{
			ID:               a.BookingID,
			Type:             b.Kind,
			CustomerName:     b.CustomerName(),
			Date:             b.Date(),
			Status:           b.Status(),
			Amount:           b.Amount(),
			AssignmentID:     a.ID,
			AssignmentStatus: a.Status,
		})
	}

	sort.SliceStable(out.Jobs, func(i, j int) bool {
		return dateDesc(out.Jobs[i].Date, out.Jobs[j].Date)
	})
	s.reportOrphans("driver_jobs", out.Orphaned)
	utils.LogEvent(s.RequestID, "dispatch", "driver_jobs",
		fmt.Sprintf("driver_id=%d jobs=%d orphaned=%d", driverID, len(out.Jobs), len(out.Orphaned)))
	return out, nil
}

// CalendarEvents returns one all-day event per assignment, oldest date first,
// limited to [from, to] when either bound is set.
func (s DispatchService) CalendarEvents(ctx context.Context, from, to string) (models.CalendarFeed, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	fields := map[string]string{}
	for name, v := range map[string]string{"from": from, "to": to} {
		if v == "" {
			continue
		}
		if _, err := utils.ParseDate(v); err != nil {
			fields[name] = "must be a date formatted 2006-01-02"
		}
	}
	if len(fields) == 0 && from != "" && to != "" && from > to {
		fields["to"] = "must not be before from"
	}
	if len(fields) > 0 {
		return models.CalendarFeed{}, domain.ValidationError{Fields: fields}
	}

	views, err := s.Assignments.ListWithDrivers(ctx)
	if err != nil {
		return models.CalendarFeed{}, domain.StoreError("gagal memuat kalender", err)
	}
	plain := make([]models.Assignment, 0, len(views))
	for _, v := range views {
		plain = append(plain, v.Assignment)
	}
	bookings, err := s.resolve(ctx, plain)
	if err != nil {
		return models.CalendarFeed{}, domain.StoreError("gagal memuat booking", err)
	}

	feed := models.CalendarFeed{
		Events:                 []models.CalendarEvent{},
		Orphaned:               []models.OrphanedAssignment{},
		RefreshIntervalSeconds: CalendarRefreshSeconds,
	}
	for _, v := range views {
		b, ok := bookings[v.BookingID.String()]
		if !ok {
			feed.Orphaned = append(feed.Orphaned, models.OrphanOf(v.Assignment))
			continue
		}
		date := b.Date()
		if !utils.DateInRange(date, from, to) {
			continue
		}
		feed.Events = append(feed.Events, models.CalendarEvent{
			ID:               "assignment-" + idString(v.ID),
			AssignmentID:     v.ID,
			Title:            eventTitle(b, v.DriverName),
			Date:             date,
			AllDay:           true,
			DriverID:         v.DriverID,
			DriverName:       v.DriverName,
			BookingType:      b.Kind,
			BookingID:        v.BookingID,
			CustomerName:     b.CustomerName(),
			BookingStatus:    b.Status(),
			AssignmentStatus: v.Status,
			Amount:           b.Amount(),
		})
	}

	sort.SliceStable(feed.Events, func(i, j int) bool {
		a, b := feed.Events[i], feed.Events[j]
		if a.Date != b.Date {
			return dateAsc(a.Date, b.Date)
		}
		return a.AssignmentID < b.AssignmentID
	})
	s.reportOrphans("calendar", feed.Orphaned)
	return feed, nil
}

// resolve loads every booking the assignments point at, keyed by ref string.
// One query per table; a missing key in the result means an orphan.
func (s DispatchService) resolve(ctx context.Context, assignments []models.Assignment) (map[string]models.Booking, error) {
	var tourIDs []int64
	var airportIDs []uuid.UUID
	seen := map[string]bool{}
	for _, a := range assignments {
		key := a.BookingID.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		switch a.BookingID.Kind {
		case domain.KindTour:
			tourIDs = append(tourIDs, a.BookingID.TourID)
		case domain.KindAirport:
			airportIDs = append(airportIDs, a.BookingID.AirportID)
		}
	}

	out := make(map[string]models.Booking, len(seen))
	tours, err := s.Bookings.ToursByIDs(ctx, tourIDs)
	if err != nil {
		return nil, err
	}
	for id, t := range tours {
		out[models.TourRef(id).String()] = models.TourBookingOf(t)
	}
	airports, err := s.Bookings.AirportByIDs(ctx, airportIDs)
	if err != nil {
		return nil, err
	}
	for id, a := range airports {
		out[models.AirportRef(id).String()] = models.AirportBookingOf(a)
	}
	return out, nil
}

func (s DispatchService) reportOrphans(view string, orphans []models.OrphanedAssignment) {
	if len(orphans) == 0 {
		return
	}
	metrics.OrphanedAssignments(view, len(orphans))
	for _, o := range orphans {
		utils.LogWarn(s.RequestID, "dispatch", "orphaned_assignment",
			fmt.Sprintf("view=%s assignment_id=%d driver_id=%d booking=%s", view, o.AssignmentID, o.DriverID, o.BookingID))
	}
}

func eventTitle(b models.Booking, driverName string) string {
	kind := "Tour"
	if b.Kind == domain.KindAirport {
		kind = "Airport"
	}
	title := kind + ": " + utils.NormalizeSpace(b.CustomerName())
	if driverName != "" {
		title += " (" + driverName + ")"
	}
	return title
}

// dateDesc orders YYYY-MM-DD strings newest first with empty dates last.
func dateDesc(a, b string) bool {
	if a == "" || b == "" {
		return a != "" && b == ""
	}
	return a > b
}

// dateAsc orders YYYY-MM-DD strings oldest first with empty dates last.
func dateAsc(a, b string) bool {
	if a == "" || b == "" {
		return a != "" && b == ""
	}
	return a < b
}
