package handlers

import (
	"context"
	"database/sql"

	"tourdesk/internal/cache"
	intconfig "tourdesk/internal/config"
	intdb "tourdesk/internal/db"
	"tourdesk/internal/http/middleware"
	"tourdesk/internal/realtime"
	"tourdesk/internal/repositories"
	"tourdesk/internal/services"
	"tourdesk/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler holds the shared dependencies. Services are built per request so
// each one carries the request id.
type Handler struct {
	DB       *sql.DB
	Auth     services.AuthService
	Calendar *cache.CalendarCache
	Hub      *realtime.Hub
}

func (h *Handler) assignments(c *gin.Context) services.AssignmentService {
	return services.AssignmentService{
		Assignments: repositories.AssignmentRepository{DB: h.DB},
		Bookings:    repositories.BookingRepository{DB: h.DB},
		Outbox:      repositories.OutboxRepository{DB: h.DB},
		Tx:          intdb.TxManager{DB: h.db()},
		Hooks:       []services.ChangeHook{h.onAssignmentChange},
		RequestID:   middleware.GetRequestID(c),
	}
}

func (h *Handler) dispatch(c *gin.Context) services.DispatchService {
	return services.DispatchService{
		Assignments: repositories.AssignmentRepository{DB: h.DB},
		Bookings:    repositories.BookingRepository{DB: h.DB},
		RequestID:   middleware.GetRequestID(c),
	}
}

func (h *Handler) drivers(c *gin.Context) services.DriverService {
	return services.DriverService{
		Drivers:   repositories.DriverRepository{DB: h.DB},
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) bookings(c *gin.Context) services.BookingService {
	return services.BookingService{
		Bookings:  repositories.BookingRepository{DB: h.DB},
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) auth(c *gin.Context) services.AuthService {
	svc := h.Auth
	if svc.Operators.DB == nil {
		svc.Operators = repositories.OperatorRepository{DB: h.DB}
	}
	svc.RequestID = middleware.GetRequestID(c)
	return svc
}

func (h *Handler) db() *sql.DB {
	if h.DB != nil {
		return h.DB
	}
	return intconfig.DB
}

// onAssignmentChange invalidates cached calendar feeds and pushes the change
// to connected calendars. Runs after commit.
func (h *Handler) onAssignmentChange(ctx context.Context, change services.AssignmentChange) {
	h.Calendar.Bump(ctx)
	if h.Hub == nil {
		return
	}
	if err := h.Hub.BroadcastJSON(gin.H{"type": "assignments.changed", "change": change}); err != nil {
		utils.LogWarn(change.RequestID, "realtime", "broadcast", err.Error())
	}
}
