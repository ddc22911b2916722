package api

import (
	"log"
	stdhttp "net/http"

	intconfig "tourdesk/internal/config"
	"tourdesk/internal/domain"
	h "tourdesk/internal/http/handlers"
	"tourdesk/internal/http/middleware"
	"tourdesk/internal/metrics"
	"tourdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// NewRouter wires every route. idem may be nil, which disables the
// Idempotency-Key guard.
func NewRouter(env intconfig.Env, hd *h.Handler, idem redis.Cmdable) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins), metrics.Middleware())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"error":   "route tidak ditemukan",
			"code":    "not_found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/auth/login", hd.Login)
		api.GET("/calendar/ws", hd.CalendarSocket)

		secured := api.Group("")
		secured.Use(
			middleware.RequireAuth(hd.Auth.Verify),
			middleware.RequireRoles(services.RoleAdmin, services.RoleOperator),
			middleware.Idempotency(idem),
		)

		secured.GET("/auth/me", hd.Me)
		secured.GET("/db-check", hd.DBCheck)
		secured.GET("/routes", h.Routes)

		// Driver assignments
		assignments := secured.Group("/driver-assignments")
		assignments.GET("", hd.ListAssignments)
		assignments.POST("", hd.CreateAssignment)
		assignments.PUT("", hd.UpdateAssignment)
		assignments.DELETE("", hd.DeleteAssignment)
		assignments.PATCH("/:id/status", hd.UpdateAssignmentStatus)

		// Drivers
		drivers := secured.Group("/drivers")
		drivers.GET("", hd.ListDrivers)
		drivers.POST("", hd.CreateDriver)
		drivers.GET("/:id", hd.GetDriver)
		drivers.PUT("/:id", hd.UpdateDriver)
		drivers.DELETE("/:id", hd.DeleteDriver)
		drivers.GET("/:id/jobs", hd.DriverJobs)
		drivers.GET("/:id/jobs/sheet", hd.DriverDispatchSheet)

		// Calendar
		secured.GET("/calendar/events", hd.CalendarEvents)

		// Bookings
		bookings := secured.Group("/bookings")
		tours := bookings.Group("/tours")
		tours.GET("", hd.ListTourBookings)
		tours.POST("", hd.CreateTourBooking)
		mountBooking(tours, hd, domain.KindTour)
		airport := bookings.Group("/airport")
		airport.GET("", hd.ListAirportBookings)
		airport.POST("", hd.CreateAirportBooking)
		mountBooking(airport, hd, domain.KindAirport)
	}

	return r
}

func mountBooking(g *gin.RouterGroup, hd *h.Handler, kind domain.BookingKind) {
	g.GET("/:id", hd.GetBooking(kind))
	g.PUT("/:id/status", hd.UpdateBookingStatus(kind))
	g.POST("/:id/confirm", hd.ConfirmBooking(kind))
}
