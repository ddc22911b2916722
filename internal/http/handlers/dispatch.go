package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"tourdesk/internal/domain"

	"github.com/gin-gonic/gin"
)

// DriverJobs lists the bookings a driver is assigned to, plus any assignment
// whose booking no longer exists.
func (h *Handler) DriverJobs(c *gin.Context) {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	jobs, err := h.dispatch(c).DriverJobs(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"driver_id":            jobs.DriverID,
		"jobs":                 jobs.Jobs,
		"orphaned_assignments": jobs.Orphaned,
	})
}

// CalendarEvents serves the feed with an ETag so polling clients get 304
// while nothing changed. Rendered bodies are cached in redis when configured.
func (h *Handler) CalendarEvents(c *gin.Context) {
	ctx := c.Request.Context()
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))

	body, cacheKey, hit := h.Calendar.Get(ctx, from, to)
	if !hit {
		feed, err := h.dispatch(c).CalendarEvents(ctx, from, to)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		body, err = json.Marshal(gin.H{"success": true, "data": feed})
		if err != nil {
			RespondDomainError(c, domain.InternalError{Msg: "gagal menyusun kalender", Err: err})
			return
		}
		h.Calendar.Set(ctx, cacheKey, body)
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// CalendarSocket upgrades to the live calendar channel. The hub does its own
// token check, so this route sits outside RequireAuth.
func (h *Handler) CalendarSocket(c *gin.Context) {
	if h.Hub == nil {
		respondError(c, http.StatusServiceUnavailable, "unavailable", "realtime tidak aktif", nil)
		return
	}
	h.Hub.ServeWS(c.Writer, c.Request)
}

func etagMatches(header, etag string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "W/"))
		if part == etag || part == "*" {
			return true
		}
	}
	return false
}
