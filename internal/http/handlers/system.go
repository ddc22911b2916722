package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	intconfig "tourdesk/internal/config"
	intdb "tourdesk/internal/db"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok", "message": "tourdesk berjalan"})
}

// DBCheck pings the store and reports any dispatch table that is missing.
func (h *Handler) DBCheck(c *gin.Context) {
	db := h.db()
	if db == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database belum terhubung", nil)
		return
	}
	if h.DB == nil {
		if err := intconfig.PingDB(c.Request.Context()); err != nil {
			respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database tidak merespons", nil)
			return
		}
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if missing := intdb.MissingTables(ctx, db, intdb.Tables...); len(missing) > 0 {
		respondError(c, http.StatusInternalServerError, "schema_incomplete", "tabel belum lengkap", gin.H{"missing_tables": missing})
		return
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM drivers").Scan(&count); err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "gagal query ke database", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "koneksi database OK", "drivers_in_db": count})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "unavailable", "router belum siap", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "routes": out})
}
