package handlers

import (
	"net/http"

	"tourdesk/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListDrivers(c *gin.Context) {
	list, err := h.drivers(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (h *Handler) GetDriver(c *gin.Context) {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	d, err := h.drivers(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, d)
}

func (h *Handler) CreateDriver(c *gin.Context) {
	var req models.Driver
	if !BindJSONOrError(c, &req) {
		return
	}
	d, err := h.drivers(c).Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, d)
}

func (h *Handler) UpdateDriver(c *gin.Context) {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var req models.Driver
	if !BindJSONOrError(c, &req) {
		return
	}
	d, err := h.drivers(c).Update(c.Request.Context(), id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.Calendar.Bump(c.Request.Context())
	respondOK(c, http.StatusOK, d)
}

// DeleteDriver removes the driver; the schema cascades to its assignments.
func (h *Handler) DeleteDriver(c *gin.Context) {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := h.drivers(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	h.Calendar.Bump(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": true})
}
