package handlers

import (
	"net/http"

	"tourdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// ListAssignments returns every assignment, newest first.
func (h *Handler) ListAssignments(c *gin.Context) {
	list, err := h.assignments(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, list)
}

func (h *Handler) CreateAssignment(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	_, in, err := services.ParseAssignmentInput(body, false)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	a, err := h.assignments(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, a)
}

// UpdateAssignment replaces an assignment; the id travels in the body.
func (h *Handler) UpdateAssignment(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	id, in, err := services.ParseAssignmentInput(body, true)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	a, err := h.assignments(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, a)
}

func (h *Handler) UpdateAssignmentStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	status, err := services.ParseAssignmentStatus(body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	a, err := h.assignments(c).UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, a)
}

// DeleteAssignment is idempotent: a missing row still answers 200 with deleted=false.
func (h *Handler) DeleteAssignment(c *gin.Context) {
	id, err := parseID(c.Query("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	deleted, err := h.assignments(c).Delete(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}
