package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"tourdesk/internal/domain"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

// readBody returns the raw request body, rejecting an empty one.
func readBody(c *gin.Context) ([]byte, bool) {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "body kosong", map[string]string{"body": "is required"})
		return nil, false
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "payload tidak valid", map[string]string{"body": err.Error()})
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "body kosong", map[string]string{"body": "is required"})
		return nil, false
	}
	return body, true
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "body kosong", map[string]string{"body": "is required"})
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "payload tidak valid", map[string]string{"body": err.Error()})
		return false
	}
	return true
}

// parseID reads a positive integer id from raw, reporting it under field.
func parseID(raw, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.ValidationError{Field: field, Msg: "is required"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.ValidationError{Field: field, Msg: "must be an integer"}
	}
	if id <= 0 {
		return 0, domain.ValidationError{Field: field, Msg: "must be greater than 0"}
	}
	return id, nil
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
