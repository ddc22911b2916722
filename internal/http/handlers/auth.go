package handlers

import (
	"net/http"

	"tourdesk/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	session, err := h.auth(c).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"operator":   session.Operator,
	})
}

// Me echoes the caller resolved from the bearer token.
func (h *Handler) Me(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "operator_id": rc.OperatorID, "role": rc.Role})
}
