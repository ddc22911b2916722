package handlers

import (
	"net/http"

	"tourdesk/internal/http/middleware"
	"tourdesk/internal/repositories"
	"tourdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// DriverDispatchSheet returns the driver's surat jalan (inline PDF).
func (h *Handler) DriverDispatchSheet(c *gin.Context) {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.DocsService{
		Drivers:   repositories.DriverRepository{DB: h.DB},
		Dispatch:  h.dispatch(c),
		RequestID: middleware.GetRequestID(c),
	}
	pdfBytes, filename, err := svc.GenerateDispatchSheet(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
