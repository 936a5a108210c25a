// internal/handlers/report/handler.go
package report

import (
	"net/http"

	"flota-service/internal/middleware"
	"flota-service/internal/pkg/response"
	reportsvc "flota-service/internal/service/report"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *reportsvc.Service
}

func NewReportHandler(reportService *reportsvc.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard handles GET /reportes/dashboard (admin)
func (h *ReportHandler) Dashboard(c *gin.Context) {
	r, err := h.reportService.Build(c.Request.Context(), *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "report generated", r)
}
