// internal/handlers/vehicle/handler.go
package vehicle

import (
	"net/http"
	"strconv"

	"flota-service/internal/domain/vehicle"
	"flota-service/internal/middleware"
	"flota-service/internal/pkg/response"
	historysvc "flota-service/internal/service/history"
	vehiclesvc "flota-service/internal/service/vehicle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VehicleHandler struct {
	vehicleService *vehiclesvc.Service
	logger         *zap.Logger
}

func NewVehicleHandler(vehicleService *vehiclesvc.Service, logger *zap.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		logger:         logger,
	}
}

// List handles GET /vehiculos
func (h *VehicleHandler) List(c *gin.Context) {
	var filters vehicle.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	page, err := h.vehicleService.List(c.Request.Context(), &filters, *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "vehicles retrieved", page)
}

// Get handles GET /vehiculos/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.vehicleService.GetByID(c.Request.Context(), id, *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle retrieved", doc)
}

// Create handles POST /vehiculos
func (h *VehicleHandler) Create(c *gin.Context) {
	var req vehicle.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	doc, err := h.vehicleService.Create(c.Request.Context(), &req, *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "vehicle created", doc)
}

// Update handles PUT /vehiculos/:id
func (h *VehicleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req vehicle.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	doc, err := h.vehicleService.Update(c.Request.Context(), id, &req, *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle updated", doc)
}

// Delete handles DELETE /vehiculos/:id
func (h *VehicleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.vehicleService.Delete(c.Request.Context(), id, *middleware.MustGetPrincipal(c)); err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle deleted", nil)
}

// Dashboard handles GET /vehiculos/dashboard
func (h *VehicleHandler) Dashboard(c *gin.Context) {
	counts, err := h.vehicleService.CountByUnit(c.Request.Context(), *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "fleet counts retrieved", counts)
}

// --- history sub-routes ---

type appendHistoryRequest struct {
	Valor string `json:"valor" binding:"required"`
}

// ListHistory handles GET /vehiculos/:id/historial/:kind
func (h *VehicleHandler) ListHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	kind, err := historysvc.ParseKind(c.Param("kind"))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	entries, err := h.vehicleService.ListHistory(c.Request.Context(), id, kind, *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "history retrieved", entries)
}

// AppendHistory handles POST /vehiculos/:id/historial/:kind
func (h *VehicleHandler) AppendHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	kind, err := historysvc.ParseKind(c.Param("kind"))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	var req appendHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	entry, err := h.vehicleService.AppendHistory(c.Request.Context(), id, kind, req.Valor, *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "entry appended", entry)
}

// DeleteLastHistory handles DELETE /vehiculos/:id/historial/:kind/ultimo
func (h *VehicleHandler) DeleteLastHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	kind, err := historysvc.ParseKind(c.Param("kind"))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	entry, err := h.vehicleService.DeleteLastHistory(c.Request.Context(), id, kind, *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "entry removed", entry)
}

// DeleteOneHistory handles DELETE /vehiculos/:id/historial/:kind/:entryId
func (h *VehicleHandler) DeleteOneHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entryID, ok := pathID(c, "entryId")
	if !ok {
		return
	}
	kind, err := historysvc.ParseKind(c.Param("kind"))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	entry, err := h.vehicleService.DeleteOneHistory(c.Request.Context(), id, kind, entryID, *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "entry removed", entry)
}

// DeleteAllHistory handles DELETE /vehiculos/:id/historial/:kind
func (h *VehicleHandler) DeleteAllHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	kind, err := historysvc.ParseKind(c.Param("kind"))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	removed, err := h.vehicleService.DeleteAllHistory(c.Request.Context(), id, kind, *middleware.MustGetPrincipal(c))
	if err != nil {
		response.FromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "collection cleared", gin.H{"removed": removed})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid id", err)
		return 0, false
	}
	return id, true
}
