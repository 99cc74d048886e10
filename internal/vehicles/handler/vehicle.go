package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fleetbook/internal/vehicles/service"
	apperrors "fleetbook/pkg/errors"
	httputil "fleetbook/pkg/http"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type VehicleHandler struct {
	service service.VehicleService
	log     *logger.Logger
}

func NewVehicleHandler(service service.VehicleService, log *logger.Logger) *VehicleHandler {
	return &VehicleHandler{
		service: service,
		log:     log,
	}
}

// requireAdmin gates catalog mutations. Browsing stays open to everyone.
func (h *VehicleHandler) requireAdmin(w http.ResponseWriter, r *http.Request, operation string) bool {
	identity, err := httputil.ExtractIdentity(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", operation, "operation", "WriteError", "error", writeErr)
		}
		return false
	}
	if !identity.IsAdmin {
		if writeErr := httputil.WriteError(w, apperrors.Forbidden("Admin access required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", operation, "operation", "WriteError", "error", writeErr)
		}
		return false
	}
	return true
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r, "Create") {
		return
	}

	var vehicle model.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &vehicle); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, vehicle); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *VehicleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vehicle, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, vehicle); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// GetAll lists the catalog. With start_date and end_date set it only returns
// vehicles that still have a free plate for that range.
func (h *VehicleHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter, err := parseVehicleFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	vehicles, total, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, vehicles, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "Update") {
		return
	}

	var updates model.VehicleUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	vehicle, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, vehicle); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !h.requireAdmin(w, r, "Delete") {
		return
	}

	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func parseVehicleFilter(r *http.Request) (*model.VehicleFilter, error) {
	query := r.URL.Query()
	filter := &model.VehicleFilter{
		FuelType:         query.Get("fuel_type"),
		TransmissionType: query.Get("transmission_type"),
	}

	if types := query.Get("vehicle_type"); types != "" {
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.VehicleTypes = append(filter.VehicleTypes, t)
			}
		}
	}

	if s := query.Get("passengers"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid passengers parameter: " + s)
		}
		filter.Passengers = v
	}

	if s := query.Get("start_date"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid start_date format, must be RFC3339")
		}
		filter.StartDate = &parsed
	}
	if s := query.Get("end_date"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid end_date format, must be RFC3339")
		}
		filter.EndDate = &parsed
	}

	return filter, nil
}

func (h *VehicleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/vehicles", h.Create)
	router.GET("/api/v1/vehicles", h.GetAll)
	router.GET("/api/v1/vehicles/id/:id", h.GetByID)
	router.PATCH("/api/v1/vehicles/id/:id", h.Update)
	router.DELETE("/api/v1/vehicles/id/:id", h.Delete)
}
