package handler

import (
	"net/http"
	"strconv"

	"fleetbook/internal/reports/service"
	apperrors "fleetbook/pkg/errors"
	httputil "fleetbook/pkg/http"
	"fleetbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// ReportHandler exposes the admin reporting endpoints.
type ReportHandler struct {
	service service.ReportService
	log     *logger.Logger
}

func NewReportHandler(service service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

func (h *ReportHandler) requireAdmin(w http.ResponseWriter, r *http.Request, operation string) bool {
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

func (h *ReportHandler) MonthlyIncome(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r, "MonthlyIncome") {
		return
	}

	year := 0
	if s := r.URL.Query().Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid year parameter: "+s)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "MonthlyIncome", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		year = v
	}

	results, err := h.service.MonthlyIncome(r.Context(), year)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MonthlyIncome", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, results); err != nil {
		h.log.Error("failed to write success response", "handler", "MonthlyIncome", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReportHandler) TopRenters(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !h.requireAdmin(w, r, "TopRenters") {
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid limit parameter: "+s)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "TopRenters", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		limit = v
	}

	results, err := h.service.TopRenters(r.Context(), limit)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "TopRenters", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, results); err != nil {
		h.log.Error("failed to write success response", "handler", "TopRenters", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReportHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/reports/income/monthly", h.MonthlyIncome)
	router.GET("/api/v1/reports/renters/top", h.TopRenters)
}
