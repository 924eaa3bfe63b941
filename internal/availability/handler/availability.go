package handler

import (
	"encoding/json"
	"net/http"

	"homeshow/internal/availability/service"
	httputil "homeshow/pkg/http"
	"homeshow/pkg/logger"
	"homeshow/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) PublishSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("id")

	var batch model.SlotBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "PublishSlots", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	slots, err := h.service.PublishSlots(r.Context(), propertyID, &batch)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "PublishSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, slots); err != nil {
		h.log.Error("failed to write created response", "handler", "PublishSlots", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("id")

	cal, err := h.service.GetAvailability(r.Context(), propertyID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, cal); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailability", "operation", "WriteSuccess", "error", err)
	}
}

type nextWindowResponse struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (h *AvailabilityHandler) NextWindow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	if date == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "The 'date' query parameter is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "NextWindow", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	start, end, err := h.service.SuggestNextWindow(date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "NextWindow", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, nextWindowResponse{
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "NextWindow", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) DeleteSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.DeleteSlot(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteSlot", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/properties/:id/slots", h.PublishSlots)
	router.GET("/api/v1/properties/:id/availability", h.GetAvailability)
	router.GET("/api/v1/next-window", h.NextWindow)
	router.DELETE("/api/v1/slots/:id", h.DeleteSlot)
}
