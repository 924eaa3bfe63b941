package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"homeshow/internal/visits/service"
	"homeshow/pkg/client"
	apperrors "homeshow/pkg/errors"
	httputil "homeshow/pkg/http"
	"homeshow/pkg/logger"
	"homeshow/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type VisitHandler struct {
	service service.VisitService
	log     *logger.Logger
}

func NewVisitHandler(service service.VisitService, log *logger.Logger) *VisitHandler {
	return &VisitHandler{
		service: service,
		log:     log,
	}
}

// actor extracts the acting user from the request. The platform gateway
// authenticates upstream and forwards the identity in a header.
func (h *VisitHandler) actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID := r.Header.Get(client.ActorHeader)
	if actorID == "" {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Missing actor identity")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "actor", "operation", "WriteError", "error", writeErr)
		}
		return "", false
	}
	return actorID, true
}

func (h *VisitHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	var request model.VisitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), actorID, &request); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, request); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *VisitHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	request, err := h.service.GetByID(r.Context(), actorID, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, request); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VisitHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.reschedule(w, r, ps, h.service.Reschedule, "Reschedule")
}

func (h *VisitHandler) RecipientReschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.reschedule(w, r, ps, h.service.RecipientReschedule, "RecipientReschedule")
}

type rescheduleFunc func(ctx context.Context, actorID, id string, update *model.VisitReschedule) error

func (h *VisitHandler) reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params, fn rescheduleFunc, name string) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	var update model.VisitReschedule
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", name, "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := fn(r.Context(), actorID, ps.ByName("id"), &update); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *VisitHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	var change model.VisitStatusChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.SetStatus(r.Context(), actorID, ps.ByName("id"), &change); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *VisitHandler) SetOutcome(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	var outcome model.VisitOutcome
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetOutcome", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.SetOutcome(r.Context(), actorID, ps.ByName("id"), &outcome); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetOutcome", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *VisitHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), actorID, ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *VisitHandler) Mine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, h.service.Mine, "Mine")
}

func (h *VisitHandler) AssignedToMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, h.service.AssignedToMe, "AssignedToMe")
}

type listFunc func(ctx context.Context, actorID string, status model.VisitStatus) ([]*model.VisitRequest, error)

func (h *VisitHandler) list(w http.ResponseWriter, r *http.Request, fn listFunc, name string) {
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}

	status := model.VisitStatus(r.URL.Query().Get("status"))

	requests, err := fn(r.Context(), actorID, status)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if requests == nil {
		requests = []*model.VisitRequest{}
	}
	if err := httputil.WriteSuccess(w, requests); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *VisitHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/visit-requests", h.Create)
	router.GET("/api/v1/visit-requests/mine", h.Mine)
	router.GET("/api/v1/visit-requests/assigned", h.AssignedToMe)
	router.GET("/api/v1/visit-requests/id/:id", h.GetByID)
	router.PUT("/api/v1/visit-requests/id/:id/reschedule", h.Reschedule)
	router.PUT("/api/v1/visit-requests/id/:id/recipient-reschedule", h.RecipientReschedule)
	router.PUT("/api/v1/visit-requests/id/:id/status", h.SetStatus)
	router.PUT("/api/v1/visit-requests/id/:id/outcome", h.SetOutcome)
	router.DELETE("/api/v1/visit-requests/id/:id", h.Cancel)
}
