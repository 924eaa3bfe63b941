package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeshow/internal/visits/events"
	visiterrors "homeshow/internal/visits/errors"
	"homeshow/internal/visits/repository"
	"homeshow/internal/visits/validator"
	"homeshow/pkg/config"
	apperrors "homeshow/pkg/errors"
	"homeshow/pkg/model"
	"homeshow/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type VisitService interface {
	Create(ctx context.Context, actorID string, request *model.VisitRequest) error
	GetByID(ctx context.Context, actorID, id string) (*model.VisitRequest, error)
	Reschedule(ctx context.Context, actorID, id string, update *model.VisitReschedule) error
	RecipientReschedule(ctx context.Context, actorID, id string, update *model.VisitReschedule) error
	SetStatus(ctx context.Context, actorID, id string, change *model.VisitStatusChange) error
	SetOutcome(ctx context.Context, actorID, id string, outcome *model.VisitOutcome) error
	Cancel(ctx context.Context, actorID, id string) error
	Mine(ctx context.Context, actorID string, status model.VisitStatus) ([]*model.VisitRequest, error)
	AssignedToMe(ctx context.Context, actorID string, status model.VisitStatus) ([]*model.VisitRequest, error)
}

type visitService struct {
	repo      repository.VisitRepository
	validator *validator.VisitValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewVisitService(
	repo repository.VisitRepository,
	validator *validator.VisitValidator,
	publisher events.Publisher,
	cfg *config.Config,
) VisitService {
	return &visitService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create opens a new visit request. The caller is always the requester;
// the status is forced to pending regardless of the payload.
func (s *visitService) Create(ctx context.Context, actorID string, request *model.VisitRequest) error {
	if actorID == "" {
		return apperrors.Unauthorized("Actor identity is required")
	}

	request.ID = ""
	request.RequesterID = actorID
	request.Status = model.StatusPending
	request.Note = sanitizer.NormalizeNote(request.Note)

	if err := s.validator.Validate(request); err != nil {
		s.cfg.Log.Warn("Visit request validation failed", "requester_id", actorID, "error", err)
		return apperrors.Validation("Invalid visit request", map[string]any{"error": err.Error()})
	}

	if err := s.requireFuture(request.ScheduledAt); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, request); err != nil {
		s.cfg.Log.Error("Failed to create visit request", "requester_id", actorID, "error", err)
		return apperrors.Internal("Failed to create visit request", err)
	}

	s.publisher.Publish(ctx, events.TypeCreated, request)
	s.cfg.Log.Info("Visit request created successfully",
		"id", request.ID,
		"property_id", request.PropertyID,
		"requester_id", request.RequesterID,
		"recipient_id", request.RecipientID,
	)
	return nil
}

func (s *visitService) GetByID(ctx context.Context, actorID, id string) (*model.VisitRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actorID && request.RecipientID != actorID {
		return nil, apperrors.Forbidden("Only the requester or recipient can view this request")
	}
	return request, nil
}

// Reschedule moves a pending request to a new future instant. Only the
// requester may reschedule, and only while the request is still pending.
func (s *visitService) Reschedule(ctx context.Context, actorID, id string, update *model.VisitReschedule) error {
	if err := s.validator.ValidateReschedule(update); err != nil {
		return apperrors.Validation("Invalid reschedule payload", map[string]any{"error": err.Error()})
	}
	if err := s.requireFuture(update.ScheduledAt); err != nil {
		return err
	}

	var request *model.VisitRequest
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		request, err = s.load(sessCtx, id)
		if err != nil {
			return err
		}
		if request.RequesterID != actorID {
			return apperrors.Forbidden("Only the requester can reschedule this request")
		}
		if request.Status != model.StatusPending {
			return apperrors.Conflict(fmt.Sprintf("Cannot reschedule a request in status %q", request.Status))
		}

		request.ScheduledAt = update.ScheduledAt
		if update.Note != nil {
			request.Note = sanitizer.NormalizeNote(*update.Note)
		}

		if _, err := s.repo.Update(sessCtx, id, request); err != nil {
			return apperrors.Internal("Failed to reschedule visit request", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reschedule visit request", "id", id, "error", err)
		return err
	}

	s.publisher.Publish(ctx, events.TypeRescheduled, request)
	s.cfg.Log.Info("Visit request rescheduled successfully", "id", id, "scheduled_at", update.ScheduledAt)
	return nil
}

// RecipientReschedule lets the recipient move an approved visit without
// knocking it back to pending.
func (s *visitService) RecipientReschedule(ctx context.Context, actorID, id string, update *model.VisitReschedule) error {
	if err := s.validator.ValidateReschedule(update); err != nil {
		return apperrors.Validation("Invalid reschedule payload", map[string]any{"error": err.Error()})
	}
	if err := s.requireFuture(update.ScheduledAt); err != nil {
		return err
	}

	var request *model.VisitRequest
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		request, err = s.load(sessCtx, id)
		if err != nil {
			return err
		}
		if request.RecipientID != actorID {
			return apperrors.Forbidden("Only the recipient can reschedule this request")
		}
		if request.Status != model.StatusApproved {
			return apperrors.Conflict(fmt.Sprintf("Recipient can only reschedule approved requests, not %q", request.Status))
		}

		request.ScheduledAt = update.ScheduledAt
		if update.Note != nil {
			request.Note = sanitizer.NormalizeNote(*update.Note)
		}

		if _, err := s.repo.Update(sessCtx, id, request); err != nil {
			return apperrors.Internal("Failed to reschedule visit request", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reschedule visit request", "id", id, "error", err)
		return err
	}

	s.publisher.Publish(ctx, events.TypeRescheduled, request)
	s.cfg.Log.Info("Visit request rescheduled by recipient", "id", id, "scheduled_at", update.ScheduledAt)
	return nil
}

// SetStatus moves a pending request to approved or rejected.
func (s *visitService) SetStatus(ctx context.Context, actorID, id string, change *model.VisitStatusChange) error {
	if err := s.validator.ValidateStatusChange(change); err != nil {
		return apperrors.Validation("Invalid status change", map[string]any{"error": err.Error()})
	}

	request, err := s.transition(ctx, actorID, id, change.Status)
	if err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.TypeStatusChanged, request)
	s.cfg.Log.Info("Visit request status changed", "id", id, "status", change.Status)
	return nil
}

// SetOutcome records whether an approved visit actually happened.
func (s *visitService) SetOutcome(ctx context.Context, actorID, id string, outcome *model.VisitOutcome) error {
	if err := s.validator.ValidateOutcome(outcome); err != nil {
		return apperrors.Validation("Invalid outcome", map[string]any{"error": err.Error()})
	}

	request, err := s.transition(ctx, actorID, id, outcome.Outcome)
	if err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.TypeOutcomeRecorded, request)
	s.cfg.Log.Info("Visit outcome recorded", "id", id, "outcome", outcome.Outcome)
	return nil
}

// transition applies a recipient-driven state change under a transaction so
// concurrent transitions on the same request cannot both win.
func (s *visitService) transition(ctx context.Context, actorID, id string, to model.VisitStatus) (*model.VisitRequest, error) {
	var request *model.VisitRequest
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		request, err = s.load(sessCtx, id)
		if err != nil {
			return err
		}
		if request.RecipientID != actorID {
			return apperrors.Forbidden("Only the recipient can change the status of this request")
		}
		if !model.CanTransition(request.Status, to) {
			return apperrors.Conflict(fmt.Sprintf("Cannot move request from %q to %q", request.Status, to))
		}

		request.Status = to
		if _, err := s.repo.Update(sessCtx, id, request); err != nil {
			return apperrors.Internal("Failed to update visit request", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to transition visit request", "id", id, "to", to, "error", err)
		return nil, err
	}
	return request, nil
}

// Cancel removes a request entirely. Only the requester may cancel, and
// only while the request has not reached a terminal state.
func (s *visitService) Cancel(ctx context.Context, actorID, id string) error {
	var request *model.VisitRequest
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		request, err = s.load(sessCtx, id)
		if err != nil {
			return err
		}
		if request.RequesterID != actorID {
			return apperrors.Forbidden("Only the requester can cancel this request")
		}
		if request.Status.IsTerminal() {
			return apperrors.Conflict(fmt.Sprintf("Cannot cancel a request in terminal status %q", request.Status))
		}

		if err := s.repo.Delete(sessCtx, id); err != nil {
			return apperrors.Internal("Failed to cancel visit request", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel visit request", "id", id, "error", err)
		return err
	}

	s.publisher.Publish(ctx, events.TypeCancelled, request)
	s.cfg.Log.Info("Visit request cancelled", "id", id)
	return nil
}

func (s *visitService) Mine(ctx context.Context, actorID string, status model.VisitStatus) ([]*model.VisitRequest, error) {
	if err := validateFilter(actorID, status); err != nil {
		return nil, err
	}

	requests, err := s.repo.FindByRequester(ctx, actorID, status)
	if err != nil {
		s.cfg.Log.Error("Failed to list visit requests", "requester_id", actorID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve visit requests", err)
	}
	return requests, nil
}

func (s *visitService) AssignedToMe(ctx context.Context, actorID string, status model.VisitStatus) ([]*model.VisitRequest, error) {
	if err := validateFilter(actorID, status); err != nil {
		return nil, err
	}

	requests, err := s.repo.FindByRecipient(ctx, actorID, status)
	if err != nil {
		s.cfg.Log.Error("Failed to list assigned visit requests", "recipient_id", actorID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve visit requests", err)
	}
	return requests, nil
}

// --- Helpers ---

func (s *visitService) load(ctx context.Context, id string) (*model.VisitRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Visit request ID cannot be empty")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, visiterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Visit request", id)
		}
		if errors.Is(err, visiterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid visit request ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve visit request", err)
	}
	return request, nil
}

func (s *visitService) requireFuture(at time.Time) error {
	if !at.After(s.now()) {
		return apperrors.Validation("Scheduled time must be in the future", map[string]any{
			"scheduled_at": at.Format(time.RFC3339),
		})
	}
	return nil
}

func validateFilter(actorID string, status model.VisitStatus) error {
	if actorID == "" {
		return apperrors.Unauthorized("Actor identity is required")
	}
	if status != "" && status != model.StatusFilterAll && !status.IsValid() {
		return apperrors.InvalidInput(fmt.Sprintf("Unknown status filter %q", status))
	}
	return nil
}
