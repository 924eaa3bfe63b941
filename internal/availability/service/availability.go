package service

import (
	"context"
	"errors"
	"time"

	availerrors "homeshow/internal/availability/errors"
	"homeshow/internal/availability/repository"
	"homeshow/internal/availability/validator"
	"homeshow/pkg/calendar"
	"homeshow/pkg/config"
	apperrors "homeshow/pkg/errors"
	"homeshow/pkg/model"
	"homeshow/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type AvailabilityService interface {
	PublishSlots(ctx context.Context, propertyID string, batch *model.SlotBatch) ([]model.TimeSlot, error)
	GetAvailability(ctx context.Context, propertyID string) (model.AvailabilityCalendar, error)
	DeleteSlot(ctx context.Context, id string) error
	SuggestNextWindow(date string) (start, end string, err error)
}

type availabilityService struct {
	repo      repository.SlotRepository
	validator *validator.SlotValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewAvailabilityService(
	repo repository.SlotRepository,
	validator *validator.SlotValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// PublishSlots publishes a batch of windows for one date. Malformed time
// strings are dropped without failing the batch; a lead-time violation on
// any remaining entry rejects the whole batch.
func (s *availabilityService) PublishSlots(ctx context.Context, propertyID string, batch *model.SlotBatch) ([]model.TimeSlot, error) {
	if propertyID == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	batch.Times = sanitizer.NormalizeTimes(batch.Times)
	if err := s.validator.ValidateBatch(batch); err != nil {
		s.cfg.Log.Warn("Slot batch validation failed", "property_id", propertyID, "error", err)
		return nil, apperrors.Validation("Invalid slot batch", map[string]any{"error": err.Error()})
	}

	times := calendar.DropMalformed(batch.Times)
	if len(times) == 0 {
		s.cfg.Log.Warn("Slot batch contained no well-formed times",
			"property_id", propertyID,
			"date", batch.Date,
		)
		return []model.TimeSlot{}, nil
	}

	if bad := calendar.LeadTimeViolations(batch.Date, times, s.now()); len(bad) > 0 {
		return nil, apperrors.Validation(
			"Slots must start at least 10 minutes from now",
			map[string]any{"violations": bad},
		)
	}

	slots := make([]*model.TimeSlot, 0, len(times))
	for _, hm := range times {
		slots = append(slots, &model.TimeSlot{
			ID:         uuid.NewString(),
			PropertyID: propertyID,
			Date:       batch.Date,
			StartTime:  hm,
			EndTime:    calendar.EndTime(hm),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.CreateMany(sessCtx, slots); err != nil {
			return apperrors.Internal("Failed to publish slots", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to publish slots", "property_id", propertyID, "error", err)
		return nil, err
	}

	published := make([]model.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		published = append(published, *slot)
	}

	s.cfg.Log.Info("Slots published successfully",
		"property_id", propertyID,
		"date", batch.Date,
		"count", len(published),
	)
	return published, nil
}

// GetAvailability returns the raw calendar for a property. Expired entries
// are left in place; callers prune against their own clock.
func (s *availabilityService) GetAvailability(ctx context.Context, propertyID string) (model.AvailabilityCalendar, error) {
	if propertyID == "" {
		return model.AvailabilityCalendar{}, apperrors.InvalidInput("Property ID cannot be empty")
	}

	slots, err := s.repo.FindByProperty(ctx, propertyID)
	if err != nil {
		s.cfg.Log.Error("Failed to load availability", "property_id", propertyID, "error", err)
		return model.AvailabilityCalendar{}, apperrors.Internal("Failed to retrieve availability", err)
	}

	return calendar.Build(propertyID, slots), nil
}

// DeleteSlot removes a published window. Deleting a slot that no longer
// exists is a success; retries and races with the sweeper both land here.
func (s *availabilityService) DeleteSlot(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Slot ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, availerrors.ErrNotFound) {
			s.cfg.Log.Debug("Slot already removed", "id", id)
			return nil
		}
		s.cfg.Log.Error("Failed to delete slot", "id", id, "error", err)
		return apperrors.Internal("Failed to delete slot", err)
	}

	s.cfg.Log.Info("Slot deleted successfully", "id", id)
	return nil
}

func (s *availabilityService) SuggestNextWindow(date string) (string, string, error) {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return "", "", apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}

	start, end, ok := calendar.SuggestNextWindow(date, s.now())
	if !ok {
		return "", "", apperrors.NotFound("Publishable window")
	}
	return start, end, nil
}
