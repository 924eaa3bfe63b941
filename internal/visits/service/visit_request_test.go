package service

import (
	"context"
	"testing"
	"time"

	"homeshow/internal/visits/events"
	visiterrors "homeshow/internal/visits/errors"
	"homeshow/internal/visits/validator"
	"homeshow/pkg/config"
	mongotx "homeshow/pkg/db/mongo"
	apperrors "homeshow/pkg/errors"
	"homeshow/pkg/logger"
	"homeshow/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockVisitRepository struct {
	createFunc          func(ctx context.Context, request *model.VisitRequest) error
	findByIDFunc        func(ctx context.Context, id string) (*model.VisitRequest, error)
	updateFunc          func(ctx context.Context, id string, request *model.VisitRequest) (*mongo.UpdateResult, error)
	deleteFunc          func(ctx context.Context, id string) error
	findByRequesterFunc func(ctx context.Context, requesterID string, status model.VisitStatus) ([]*model.VisitRequest, error)
	findByRecipientFunc func(ctx context.Context, recipientID string, status model.VisitStatus) ([]*model.VisitRequest, error)
}

func (m *mockVisitRepository) Create(ctx context.Context, request *model.VisitRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, request)
	}
	request.ID = "64b0c8a9e4b0f1a2d3c4e5f6"
	return nil
}

func (m *mockVisitRepository) FindByID(ctx context.Context, id string) (*model.VisitRequest, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, visiterrors.ErrNotFound
}

func (m *mockVisitRepository) Update(ctx context.Context, id string, request *model.VisitRequest) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, request)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockVisitRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockVisitRepository) FindByRequester(ctx context.Context, requesterID string, status model.VisitStatus) ([]*model.VisitRequest, error) {
	if m.findByRequesterFunc != nil {
		return m.findByRequesterFunc(ctx, requesterID, status)
	}
	return []*model.VisitRequest{}, nil
}

func (m *mockVisitRepository) FindByRecipient(ctx context.Context, recipientID string, status model.VisitStatus) ([]*model.VisitRequest, error) {
	if m.findByRecipientFunc != nil {
		return m.findByRecipientFunc(ctx, recipientID, status)
	}
	return []*model.VisitRequest{}, nil
}

func (m *mockVisitRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.SessionContext(nil))
}

func testVisitService(repo *mockVisitRepository, now time.Time) *visitService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "test",
	})
	cfg := &config.Config{Log: log}
	return &visitService{
		repo:      repo,
		validator: validator.NewVisitValidator(log),
		publisher: events.NewNoopPublisher(),
		cfg:       cfg,
		now:       func() time.Time { return now },
	}
}

func pendingRequest() *model.VisitRequest {
	return &model.VisitRequest{
		ID:          "64b0c8a9e4b0f1a2d3c4e5f6",
		PropertyID:  "prop-1",
		RequesterID: "buyer-1",
		RecipientID: "agent-1",
		ScheduledAt: time.Date(2026, 9, 5, 14, 0, 0, 0, time.UTC),
		Status:      model.StatusPending,
	}
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

// --- Create ---

func TestCreate_ForcesPendingAndRequester(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{}
	svc := testVisitService(repo, now)

	request := &model.VisitRequest{
		PropertyID:  "prop-1",
		RequesterID: "spoofed",
		RecipientID: "agent-1",
		ScheduledAt: now.Add(24 * time.Hour),
		Status:      model.StatusApproved,
	}

	if err := svc.Create(context.Background(), "buyer-1", request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.RequesterID != "buyer-1" {
		t.Errorf("expected requester forced to actor, got %s", request.RequesterID)
	}
	if request.Status != model.StatusPending {
		t.Errorf("expected status forced to pending, got %s", request.Status)
	}
	if request.ID == "" {
		t.Error("expected assigned ID")
	}
}

func TestCreate_RejectsPastSchedule(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := testVisitService(&mockVisitRepository{}, now)

	request := &model.VisitRequest{
		PropertyID:  "prop-1",
		RecipientID: "agent-1",
		ScheduledAt: now.Add(-time.Minute),
	}
	expectCode(t, svc.Create(context.Background(), "buyer-1", request), apperrors.CodeValidation)
}

func TestCreate_RejectsExactlyNow(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := testVisitService(&mockVisitRepository{}, now)

	request := &model.VisitRequest{
		PropertyID:  "prop-1",
		RecipientID: "agent-1",
		ScheduledAt: now,
	}
	expectCode(t, svc.Create(context.Background(), "buyer-1", request), apperrors.CodeValidation)
}

func TestCreate_RejectsSelfRequest(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := testVisitService(&mockVisitRepository{}, now)

	request := &model.VisitRequest{
		PropertyID:  "prop-1",
		RecipientID: "buyer-1",
		ScheduledAt: now.Add(time.Hour),
	}
	expectCode(t, svc.Create(context.Background(), "buyer-1", request), apperrors.CodeValidation)
}

func TestCreate_MissingActor(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := testVisitService(&mockVisitRepository{}, now)

	request := &model.VisitRequest{
		PropertyID:  "prop-1",
		RecipientID: "agent-1",
		ScheduledAt: now.Add(time.Hour),
	}
	expectCode(t, svc.Create(context.Background(), "", request), apperrors.CodeUnauthorized)
}

// --- Status transitions ---

func TestSetStatus_ApprovePending(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	var updated *model.VisitRequest
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			return pendingRequest(), nil
		},
		updateFunc: func(ctx context.Context, id string, request *model.VisitRequest) (*mongo.UpdateResult, error) {
			updated = request
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.SetStatus(context.Background(), "agent-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitStatusChange{Status: model.StatusApproved})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil || updated.Status != model.StatusApproved {
		t.Fatalf("expected status approved, got %+v", updated)
	}
}

func TestSetStatus_WrongActorForbidden(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			return pendingRequest(), nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.SetStatus(context.Background(), "buyer-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitStatusChange{Status: model.StatusApproved})
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestSetStatus_RejectedIsTerminal(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			r := pendingRequest()
			r.Status = model.StatusRejected
			return r, nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.SetStatus(context.Background(), "agent-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitStatusChange{Status: model.StatusApproved})
	expectCode(t, err, apperrors.CodeConflict)
}

func TestSetStatus_InvalidTargetStatus(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := testVisitService(&mockVisitRepository{}, now)

	err := svc.SetStatus(context.Background(), "agent-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitStatusChange{Status: model.StatusVisited})
	expectCode(t, err, apperrors.CodeValidation)
}

func TestSetOutcome_VisitedFromApproved(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	var updated *model.VisitRequest
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			r := pendingRequest()
			r.Status = model.StatusApproved
			return r, nil
		},
		updateFunc: func(ctx context.Context, id string, request *model.VisitRequest) (*mongo.UpdateResult, error) {
			updated = request
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.SetOutcome(context.Background(), "agent-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitOutcome{Outcome: model.StatusNotVisited})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil || updated.Status != model.StatusNotVisited {
		t.Fatalf("expected status %q, got %+v", model.StatusNotVisited, updated)
	}
}

func TestSetOutcome_PendingConflicts(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			return pendingRequest(), nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.SetOutcome(context.Background(), "agent-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitOutcome{Outcome: model.StatusVisited})
	expectCode(t, err, apperrors.CodeConflict)
}

// --- Reschedule ---

func TestReschedule_PendingSuccess(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	note := "gate code 1234"
	var updated *model.VisitRequest
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			return pendingRequest(), nil
		},
		updateFunc: func(ctx context.Context, id string, request *model.VisitRequest) (*mongo.UpdateResult, error) {
			updated = request
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := testVisitService(repo, now)

	newTime := now.Add(48 * time.Hour)
	err := svc.Reschedule(context.Background(), "buyer-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitReschedule{ScheduledAt: newTime, Note: &note})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.ScheduledAt.Equal(newTime) {
		t.Errorf("expected scheduled_at %v, got %v", newTime, updated.ScheduledAt)
	}
	if updated.Note != note {
		t.Errorf("expected note replaced, got %q", updated.Note)
	}
	if updated.Status != model.StatusPending {
		t.Errorf("expected status unchanged, got %s", updated.Status)
	}
}

func TestReschedule_NilNoteKeepsExisting(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	var updated *model.VisitRequest
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			r := pendingRequest()
			r.Note = "original note"
			return r, nil
		},
		updateFunc: func(ctx context.Context, id string, request *model.VisitRequest) (*mongo.UpdateResult, error) {
			updated = request
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.Reschedule(context.Background(), "buyer-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitReschedule{ScheduledAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Note != "original note" {
		t.Errorf("expected note untouched, got %q", updated.Note)
	}
}

func TestReschedule_ApprovedConflicts(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			r := pendingRequest()
			r.Status = model.StatusApproved
			return r, nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.Reschedule(context.Background(), "buyer-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitReschedule{ScheduledAt: now.Add(time.Hour)})
	expectCode(t, err, apperrors.CodeConflict)
}

func TestReschedule_RecipientForbidden(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			return pendingRequest(), nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.Reschedule(context.Background(), "agent-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitReschedule{ScheduledAt: now.Add(time.Hour)})
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestReschedule_PastTimeRejected(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := testVisitService(&mockVisitRepository{}, now)

	err := svc.Reschedule(context.Background(), "buyer-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitReschedule{ScheduledAt: now.Add(-time.Hour)})
	expectCode(t, err, apperrors.CodeValidation)
}

func TestRecipientReschedule_ApprovedKeepsStatus(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	var updated *model.VisitRequest
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			r := pendingRequest()
			r.Status = model.StatusApproved
			return r, nil
		},
		updateFunc: func(ctx context.Context, id string, request *model.VisitRequest) (*mongo.UpdateResult, error) {
			updated = request
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.RecipientReschedule(context.Background(), "agent-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitReschedule{ScheduledAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusApproved {
		t.Errorf("expected status preserved as approved, got %s", updated.Status)
	}
}

func TestRecipientReschedule_PendingConflicts(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			return pendingRequest(), nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.RecipientReschedule(context.Background(), "agent-1", "64b0c8a9e4b0f1a2d3c4e5f6",
		&model.VisitReschedule{ScheduledAt: now.Add(time.Hour)})
	expectCode(t, err, apperrors.CodeConflict)
}

// --- Cancel ---

func TestCancel_PendingSuccess(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	deleted := false
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			return pendingRequest(), nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := testVisitService(repo, now)

	if err := svc.Cancel(context.Background(), "buyer-1", "64b0c8a9e4b0f1a2d3c4e5f6"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected request deleted")
	}
}

func TestCancel_ApprovedSuccess(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			r := pendingRequest()
			r.Status = model.StatusApproved
			return r, nil
		},
	}
	svc := testVisitService(repo, now)

	if err := svc.Cancel(context.Background(), "buyer-1", "64b0c8a9e4b0f1a2d3c4e5f6"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCancel_TerminalConflicts(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	for _, status := range []model.VisitStatus{model.StatusRejected, model.StatusVisited, model.StatusNotVisited} {
		repo := &mockVisitRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
				r := pendingRequest()
				r.Status = status
				return r, nil
			},
		}
		svc := testVisitService(repo, now)

		err := svc.Cancel(context.Background(), "buyer-1", "64b0c8a9e4b0f1a2d3c4e5f6")
		expectCode(t, err, apperrors.CodeConflict)
	}
}

func TestCancel_RecipientForbidden(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			return pendingRequest(), nil
		},
	}
	svc := testVisitService(repo, now)

	err := svc.Cancel(context.Background(), "agent-1", "64b0c8a9e4b0f1a2d3c4e5f6")
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestCancel_NotFound(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := testVisitService(&mockVisitRepository{}, now)

	err := svc.Cancel(context.Background(), "buyer-1", "64b0c8a9e4b0f1a2d3c4e5f6")
	expectCode(t, err, apperrors.CodeNotFound)
}

// --- Listing ---

func TestMine_PassesStatusFilter(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	var gotStatus model.VisitStatus
	repo := &mockVisitRepository{
		findByRequesterFunc: func(ctx context.Context, requesterID string, status model.VisitStatus) ([]*model.VisitRequest, error) {
			gotStatus = status
			return []*model.VisitRequest{pendingRequest()}, nil
		},
	}
	svc := testVisitService(repo, now)

	requests, err := svc.Mine(context.Background(), "buyer-1", model.StatusPending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStatus != model.StatusPending {
		t.Errorf("expected pending filter passed through, got %q", gotStatus)
	}
	if len(requests) != 1 {
		t.Errorf("expected 1 request, got %d", len(requests))
	}
}

func TestMine_RejectsUnknownStatus(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := testVisitService(&mockVisitRepository{}, now)

	_, err := svc.Mine(context.Background(), "buyer-1", "archived")
	expectCode(t, err, apperrors.CodeInvalidInput)
}

func TestAssignedToMe_AllStatuses(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	repo := &mockVisitRepository{
		findByRecipientFunc: func(ctx context.Context, recipientID string, status model.VisitStatus) ([]*model.VisitRequest, error) {
			if recipientID != "agent-1" {
				t.Errorf("expected recipient agent-1, got %s", recipientID)
			}
			return []*model.VisitRequest{pendingRequest(), pendingRequest()}, nil
		},
	}
	svc := testVisitService(repo, now)

	requests, err := svc.AssignedToMe(context.Background(), "agent-1", model.StatusFilterAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests) != 2 {
		t.Errorf("expected 2 requests, got %d", len(requests))
	}
}

// --- GetByID ---

func TestGetByID_ThirdPartyForbidden(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockVisitRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.VisitRequest, error) {
			return pendingRequest(), nil
		},
	}
	svc := testVisitService(repo, now)

	_, err := svc.GetByID(context.Background(), "stranger", "64b0c8a9e4b0f1a2d3c4e5f6")
	expectCode(t, err, apperrors.CodeForbidden)
}
