package validator

import (
	"strings"
	"testing"
	"time"

	"homeshow/pkg/logger"
	"homeshow/pkg/model"
)

func testValidator() *VisitValidator {
	return NewVisitValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "test",
	}))
}

func validRequest() *model.VisitRequest {
	return &model.VisitRequest{
		PropertyID:  "prop-1",
		RequesterID: "buyer-1",
		RecipientID: "agent-1",
		ScheduledAt: time.Date(2026, 9, 5, 14, 0, 0, 0, time.UTC),
		Status:      model.StatusPending,
	}
}

func TestValidate_Success(t *testing.T) {
	v := testValidator()
	if err := v.Validate(validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name   string
		mutate func(r *model.VisitRequest)
	}{
		{"missing property", func(r *model.VisitRequest) { r.PropertyID = "" }},
		{"missing requester", func(r *model.VisitRequest) { r.RequesterID = "" }},
		{"missing recipient", func(r *model.VisitRequest) { r.RecipientID = "" }},
		{"missing scheduled_at", func(r *model.VisitRequest) { r.ScheduledAt = time.Time{} }},
		{"missing status", func(r *model.VisitRequest) { r.Status = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(r)
			if err := v.Validate(r); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_UnknownStatus(t *testing.T) {
	v := testValidator()
	r := validRequest()
	r.Status = "archived"
	if err := v.Validate(r); err == nil {
		t.Error("expected validation error for unknown status")
	}
}

func TestValidate_NotVisitedStatusAccepted(t *testing.T) {
	v := testValidator()
	r := validRequest()
	r.Status = model.StatusNotVisited
	if err := v.Validate(r); err != nil {
		t.Errorf("expected 'not visited' to be storable, got %v", err)
	}
}

func TestValidate_SameRequesterAndRecipient(t *testing.T) {
	v := testValidator()
	r := validRequest()
	r.RecipientID = r.RequesterID
	err := v.Validate(r)
	if err == nil {
		t.Fatal("expected validation error for self-request")
	}
	if !strings.Contains(err.Error(), "different users") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestValidate_NoteTooLong(t *testing.T) {
	v := testValidator()
	r := validRequest()
	r.Note = strings.Repeat("x", 501)
	if err := v.Validate(r); err == nil {
		t.Error("expected validation error for oversized note")
	}
}

func TestValidateStatusChange(t *testing.T) {
	v := testValidator()

	if err := v.ValidateStatusChange(&model.VisitStatusChange{Status: model.StatusApproved}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateStatusChange(&model.VisitStatusChange{Status: model.StatusVisited}); err == nil {
		t.Error("expected error: visited is not a status change target")
	}
}

func TestValidateOutcome(t *testing.T) {
	v := testValidator()

	if err := v.ValidateOutcome(&model.VisitOutcome{Outcome: model.StatusNotVisited}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateOutcome(&model.VisitOutcome{Outcome: model.StatusRejected}); err == nil {
		t.Error("expected error: rejected is not an outcome")
	}
}

func TestValidateReschedule(t *testing.T) {
	v := testValidator()

	if err := v.ValidateReschedule(&model.VisitReschedule{
		ScheduledAt: time.Date(2026, 9, 5, 14, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateReschedule(&model.VisitReschedule{}); err == nil {
		t.Error("expected error for missing scheduled_at")
	}
}
