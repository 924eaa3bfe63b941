package validator

import (
	"testing"

	"homeshow/pkg/logger"
	"homeshow/pkg/model"
)

func testValidator() *SlotValidator {
	return NewSlotValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "test",
	}))
}

func TestValidateBatch_Success(t *testing.T) {
	v := testValidator()
	err := v.ValidateBatch(&model.SlotBatch{
		Date:  "2026-09-02",
		Times: []string{"14:00", "14:30"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBatch_MalformedTimesPass(t *testing.T) {
	// Malformed entries are dropped downstream, not rejected here.
	v := testValidator()
	err := v.ValidateBatch(&model.SlotBatch{
		Date:  "2026-09-02",
		Times: []string{"25:00", "nope"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBatch_Failures(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name  string
		batch *model.SlotBatch
	}{
		{"missing date", &model.SlotBatch{Times: []string{"14:00"}}},
		{"malformed date", &model.SlotBatch{Date: "02/09/2026", Times: []string{"14:00"}}},
		{"empty times", &model.SlotBatch{Date: "2026-09-02", Times: []string{}}},
		{"nil times", &model.SlotBatch{Date: "2026-09-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.ValidateBatch(tt.batch); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateSlot(t *testing.T) {
	v := testValidator()

	slot := &model.TimeSlot{
		ID:         "7f9c24e8-3b1a-4a8e-9c2d-1e5f6a7b8c9d",
		PropertyID: "prop-1",
		Date:       "2026-09-02",
		StartTime:  "14:00",
		EndTime:    "14:30",
	}
	if err := v.ValidateSlot(slot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slot.StartTime = "2pm"
	if err := v.ValidateSlot(slot); err == nil {
		t.Error("expected validation error for malformed start time")
	}
}
