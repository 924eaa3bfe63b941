package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "visit request not found",
			},
			expected: "NOT_FOUND: visit request not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "storage failure",
				Err:     errors.New("connection refused"),
			},
			expected: "INTERNAL_ERROR: storage failure (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appErr := Wrap(cause, CodeInternal, "wrapped", http.StatusInternalServerError)

	if unwrapped := errors.Unwrap(appErr); unwrapped != cause {
		t.Errorf("Unwrap() should return the original error, got %v", unwrapped)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"NotFound", NotFound("Slot"), CodeNotFound, http.StatusNotFound},
		{"Validation", Validation("bad times", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"InvalidInput", InvalidInput("empty id"), CodeInvalidInput, http.StatusBadRequest},
		{"Unauthorized", Unauthorized("login required"), CodeUnauthorized, http.StatusUnauthorized},
		{"Forbidden", Forbidden("recipient only"), CodeForbidden, http.StatusForbidden},
		{"Conflict", Conflict("state changed"), CodeConflict, http.StatusConflict},
		{"Internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
		{"Unavailable", Unavailable("availability service"), CodeUnavailable, http.StatusServiceUnavailable},
		{"Timeout", Timeout("backend timed out"), CodeTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("VisitRequest", "65f000000000000000000001")

	if err.Details["id"] != "65f000000000000000000001" {
		t.Errorf("expected id detail, got %v", err.Details["id"])
	}
	if err.Details["resource"] != "VisitRequest" {
		t.Errorf("expected resource detail, got %v", err.Details["resource"])
	}
}

func TestAsAppError_WrapsUnknownErrors(t *testing.T) {
	appErr := AsAppError(errors.New("plain failure"))

	if appErr.Code != CodeInternal {
		t.Errorf("unknown errors must map to %s, got %s", CodeInternal, appErr.Code)
	}
}

func TestAsAppError_UnwrapsNested(t *testing.T) {
	inner := Conflict("request is no longer pending")
	wrapped := fmt.Errorf("transition failed: %w", inner)

	if got := AsAppError(wrapped); got != inner {
		t.Errorf("expected the nested AppError, got %v", got)
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(Unavailable("backend")) {
		t.Error("unavailable must be transient")
	}
	if !IsTransient(errors.New("dial tcp: connection refused")) {
		t.Error("raw transport errors must be transient")
	}
	if IsTransient(Validation("bad input", nil)) {
		t.Error("validation errors are never transient")
	}
	if IsTransient(Unauthorized("no session")) {
		t.Error("auth errors are never transient")
	}
}

func TestIsAuth(t *testing.T) {
	if !IsAuth(Unauthorized("no session")) || !IsAuth(Forbidden("wrong role")) {
		t.Error("401/403 codes must count as auth errors")
	}
	if IsAuth(Conflict("state changed")) || IsAuth(errors.New("plain")) {
		t.Error("non-auth errors misclassified")
	}
}
