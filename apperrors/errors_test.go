package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", Validation("bad"), CodeValidation, http.StatusBadRequest},
		{"unauthorized", Unauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("dup"), CodeConflict, http.StatusConflict},
		{"config client", Config("disabled", http.StatusBadRequest), CodeConfig, http.StatusBadRequest},
		{"config server", Config("missing", http.StatusInternalServerError), CodeConfig, http.StatusInternalServerError},
		{"signature", SignatureMismatch("sig"), CodeSignatureMismatch, http.StatusBadRequest},
		{"upstream", Upstream("gateway", errors.New("eof")), CodeUpstream, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.status)
			}
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	if got := NotFound("Package").Message; got != "Package not found" {
		t.Errorf("Message = %q", got)
	}
}

func TestAsWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")
	appErr := As(cause)
	if appErr.Code != CodeInternal || appErr.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("As(plain) = %+v", appErr)
	}
	if !errors.Is(appErr, cause) {
		t.Error("wrapped error lost its cause")
	}
}

func TestAsFindsWrappedAppError(t *testing.T) {
	original := Forbidden("not yours")
	wrapped := fmt.Errorf("loading booking: %w", original)

	if got := As(wrapped); got != original {
		t.Fatalf("As returned %v, want original", got)
	}
	if !Is(wrapped, CodeForbidden) {
		t.Error("Is(wrapped, FORBIDDEN) = false")
	}
	if Is(errors.New("x"), CodeForbidden) {
		t.Error("Is(plain, FORBIDDEN) = true")
	}
}

func TestAsNil(t *testing.T) {
	if As(nil) != nil {
		t.Error("As(nil) should be nil")
	}
}
