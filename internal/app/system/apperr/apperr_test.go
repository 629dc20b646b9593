package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fieldworks/turfhub/internal/app/system/apperr"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad field %q", "price"), http.StatusBadRequest},
		{"not found", apperr.NotFound("turf not found"), http.StatusNotFound},
		{"unauthorized", apperr.Unauthorized("missing token"), http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("not the review owner"), http.StatusForbidden},
		{"conflict", apperr.Conflict("owner already set"), http.StatusConflict},
		{"internal", apperr.Internal("store failure", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", apperr.Conflict("dup")), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessageOf_HidesInternalCause(t *testing.T) {
	err := apperr.Internal("image upload failed", errors.New("s3: access denied"))
	if got := apperr.MessageOf(err); got != "image upload failed" {
		t.Errorf("MessageOf = %q, want %q", got, "image upload failed")
	}

	if got := apperr.MessageOf(errors.New("raw driver error")); got != "internal server error" {
		t.Errorf("MessageOf(plain) = %q, want generic message", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := apperr.Internal("query failed", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
}
