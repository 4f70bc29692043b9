package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"graphion/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrEncodingFailed, "encoding", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrEncodingFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"encoding", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrGenerationUnavailable) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestDetailsMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "short prompt",
			err:     services.Wrap(services.ErrPromptTooShort, "pipeline", "validate", "minimum 10 characters", nil),
			status:  http.StatusBadRequest,
			message: services.MessagePromptTooShort,
		},
		{
			name:    "detail mentioning too short",
			err:     services.Wrap(services.ErrInvalidRequest, "server", "decode", "body too short", nil),
			status:  http.StatusBadRequest,
			message: services.MessageInvalidRequest,
		},
		{
			name:    "malformed body",
			err:     services.Wrap(services.ErrInvalidRequest, "server", "decode", "malformed json", nil),
			status:  http.StatusBadRequest,
			message: services.MessageInvalidRequest,
		},
		{
			name:    "blocked",
			err:     services.Wrap(services.ErrGenerationBlocked, "markup", "generate", "SAFETY", nil),
			status:  http.StatusUnprocessableEntity,
			message: services.MessageContentBlocked,
		},
		{
			name:    "encoding",
			err:     services.Wrap(services.ErrEncodingFailed, "encoding", "ffmpeg", "exit 1", nil),
			status:  http.StatusInternalServerError,
			message: services.MessageGenerationFailed,
		},
		{
			name:    "unknown",
			err:     errors.New("mystery"),
			status:  http.StatusInternalServerError,
			message: services.MessageGenerationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := services.Details(tt.err)
			if details.HTTPStatus != tt.status {
				t.Fatalf("status = %d, want %d", details.HTTPStatus, tt.status)
			}
			if details.Message != tt.message {
				t.Fatalf("message = %q, want %q", details.Message, tt.message)
			}
		})
	}
	if details := services.Details(services.ErrPromptTooShort); details.Marker != services.ErrInvalidRequest {
		t.Fatalf("expected short prompt to classify as invalid request, got %v", details.Marker)
	}
	if details := services.Details(nil); details.HTTPStatus != http.StatusOK {
		t.Fatalf("expected ok for nil error, got %d", details.HTTPStatus)
	}
}
