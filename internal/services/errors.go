package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrGenerationBlocked     = errors.New("generation blocked")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrCaptureFailed         = errors.New("capture failed")
	ErrEncodingFailed        = errors.New("encoding failed")
	ErrInternalCleanup       = errors.New("internal cleanup failure")
	ErrConfiguration         = errors.New("configuration error")

	// ErrPromptTooShort is an ErrInvalidRequest with its own caller message.
	ErrPromptTooShort = fmt.Errorf("%w: prompt too short", ErrInvalidRequest)
)

// Fixed messages returned to callers. Diagnostic detail stays in the logs.
const (
	MessagePromptTooShort   = "Prompt is too short."
	MessageInvalidRequest   = "Invalid request."
	MessageGenerationFailed = "Failed to generate video. Please try a different prompt."
	MessageContentBlocked   = "The prompt was blocked by the content filter. Please try a different prompt."
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrGenerationUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails is the caller-facing view of a pipeline failure.
type ErrorDetails struct {
	Kind       string
	Marker     error
	Message    string
	HTTPStatus int
}

// Details classifies err by its marker. Unknown errors are reported as
// generation failures with a 500 status.
func Details(err error) ErrorDetails {
	switch {
	case err == nil:
		return ErrorDetails{Kind: "none", HTTPStatus: http.StatusOK}
	case errors.Is(err, ErrInvalidRequest):
		msg := MessageInvalidRequest
		if errors.Is(err, ErrPromptTooShort) {
			msg = MessagePromptTooShort
		}
		return ErrorDetails{Kind: "invalid_request", Marker: ErrInvalidRequest, Message: msg, HTTPStatus: http.StatusBadRequest}
	case errors.Is(err, ErrGenerationBlocked):
		return ErrorDetails{Kind: "generation_blocked", Marker: ErrGenerationBlocked, Message: MessageContentBlocked, HTTPStatus: http.StatusUnprocessableEntity}
	case errors.Is(err, ErrGenerationUnavailable):
		return ErrorDetails{Kind: "generation_unavailable", Marker: ErrGenerationUnavailable, Message: MessageGenerationFailed, HTTPStatus: http.StatusInternalServerError}
	case errors.Is(err, ErrCaptureFailed):
		return ErrorDetails{Kind: "capture_failed", Marker: ErrCaptureFailed, Message: MessageGenerationFailed, HTTPStatus: http.StatusInternalServerError}
	case errors.Is(err, ErrEncodingFailed):
		return ErrorDetails{Kind: "encoding_failed", Marker: ErrEncodingFailed, Message: MessageGenerationFailed, HTTPStatus: http.StatusInternalServerError}
	case errors.Is(err, ErrConfiguration):
		return ErrorDetails{Kind: "configuration", Marker: ErrConfiguration, Message: MessageGenerationFailed, HTTPStatus: http.StatusInternalServerError}
	default:
		return ErrorDetails{Kind: "internal", Message: MessageGenerationFailed, HTTPStatus: http.StatusInternalServerError}
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
