package provider

import (
	"fmt"
	"net/http"
	"strings"
)

// PlatformError is a failed call to the chat platform.
type PlatformError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *PlatformError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 4)
	parts = append(parts, "chat platform error")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *PlatformError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func platformErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("platform returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}

func isSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
