package observability

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_LevelMapping(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		level        string
		debugEnabled bool
	}{
		{name: "debug level", level: "debug", debugEnabled: true},
		{name: "info level", level: "info", debugEnabled: false},
		{name: "empty level defaults to info", level: "", debugEnabled: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger, err := NewLogger(tc.level)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("logger should not be nil")
			}

			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tc.debugEnabled {
				t.Fatalf("debug enabled=%v, want=%v", got, tc.debugEnabled)
			}
		})
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("not-a-level")
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
	if logger != nil {
		t.Fatal("expected nil logger for invalid level")
	}
}

func TestRequestID_ContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-123")
	requestID, ok := RequestIDFromContext(ctx)
	if !ok {
		t.Fatal("expected request id to exist")
	}
	if requestID != "req-123" {
		t.Fatalf("request id=%q, want=%q", requestID, "req-123")
	}
}

func TestRequestID_ContextHelpersTODOContext(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.TODO(), "req-456")
	requestID, ok := RequestIDFromContext(ctx)
	if !ok {
		t.Fatal("expected request id to exist")
	}
	if requestID != "req-456" {
		t.Fatalf("request id=%q, want=%q", requestID, "req-456")
	}
}

func TestRequestID_MissingValue(t *testing.T) {
	t.Parallel()

	_, ok := RequestIDFromContext(context.Background())
	if ok {
		t.Fatal("expected request id to be missing")
	}
}

func TestWithContextLogger(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.InfoLevel)
	baseLogger := zap.New(core)

	ctx := WithRequestID(context.Background(), "req-789")
	loggerWithContext := WithContextLogger(baseLogger, ctx)
	loggerWithContext.Info("message with request id")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("entries=%d, want=1", len(entries))
	}

	if got := entries[0].ContextMap()["requestId"]; got != "req-789" {
		t.Fatalf("requestId=%v, want=%q", got, "req-789")
	}
}

func TestWithContextLogger_NoRequestID(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.InfoLevel)
	baseLogger := zap.New(core)

	loggerWithContext := WithContextLogger(baseLogger, context.Background())
	loggerWithContext.Info("message without request id")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("entries=%d, want=1", len(entries))
	}

	if _, ok := entries[0].ContextMap()["requestId"]; ok {
		t.Fatal("expected requestId field to be absent")
	}
}

func TestWithContextLogger_NilLogger(t *testing.T) {
	t.Parallel()

	if got := WithContextLogger(nil, context.Background()); got != nil {
		t.Fatal("expected nil logger")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/echo", func(c *fiber.Ctx) error {
		requestID, _ := RequestIDFromContext(c.UserContext())
		return c.SendString(requestID)
	})

	testCases := []struct {
		name     string
		inbound  string
		wantSame bool
	}{
		{name: "propagates inbound header", inbound: "req-inbound", wantSame: true},
		{name: "generates when missing", inbound: ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/echo", nil)
			if tc.inbound != "" {
				req.Header.Set(RequestIDHeader, tc.inbound)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}

			got := resp.Header.Get(RequestIDHeader)
			if got == "" {
				t.Fatal("expected response request id header")
			}
			if tc.wantSame && got != tc.inbound {
				t.Fatalf("request id=%q, want=%q", got, tc.inbound)
			}
		})
	}
}
