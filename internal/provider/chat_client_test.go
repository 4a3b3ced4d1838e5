package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

func TestChatClientGetRoom(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/rooms/r1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"r1","displayName":"general","type":"channel"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewChatClient(server.URL+"/api/", "")
	if err != nil {
		t.Fatalf("NewChatClient() error = %v", err)
	}

	room, err := client.GetRoom(context.Background(), "r1")
	if err != nil {
		t.Fatalf("GetRoom() error = %v", err)
	}
	if room.ID != "r1" || room.DisplayName != "general" || room.Type != domain.RoomTypeChannel {
		t.Fatalf("GetRoom() = %+v, want r1/general/CHANNEL", room)
	}

	_, err = client.GetRoom(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetRoom(missing) error = %v, want ErrNotFound", err)
	}

	var platformErr *PlatformError
	if !errors.As(err, &platformErr) {
		t.Fatalf("expected PlatformError, got %T", err)
	}
	if platformErr.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", platformErr.StatusCode)
	}
}

func TestChatClientGetRoom_UnknownTypeIsNotDirect(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"r9","displayName":"town-hall","type":"broadcast"}`))
	}))
	defer server.Close()

	client, err := NewChatClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewChatClient() error = %v", err)
	}

	room, err := client.GetRoom(context.Background(), "r9")
	if err != nil {
		t.Fatalf("GetRoom() error = %v", err)
	}
	if room.IsDirect() {
		t.Fatalf("room %+v must not be direct", room)
	}
	if room.Type != domain.RoomType("BROADCAST") {
		t.Fatalf("Type = %q, want BROADCAST", room.Type)
	}
}

func TestChatClientGetUser(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","username":"alice","roles":["user","moderator"]}`))
	}))
	defer server.Close()

	client, err := NewChatClient(server.URL, "token-1")
	if err != nil {
		t.Fatalf("NewChatClient() error = %v", err)
	}

	user, err := client.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Username != "alice" || !user.CanManageSlowMode() {
		t.Fatalf("GetUser() = %+v, want moderator alice", user)
	}
	if gotAuth != "Bearer token-1" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestChatClientNotifyUser(t *testing.T) {
	t.Parallel()

	var gotBody notifyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/notify" {
			t.Errorf("path = %s, want /notify", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := NewChatClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewChatClient() error = %v", err)
	}

	notice := DirectNotice{UserID: "u1", RoomID: "r1", SenderID: "bot", Text: "hello"}
	if err := client.NotifyUser(context.Background(), notice); err != nil {
		t.Fatalf("NotifyUser() error = %v", err)
	}

	if gotBody.UserID != "u1" || gotBody.RoomID != "r1" || gotBody.SenderID != "bot" || gotBody.Text != "hello" {
		t.Fatalf("request body = %+v, want %+v", gotBody, notice)
	}
}

func TestChatClientNotifyUserServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client, err := NewChatClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewChatClient() error = %v", err)
	}

	err = client.NotifyUser(context.Background(), DirectNotice{UserID: "u1", RoomID: "r1", Text: "hi"})
	var platformErr *PlatformError
	if !errors.As(err, &platformErr) {
		t.Fatalf("expected PlatformError, got %v", err)
	}
	if platformErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("StatusCode = %d, want 500", platformErr.StatusCode)
	}
	if IsNotFound(err) {
		t.Fatal("500 must not be reported as not found")
	}
}

func TestChatClientTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rc := resty.New()
	rc.SetTimeout(30 * time.Millisecond)

	client, err := NewChatClientWithClient(server.URL, rc)
	if err != nil {
		t.Fatalf("NewChatClientWithClient() error = %v", err)
	}

	err = client.NotifyUser(context.Background(), DirectNotice{UserID: "u1", RoomID: "r1", Text: "hi"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewChatClientValidatesURL(t *testing.T) {
	t.Parallel()

	if _, err := NewChatClient("", ""); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewChatClient("not a url", ""); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
