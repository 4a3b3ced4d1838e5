package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

const defaultPlatformTimeout = 10 * time.Second

type roomResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

type userResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type notifyRequest struct {
	UserID   string `json:"userId"`
	RoomID   string `json:"roomId"`
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

var _ Platform = (*ChatClient)(nil)

// ChatClient talks to the chat platform REST API.
type ChatClient struct {
	client  *resty.Client
	baseURL string
}

func NewChatClient(baseURL string, token string) (*ChatClient, error) {
	client := resty.New()
	client.SetTimeout(defaultPlatformTimeout)
	if strings.TrimSpace(token) != "" {
		client.SetAuthToken(strings.TrimSpace(token))
	}

	return NewChatClientWithClient(baseURL, client)
}

func NewChatClientWithClient(baseURL string, client *resty.Client) (*ChatClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("chat platform url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid chat platform url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultPlatformTimeout)
	}
	client.SetRetryCount(0)

	return &ChatClient{
		client:  client,
		baseURL: trimmed,
	}, nil
}

func (c *ChatClient) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, fmt.Errorf("%w: room id is required", domain.ErrValidation)
	}

	var body roomResponse
	if err := c.get(ctx, "/rooms/"+url.PathEscape(roomID), &body); err != nil {
		return nil, fmt.Errorf("room %q: %w", roomID, err)
	}

	roomType, err := domain.ParseRoomTypeFromString(body.Type)
	if err != nil {
		// Kinds added by the platform later are ordinary, non-direct rooms.
		roomType = domain.RoomType(strings.ToUpper(strings.TrimSpace(body.Type)))
	}

	return &domain.Room{
		ID:          body.ID,
		DisplayName: body.DisplayName,
		Type:        roomType,
	}, nil
}

func (c *ChatClient) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	var body userResponse
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), &body); err != nil {
		return nil, fmt.Errorf("user %q: %w", userID, err)
	}

	return &domain.User{
		ID:       body.ID,
		Username: body.Username,
		Roles:    body.Roles,
	}, nil
}

func (c *ChatClient) NotifyUser(ctx context.Context, notice DirectNotice) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("chat client is not initialized")
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(notifyRequest{
			UserID:   notice.UserID,
			RoomID:   notice.RoomID,
			SenderID: notice.SenderID,
			Text:     notice.Text,
		}).
		Post(c.baseURL + "/notify")
	if err != nil {
		return &PlatformError{Message: "notify request failed", Cause: err}
	}
	if !isSuccess(response.StatusCode()) {
		return statusError(response)
	}
	return nil
}

func (c *ChatClient) get(ctx context.Context, path string, out any) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("chat client is not initialized")
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetResult(out).
		Get(c.baseURL + path)
	if err != nil {
		return &PlatformError{Message: "request failed", Cause: err}
	}
	if !isSuccess(response.StatusCode()) {
		return statusError(response)
	}
	return nil
}

func statusError(response *resty.Response) error {
	statusCode := response.StatusCode()
	platformErr := &PlatformError{
		StatusCode: statusCode,
		Message:    platformErrorMessage(statusCode, strings.TrimSpace(response.String())),
	}
	if statusCode == http.StatusNotFound {
		platformErr.Cause = domain.ErrNotFound
	}
	return platformErr
}

// IsNotFound reports whether err means the platform does not know the entity.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
