package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

// NotifyPath is the callback route served by the API.
const NotifyPath = "/v1/slowmode/notify"

// The producer imposes no deadline of its own; the client timeout bounds the
// background goroutine.
const defaultCallbackTimeout = 15 * time.Second

var _ Dispatcher = (*HTTPDispatcher)(nil)

// HTTPDispatcher posts notices back to this service's own notify endpoint.
type HTTPDispatcher struct {
	client      *resty.Client
	callbackURL string
}

func NewHTTPDispatcher(siteURL string) (*HTTPDispatcher, error) {
	return NewHTTPDispatcherWithClient(siteURL, resty.New())
}

func NewHTTPDispatcherWithClient(siteURL string, client *resty.Client) (*HTTPDispatcher, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("site url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid site url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultCallbackTimeout)
	}
	client.SetRetryCount(0)

	return &HTTPDispatcher{
		client:      client,
		callbackURL: trimmed + NotifyPath,
	}, nil
}

func (d *HTTPDispatcher) Name() string {
	return TransportHTTP
}

func (d *HTTPDispatcher) Send(ctx context.Context, notice domain.PendingNotice) error {
	response, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(PayloadFromNotice(notice)).
		Post(d.callbackURL)
	if err != nil {
		return fmt.Errorf("notify callback failed: %w", err)
	}

	if status := response.StatusCode(); status != http.StatusOK {
		return fmt.Errorf("notify callback returned status %d: %s", status, strings.TrimSpace(response.String()))
	}
	return nil
}
