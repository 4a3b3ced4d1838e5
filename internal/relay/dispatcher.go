package relay

import (
	"context"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

// Dispatcher hands a pending notice to a transport that eventually invokes
// the consumer. Implementations must not retry.
type Dispatcher interface {
	Send(ctx context.Context, notice domain.PendingNotice) error
	Name() string
}

// Transport names.
const (
	TransportHTTP   = "http"
	TransportAMQP   = "amqp"
	TransportMemory = "memory"
)
