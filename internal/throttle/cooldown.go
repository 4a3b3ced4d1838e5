package throttle

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

// DefaultCooldownSeconds is the packaged slow mode duration.
const DefaultCooldownSeconds = 60

// Cooldown is the live, process-wide slow mode duration.
type Cooldown struct {
	seconds atomic.Int64
}

func NewCooldown(seconds int) *Cooldown {
	c := &Cooldown{}
	if seconds <= 0 {
		seconds = DefaultCooldownSeconds
	}
	c.seconds.Store(int64(seconds))
	return c
}

func (c *Cooldown) Seconds() int {
	if c == nil {
		return DefaultCooldownSeconds
	}
	return int(c.seconds.Load())
}

func (c *Cooldown) Duration() time.Duration {
	return time.Duration(c.Seconds()) * time.Second
}

// Set replaces the duration. It applies to the next evaluation.
func (c *Cooldown) Set(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: cooldown must be a positive number of seconds", domain.ErrValidation)
	}
	c.seconds.Store(int64(seconds))
	return nil
}
