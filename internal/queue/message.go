package queue

import (
	"fmt"
	"strings"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

// NoticeMessage is the broker payload for a pending wait notice.
type NoticeMessage struct {
	NoticeID  string `json:"noticeId"`
	RequestID string `json:"requestId,omitempty"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	TimeLeft  int    `json:"timeLeft"`
	Secret    string `json:"secret"`
}

func NoticeMessageFromDomain(notice domain.PendingNotice, requestID string) NoticeMessage {
	return NoticeMessage{
		NoticeID:  notice.ID,
		RequestID: requestID,
		RoomID:    notice.RoomID,
		UserID:    notice.UserID,
		TimeLeft:  notice.SecondsRemaining,
		Secret:    notice.Secret,
	}
}

func (m NoticeMessage) ToDomain() domain.PendingNotice {
	return domain.PendingNotice{
		ID:               m.NoticeID,
		UserID:           m.UserID,
		RoomID:           m.RoomID,
		SecondsRemaining: m.TimeLeft,
		Secret:           m.Secret,
	}
}

func (m NoticeMessage) Validate() error {
	if strings.TrimSpace(m.NoticeID) == "" {
		return fmt.Errorf("noticeId is required")
	}
	if strings.TrimSpace(m.RoomID) == "" {
		return fmt.Errorf("roomId is required")
	}
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("userId is required")
	}
	if m.TimeLeft < 1 {
		return fmt.Errorf("timeLeft must be positive, got %d", m.TimeLeft)
	}
	return nil
}
