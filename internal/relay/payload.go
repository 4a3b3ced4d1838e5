package relay

import "github.com/kursadbilgin/slowmode-engine/internal/domain"

// NotifyPayload is the callback body posted by the HTTP transport.
type NotifyPayload struct {
	NoticeID string `json:"noticeId,omitempty"`
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	TimeLeft int    `json:"timeLeft"`
	Secret   string `json:"secret"`
}

func PayloadFromNotice(notice domain.PendingNotice) NotifyPayload {
	return NotifyPayload{
		NoticeID: notice.ID,
		RoomID:   notice.RoomID,
		UserID:   notice.UserID,
		TimeLeft: notice.SecondsRemaining,
		Secret:   notice.Secret,
	}
}

func (p NotifyPayload) ToNotice() domain.PendingNotice {
	return domain.PendingNotice{
		ID:               p.NoticeID,
		UserID:           p.UserID,
		RoomID:           p.RoomID,
		SecondsRemaining: p.TimeLeft,
		Secret:           p.Secret,
	}
}
