package relay

import (
	"context"
	"sync"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/provider"
)

type fakePlatform struct {
	getRoomFn    func(ctx context.Context, roomID string) (*domain.Room, error)
	getUserFn    func(ctx context.Context, userID string) (*domain.User, error)
	notifyUserFn func(ctx context.Context, notice provider.DirectNotice) error

	mu       sync.Mutex
	notified []provider.DirectNotice
}

func (f *fakePlatform) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	if f.getRoomFn != nil {
		return f.getRoomFn(ctx, roomID)
	}
	return &domain.Room{ID: roomID, Type: domain.RoomTypeChannel}, nil
}

func (f *fakePlatform) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if f.getUserFn != nil {
		return f.getUserFn(ctx, userID)
	}
	return &domain.User{ID: userID}, nil
}

func (f *fakePlatform) NotifyUser(ctx context.Context, notice provider.DirectNotice) error {
	f.mu.Lock()
	f.notified = append(f.notified, notice)
	f.mu.Unlock()

	if f.notifyUserFn != nil {
		return f.notifyUserFn(ctx, notice)
	}
	return nil
}

func (f *fakePlatform) notices() []provider.DirectNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.DirectNotice(nil), f.notified...)
}

type fakeDispatcher struct {
	name   string
	sendFn func(ctx context.Context, notice domain.PendingNotice) error

	mu   sync.Mutex
	sent []domain.PendingNotice
}

func (f *fakeDispatcher) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeDispatcher) Send(ctx context.Context, notice domain.PendingNotice) error {
	f.mu.Lock()
	f.sent = append(f.sent, notice)
	f.mu.Unlock()

	if f.sendFn != nil {
		return f.sendFn(ctx, notice)
	}
	return nil
}

func (f *fakeDispatcher) notices() []domain.PendingNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PendingNotice(nil), f.sent...)
}
