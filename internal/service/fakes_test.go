package service

import (
	"context"
	"sync"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/provider"
	"github.com/kursadbilgin/slowmode-engine/internal/queue"
)

type fakeRoomRegistry struct {
	isThrottledFn func(ctx context.Context, roomID string) (bool, error)
	enableFn      func(ctx context.Context, room domain.Room) (string, error)
	disableFn     func(ctx context.Context, roomID string) error
	listAllFn     func(ctx context.Context) ([]domain.ThrottledRoom, error)
	dropAllFn     func(ctx context.Context) error
}

func (f *fakeRoomRegistry) IsThrottled(ctx context.Context, roomID string) (bool, error) {
	if f.isThrottledFn != nil {
		return f.isThrottledFn(ctx, roomID)
	}
	return false, nil
}

func (f *fakeRoomRegistry) Enable(ctx context.Context, room domain.Room) (string, error) {
	if f.enableFn != nil {
		return f.enableFn(ctx, room)
	}
	return room.ID, nil
}

func (f *fakeRoomRegistry) Disable(ctx context.Context, roomID string) error {
	if f.disableFn != nil {
		return f.disableFn(ctx, roomID)
	}
	return nil
}

func (f *fakeRoomRegistry) ListAll(ctx context.Context) ([]domain.ThrottledRoom, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeRoomRegistry) DropAll(ctx context.Context) error {
	if f.dropAllFn != nil {
		return f.dropAllFn(ctx)
	}
	return nil
}

type fakeTimestampStore struct {
	lastMessageTimeFn func(ctx context.Context, userID, roomID string) (time.Time, bool, error)
	recordMessageFn   func(ctx context.Context, userID, roomID string, at time.Time) error
	dropAllFn         func(ctx context.Context) error
}

func (f *fakeTimestampStore) LastMessageTime(ctx context.Context, userID, roomID string) (time.Time, bool, error) {
	if f.lastMessageTimeFn != nil {
		return f.lastMessageTimeFn(ctx, userID, roomID)
	}
	return time.Time{}, false, nil
}

func (f *fakeTimestampStore) RecordMessage(ctx context.Context, userID, roomID string, at time.Time) error {
	if f.recordMessageFn != nil {
		return f.recordMessageFn(ctx, userID, roomID, at)
	}
	return nil
}

func (f *fakeTimestampStore) DropAll(ctx context.Context) error {
	if f.dropAllFn != nil {
		return f.dropAllFn(ctx)
	}
	return nil
}

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
	return &domain.Room{ID: roomID, DisplayName: "general", Type: domain.RoomTypeChannel}, nil
}

func (f *fakePlatform) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if f.getUserFn != nil {
		return f.getUserFn(ctx, userID)
	}
	return &domain.User{ID: userID, Roles: []string{domain.RoleAdmin}}, nil
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

type dispatchCall struct {
	userID           string
	roomID           string
	secondsRemaining int
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []dispatchCall
}

func (f *fakeNotifier) Dispatch(_ context.Context, userID, roomID string, secondsRemaining int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dispatchCall{userID: userID, roomID: roomID, secondsRemaining: secondsRemaining})
}

func (f *fakeNotifier) dispatched() []dispatchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dispatchCall(nil), f.calls...)
}

type fakeSettingsRepo struct {
	getFn         func(ctx context.Context, key string) (string, bool, error)
	setFn         func(ctx context.Context, key, value string) error
	getOrCreateFn func(ctx context.Context, key, value string) (string, error)
}

func (f *fakeSettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getFn != nil {
		return f.getFn(ctx, key)
	}
	return "", false, nil
}

func (f *fakeSettingsRepo) Set(ctx context.Context, key, value string) error {
	if f.setFn != nil {
		return f.setFn(ctx, key, value)
	}
	return nil
}

func (f *fakeSettingsRepo) GetOrCreate(ctx context.Context, key, value string) (string, error) {
	if f.getOrCreateFn != nil {
		return f.getOrCreateFn(ctx, key, value)
	}
	return value, nil
}

type fakeConsumer struct {
	consumeFn func(ctx context.Context, handler queue.MessageHandler) error
}

func (f *fakeConsumer) Consume(ctx context.Context, handler queue.MessageHandler) error {
	if f.consumeFn != nil {
		return f.consumeFn(ctx, handler)
	}
	<-ctx.Done()
	return nil
}

func (f *fakeConsumer) Close() error {
	return nil
}

type fakeDeliverer struct {
	deliverFn func(ctx context.Context, notice domain.PendingNotice) error
}

func (f *fakeDeliverer) Deliver(ctx context.Context, notice domain.PendingNotice) error {
	if f.deliverFn != nil {
		return f.deliverFn(ctx, notice)
	}
	return nil
}
