package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
)

type memoryRegistry struct {
	mu      sync.Mutex
	rooms   map[string]domain.ThrottledRoom
	readErr error
}

func newMemoryRegistry(roomIDs ...string) *memoryRegistry {
	r := &memoryRegistry{rooms: make(map[string]domain.ThrottledRoom)}
	for _, id := range roomIDs {
		r.rooms[id] = domain.ThrottledRoom{RoomID: id}
	}
	return r
}

func (r *memoryRegistry) IsThrottled(ctx context.Context, roomID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return false, r.readErr
	}
	_, ok := r.rooms[roomID]
	return ok, nil
}

func (r *memoryRegistry) Enable(ctx context.Context, room domain.Room) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; ok {
		return "", domain.ErrAlreadyEnabled
	}
	r.rooms[room.ID] = domain.ThrottledRoom{RoomID: room.ID, DisplayName: room.DisplayName}
	return room.ID, nil
}

func (r *memoryRegistry) Disable(ctx context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; !ok {
		return domain.ErrNotEnabled
	}
	delete(r.rooms, roomID)
	return nil
}

func (r *memoryRegistry) ListAll(ctx context.Context) ([]domain.ThrottledRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ThrottledRoom, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out, nil
}

func (r *memoryRegistry) DropAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = make(map[string]domain.ThrottledRoom)
	return nil
}

type memoryTimestamps struct {
	mu      sync.Mutex
	records map[[2]string]time.Time
	readErr error
}

func newMemoryTimestamps() *memoryTimestamps {
	return &memoryTimestamps{records: make(map[[2]string]time.Time)}
}

func (s *memoryTimestamps) LastMessageTime(ctx context.Context, userID, roomID string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return time.Time{}, false, s.readErr
	}
	at, ok := s.records[[2]string{userID, roomID}]
	return at, ok, nil
}

func (s *memoryTimestamps) RecordMessage(ctx context.Context, userID, roomID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[[2]string{userID, roomID}] = at
	return nil
}

func (s *memoryTimestamps) DropAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[[2]string]time.Time)
	return nil
}
