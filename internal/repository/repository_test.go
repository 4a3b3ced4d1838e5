package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils/tests"
)

// sqlRecorder keeps every statement gorm builds.
type sqlRecorder struct {
	mu         sync.Mutex
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	r.statements = append(r.statements, sql)
	r.mu.Unlock()
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statements) == 0 {
		t.Fatal("no statement was built")
	}
	return r.statements[len(r.statements)-1]
}

// newDryRunDB builds statements without a database; every write affects zero rows.
func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()

	recorder := &sqlRecorder{}
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{
		DryRun: true,
		Logger: recorder,
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	return db, recorder
}

func assertContains(t *testing.T, sql string, fragments ...string) {
	t.Helper()

	for _, fragment := range fragments {
		if !strings.Contains(sql, fragment) {
			t.Fatalf("sql %q does not contain %q", sql, fragment)
		}
	}
}

func TestGormRoomRegistry_IsThrottledQueriesRoom(t *testing.T) {
	t.Parallel()

	db, recorder := newDryRunDB(t)
	registry := NewGormRoomRegistry(db)

	if _, err := registry.IsThrottled(context.Background(), "r1"); err != nil {
		t.Fatalf("IsThrottled() error = %v", err)
	}
	assertContains(t, recorder.last(t), "FROM `throttled_rooms`", `room_id = "r1"`)
}

func TestGormRoomRegistry_EnableIgnoresDuplicate(t *testing.T) {
	t.Parallel()

	db, recorder := newDryRunDB(t)
	registry := NewGormRoomRegistry(db)

	_, err := registry.Enable(context.Background(), domain.Room{ID: "r1", DisplayName: "general"})
	if !errors.Is(err, domain.ErrAlreadyEnabled) {
		t.Fatalf("Enable() error = %v, want ErrAlreadyEnabled when no row is inserted", err)
	}
	assertContains(t, recorder.last(t), "INSERT INTO `throttled_rooms`", "ON CONFLICT DO NOTHING")
}

func TestGormRoomRegistry_DisableMissingRoom(t *testing.T) {
	t.Parallel()

	db, recorder := newDryRunDB(t)
	registry := NewGormRoomRegistry(db)

	err := registry.Disable(context.Background(), "r1")
	if !errors.Is(err, domain.ErrNotEnabled) {
		t.Fatalf("Disable() error = %v, want ErrNotEnabled", err)
	}
	assertContains(t, recorder.last(t), "DELETE FROM `throttled_rooms`", `room_id = "r1"`)
}

func TestGormStores_DropAllDeletesEveryRow(t *testing.T) {
	t.Parallel()

	db, recorder := newDryRunDB(t)

	if err := NewGormRoomRegistry(db).DropAll(context.Background()); err != nil {
		t.Fatalf("registry DropAll() error = %v", err)
	}
	if sql := recorder.last(t); strings.Contains(sql, "WHERE") || !strings.Contains(sql, "DELETE FROM `throttled_rooms`") {
		t.Fatalf("registry DropAll sql = %q", sql)
	}

	if err := NewGormTimestampStore(db).DropAll(context.Background()); err != nil {
		t.Fatalf("timestamps DropAll() error = %v", err)
	}
	if sql := recorder.last(t); strings.Contains(sql, "WHERE") || !strings.Contains(sql, "DELETE FROM `last_messages`") {
		t.Fatalf("timestamps DropAll sql = %q", sql)
	}
}

func TestGormTimestampStore_RecordMessageUpsertsPair(t *testing.T) {
	t.Parallel()

	db, recorder := newDryRunDB(t)
	store := NewGormTimestampStore(db)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3*3600))
	if err := store.RecordMessage(context.Background(), "u1", "r1", at); err != nil {
		t.Fatalf("RecordMessage() error = %v", err)
	}
	assertContains(t, recorder.last(t),
		"INSERT INTO `last_messages`",
		"ON CONFLICT (`user_id`,`room_id`) DO UPDATE SET `created_at`=",
		`"2026-03-01 09:00:00"`,
	)
}

func TestGormTimestampStore_LastMessageTimeFiltersPair(t *testing.T) {
	t.Parallel()

	db, recorder := newDryRunDB(t)
	store := NewGormTimestampStore(db)

	if _, _, err := store.LastMessageTime(context.Background(), "u1", "r1"); err != nil {
		t.Fatalf("LastMessageTime() error = %v", err)
	}
	assertContains(t, recorder.last(t), "FROM `last_messages`", `user_id = "u1" AND room_id = "r1"`)
}

func TestGormSettingsRepo_SetUpsertsKey(t *testing.T) {
	t.Parallel()

	db, recorder := newDryRunDB(t)
	repo := NewGormSettingsRepo(db)

	if err := repo.Set(context.Background(), SettingSlowModeDuration, "30"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	assertContains(t, recorder.last(t),
		"INSERT INTO `app_settings`",
		"ON CONFLICT (`key`) DO UPDATE SET `value`=",
		`"Slow_Mode_Duration"`,
	)
}
