package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/slowmode-engine/internal/repository"
	"gorm.io/gorm"
)

func createLastMessagesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_last_messages",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.LastMessageModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_last_messages_room_id ON last_messages (room_id)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.LastMessageModel{})
		},
	}
}
