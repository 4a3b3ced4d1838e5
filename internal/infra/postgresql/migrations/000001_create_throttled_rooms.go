package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/slowmode-engine/internal/repository"
	"gorm.io/gorm"
)

func createThrottledRoomsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_throttled_rooms",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.ThrottledRoomModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ThrottledRoomModel{})
		},
	}
}
