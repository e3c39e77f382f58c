package database

import (
	"fmt"

	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/utils"
	"gorm.io/gorm"
)

// uniqueSlots are the indexes that guarantee one payment and one review per
// request even when two writers race past the in-transaction check.
var uniqueSlots = []struct {
	model interface{}
	field string
}{
	{&models.Payment{}, "RequestID"},
	{&models.Review{}, "RequestID"},
}

// Migrate creates or updates the schema and verifies the unique indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	for _, slot := range uniqueSlots {
		if db.Migrator().HasIndex(slot.model, slot.field) {
			continue
		}
		if err := db.Migrator().CreateIndex(slot.model, slot.field); err != nil {
			return fmt.Errorf("failed to create unique index on %T.%s: %w", slot.model, slot.field, err)
		}
		utils.InfoLogger.Printf("Created missing unique index on %T.%s", slot.model, slot.field)
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
