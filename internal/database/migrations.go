package database

import (
	"topup/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// Models lists every table parents first so the cascade constraints resolve
// in a single AutoMigrate pass.
func Models() []any {
	return []any{
		&models.User{},
		&models.Apartment{},
		&models.CleaningShift{},
		&models.CleaningSchedule{},
		&models.Notification{},
		&models.UnavailabilityRequest{},
	}
}

var secondaryIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_cleaning_shifts_cleaner_date ON cleaning_shifts(cleaner_id, scheduled_date) WHERE status <> 'cancelled'",
	"CREATE INDEX IF NOT EXISTS idx_cleaning_shifts_completed ON cleaning_shifts(scheduled_date) WHERE status = 'completed'",
	"CREATE INDEX IF NOT EXISTS idx_unavailability_requests_dates ON unavailability_requests USING GIN (dates)",
}

// CreateIndexes creates the lookup indexes gorm tags cannot express.
func CreateIndexes(db *gorm.DB, log logger.Logger) error {
	log = log.Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	for _, indexSQL := range secondaryIndexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
