package initialize

import (
	"topup/config"
	. "topup/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const CAPACITY_BATCH_SIZE = 100

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing production data")

	if err := backfillApartmentCapacity(db, log); err != nil {
		return log.Err("failed to backfill apartment capacity", err)
	}

	log.Info("Table initialization complete")
	return nil
}

// backfillApartmentCapacity recomputes the derived capacity for apartments
// imported without it. Saving runs the model hook that does the arithmetic.
func backfillApartmentCapacity(db *gorm.DB, log logger.Logger) error {
	log = log.Function("backfillApartmentCapacity")

	var updated int
	var apartments []*Apartment
	result := db.Where("calculated_max_capacity IS NULL OR calculated_max_capacity = 0").
		FindInBatches(&apartments, CAPACITY_BATCH_SIZE, func(tx *gorm.DB, batch int) error {
			for _, apartment := range apartments {
				before := apartment.CalculatedMaxCapacity
				apartment.RecalculateCapacity()
				if apartment.CalculatedMaxCapacity == before {
					continue
				}
				if err := tx.Model(apartment).
					Select("calculated_max_capacity", "max_capacity").
					Updates(apartment).Error; err != nil {
					return log.Err("failed to update apartment", err, "apartmentID", apartment.ID)
				}
				updated++
			}
			return nil
		})
	if result.Error != nil {
		return result.Error
	}

	log.Info("Apartment capacity backfilled", "updated", updated)
	return nil
}
