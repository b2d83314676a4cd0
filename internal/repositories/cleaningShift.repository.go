package repositories

import (
	"context"
	"time"
	. "topup/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShiftFilter narrows shift listings. Zero fields are ignored.
type ShiftFilter struct {
	CleanerID    *uuid.UUID
	ApartmentID  *uuid.UUID
	ApartmentIDs []uuid.UUID
	Statuses     []ShiftStatus
	From         *time.Time
	To           *time.Time
	// Restricted limits the listing to ApartmentIDs even when it is empty.
	Restricted bool
}

// DayQuery selects non-cancelled shifts in [From, To), optionally
// leaving one shift out.
type DayQuery struct {
	From    time.Time
	To      time.Time
	Exclude *uuid.UUID
}

type ShiftRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*CleaningShift, error)
	List(ctx context.Context, tx *gorm.DB, filter ShiftFilter) ([]*CleaningShift, error)
	ActiveForApartment(ctx context.Context, tx *gorm.DB, apartmentID uuid.UUID, day DayQuery) ([]*CleaningShift, error)
	ActiveForCleaner(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID, day DayQuery) ([]*CleaningShift, error)
	InProgressForCleaner(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID) ([]*CleaningShift, error)
	Create(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error
	Save(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByCleaner(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID) error
	DeleteByApartments(ctx context.Context, tx *gorm.DB, apartmentIDs []uuid.UUID) error
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type shiftRepository struct {
	log logger.Logger
}

func NewShiftRepository() ShiftRepository {
	return &shiftRepository{
		log: logger.New("shiftRepository"),
	}
}

func (r *shiftRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*CleaningShift, error) {
	log := r.log.Function("GetByID")

	shift, err := gorm.G[*CleaningShift](tx).
		Preload("Apartment", nil).
		Preload("Cleaner", nil).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		if err = classify(err, "Shift not found"); isClassified(err) {
			return nil, err
		}
		return nil, log.Err("failed to get shift", err, "shiftID", id)
	}

	return shift, nil
}

func (r *shiftRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter ShiftFilter,
) ([]*CleaningShift, error) {
	log := r.log.Function("List")

	if filter.Restricted && len(filter.ApartmentIDs) == 0 {
		return []*CleaningShift{}, nil
	}

	query := gorm.G[*CleaningShift](tx).
		Preload("Apartment", nil).
		Preload("Cleaner", nil).
		Order("scheduled_date ASC, scheduled_start_time ASC")

	if filter.CleanerID != nil {
		query = query.Where("cleaner_id = ?", *filter.CleanerID)
	}
	if filter.ApartmentID != nil {
		query = query.Where("apartment_id = ?", *filter.ApartmentID)
	}
	if len(filter.ApartmentIDs) > 0 {
		query = query.Where("apartment_id IN ?", filter.ApartmentIDs)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		query = query.Where("scheduled_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("scheduled_date < ?", *filter.To)
	}

	shifts, err := query.Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list shifts", err)
	}

	return shifts, nil
}

func (r *shiftRepository) ActiveForApartment(
	ctx context.Context,
	tx *gorm.DB,
	apartmentID uuid.UUID,
	day DayQuery,
) ([]*CleaningShift, error) {
	log := r.log.Function("ActiveForApartment")

	shifts, err := r.activeOnDay(ctx, tx, day).
		Where("apartment_id = ?", apartmentID).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get apartment shifts", err, "apartmentID", apartmentID)
	}

	return shifts, nil
}

func (r *shiftRepository) ActiveForCleaner(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
	day DayQuery,
) ([]*CleaningShift, error) {
	log := r.log.Function("ActiveForCleaner")

	shifts, err := r.activeOnDay(ctx, tx, day).
		Where("cleaner_id = ?", cleanerID).
		Order("scheduled_start_time ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get operator shifts", err, "cleanerID", cleanerID)
	}

	return shifts, nil
}

func (r *shiftRepository) activeOnDay(
	ctx context.Context,
	tx *gorm.DB,
	day DayQuery,
) gorm.ChainInterface[*CleaningShift] {
	query := gorm.G[*CleaningShift](tx).
		Where("scheduled_date >= ? AND scheduled_date < ?", day.From, day.To).
		Where("status <> ?", ShiftCancelled)
	if day.Exclude != nil {
		query = query.Where("id <> ?", *day.Exclude)
	}
	return query
}

func (r *shiftRepository) InProgressForCleaner(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
) ([]*CleaningShift, error) {
	log := r.log.Function("InProgressForCleaner")

	shifts, err := gorm.G[*CleaningShift](tx).
		Where("cleaner_id = ? AND status = ?", cleanerID, ShiftInProgress).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get in-progress shifts", err, "cleanerID", cleanerID)
	}

	return shifts, nil
}

func (r *shiftRepository) Create(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit("Apartment", "Cleaner").Create(shift).Error; err != nil {
		if err = classify(err, ""); isClassified(err) {
			return err
		}
		return log.Err("failed to create shift", err, "apartmentID", shift.ApartmentID)
	}

	return nil
}

func (r *shiftRepository) Save(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
	log := r.log.Function("Save")

	if err := tx.WithContext(ctx).Omit("Apartment", "Cleaner").Save(shift).Error; err != nil {
		if err = classify(err, ""); isClassified(err) {
			return err
		}
		return log.Err("failed to save shift", err, "shiftID", shift.ID)
	}

	return nil
}

func (r *shiftRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("Delete")

	if err := tx.WithContext(ctx).Unscoped().Delete(&CleaningShift{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete shift", err, "shiftID", id)
	}

	return nil
}

func (r *shiftRepository) DeleteByCleaner(
	ctx context.Context,
	tx *gorm.DB,
	cleanerID uuid.UUID,
) error {
	log := r.log.Function("DeleteByCleaner")

	if err := tx.WithContext(ctx).
		Unscoped().
		Where("cleaner_id = ?", cleanerID).
		Delete(&CleaningShift{}).Error; err != nil {
		return log.Err("failed to delete shifts by operator", err, "cleanerID", cleanerID)
	}

	return nil
}

func (r *shiftRepository) DeleteByApartments(
	ctx context.Context,
	tx *gorm.DB,
	apartmentIDs []uuid.UUID,
) error {
	log := r.log.Function("DeleteByApartments")

	if len(apartmentIDs) == 0 {
		return nil
	}

	if err := tx.WithContext(ctx).
		Unscoped().
		Where("apartment_id IN ?", apartmentIDs).
		Delete(&CleaningShift{}).Error; err != nil {
		return log.Err("failed to delete shifts by apartment", err, "count", len(apartmentIDs))
	}

	return nil
}

func (r *shiftRepository) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	log := r.log.Function("DeleteAll")

	result := tx.WithContext(ctx).
		Unscoped().
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&CleaningShift{})
	if result.Error != nil {
		return 0, log.Err("failed to delete all shifts", result.Error)
	}

	return result.RowsAffected, nil
}
