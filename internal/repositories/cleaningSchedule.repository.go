package repositories

import (
	"context"
	. "topup/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduleFilter struct {
	ApartmentIDs []uuid.UUID
	Year         *int
	Month        *int
	Restricted   bool
}

type ScheduleRepository interface {
	Get(ctx context.Context, tx *gorm.DB, apartmentID uuid.UUID, year, month int) (*CleaningSchedule, error)
	List(ctx context.Context, tx *gorm.DB, filter ScheduleFilter) ([]*CleaningSchedule, error)
	Upsert(ctx context.Context, tx *gorm.DB, schedule *CleaningSchedule) error
	Delete(ctx context.Context, tx *gorm.DB, apartmentID uuid.UUID, year, month int) error
	DeleteByApartments(ctx context.Context, tx *gorm.DB, apartmentIDs []uuid.UUID) error
}

type scheduleRepository struct {
	log logger.Logger
}

func NewScheduleRepository() ScheduleRepository {
	return &scheduleRepository{
		log: logger.New("scheduleRepository"),
	}
}

func (r *scheduleRepository) Get(
	ctx context.Context,
	tx *gorm.DB,
	apartmentID uuid.UUID,
	year, month int,
) (*CleaningSchedule, error) {
	log := r.log.Function("Get")

	schedule, err := gorm.G[*CleaningSchedule](tx).
		Where("apartment_id = ? AND year = ? AND month = ?", apartmentID, year, month).
		First(ctx)
	if err != nil {
		if err = classify(err, "Schedule not found"); isClassified(err) {
			return nil, err
		}
		return nil, log.Err("failed to get schedule", err, "apartmentID", apartmentID)
	}

	return schedule, nil
}

func (r *scheduleRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter ScheduleFilter,
) ([]*CleaningSchedule, error) {
	log := r.log.Function("List")

	if filter.Restricted && len(filter.ApartmentIDs) == 0 {
		return []*CleaningSchedule{}, nil
	}

	query := gorm.G[*CleaningSchedule](tx).
		Preload("Apartment", nil).
		Order("year ASC, month ASC")
	if len(filter.ApartmentIDs) > 0 {
		query = query.Where("apartment_id IN ?", filter.ApartmentIDs)
	}
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}

	schedules, err := query.Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list schedules", err)
	}

	return schedules, nil
}

// Upsert writes the bookings for (apartment, year, month), replacing any
// existing document for that key.
func (r *scheduleRepository) Upsert(
	ctx context.Context,
	tx *gorm.DB,
	schedule *CleaningSchedule,
) error {
	log := r.log.Function("Upsert")

	if err := tx.WithContext(ctx).
		Omit("Apartment").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "apartment_id"},
				{Name: "year"},
				{Name: "month"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"bookings", "updated_at"}),
		}).
		Create(schedule).Error; err != nil {
		return log.Err(
			"failed to upsert schedule",
			err,
			"apartmentID", schedule.ApartmentID,
			"year", schedule.Year,
			"month", schedule.Month,
		)
	}

	return nil
}

func (r *scheduleRepository) Delete(
	ctx context.Context,
	tx *gorm.DB,
	apartmentID uuid.UUID,
	year, month int,
) error {
	log := r.log.Function("Delete")

	if err := tx.WithContext(ctx).
		Unscoped().
		Where("apartment_id = ? AND year = ? AND month = ?", apartmentID, year, month).
		Delete(&CleaningSchedule{}).Error; err != nil {
		return log.Err("failed to delete schedule", err, "apartmentID", apartmentID)
	}

	return nil
}

func (r *scheduleRepository) DeleteByApartments(
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
		Delete(&CleaningSchedule{}).Error; err != nil {
		return log.Err("failed to delete schedules", err, "count", len(apartmentIDs))
	}

	return nil
}
