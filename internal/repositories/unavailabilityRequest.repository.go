package repositories

import (
	"context"
	. "topup/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UnavailabilityFilter struct {
	OperatorID *uuid.UUID
	Status     *UnavailabilityStatus
}

type UnavailabilityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, request *UnavailabilityRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*UnavailabilityRequest, error)
	List(ctx context.Context, tx *gorm.DB, filter UnavailabilityFilter) ([]*UnavailabilityRequest, error)
	Save(ctx context.Context, tx *gorm.DB, request *UnavailabilityRequest) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type unavailabilityRepository struct {
	log logger.Logger
}

func NewUnavailabilityRepository() UnavailabilityRepository {
	return &unavailabilityRepository{
		log: logger.New("unavailabilityRepository"),
	}
}

func (r *unavailabilityRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	request *UnavailabilityRequest,
) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit("Operator").Create(request).Error; err != nil {
		return log.Err("failed to create unavailability request", err, "operatorID", request.OperatorID)
	}

	return nil
}

func (r *unavailabilityRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*UnavailabilityRequest, error) {
	log := r.log.Function("GetByID")

	request, err := gorm.G[*UnavailabilityRequest](tx).
		Preload("Operator", nil).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		if err = classify(err, "Request not found"); isClassified(err) {
			return nil, err
		}
		return nil, log.Err("failed to get unavailability request", err, "requestID", id)
	}

	return request, nil
}

func (r *unavailabilityRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter UnavailabilityFilter,
) ([]*UnavailabilityRequest, error) {
	log := r.log.Function("List")

	query := gorm.G[*UnavailabilityRequest](tx).
		Preload("Operator", nil).
		Order("created_at DESC")
	if filter.OperatorID != nil {
		query = query.Where("operator_id = ?", *filter.OperatorID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	requests, err := query.Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list unavailability requests", err)
	}

	return requests, nil
}

func (r *unavailabilityRepository) Save(
	ctx context.Context,
	tx *gorm.DB,
	request *UnavailabilityRequest,
) error {
	log := r.log.Function("Save")

	if err := tx.WithContext(ctx).Omit("Operator").Save(request).Error; err != nil {
		return log.Err("failed to save unavailability request", err, "requestID", request.ID)
	}

	return nil
}

func (r *unavailabilityRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("Delete")

	if err := tx.WithContext(ctx).
		Unscoped().
		Delete(&UnavailabilityRequest{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete unavailability request", err, "requestID", id)
	}

	return nil
}
