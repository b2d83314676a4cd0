package repositories

import (
	"context"
	. "topup/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApartmentRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Apartment, error)
	List(ctx context.Context, tx *gorm.DB, ownerID *uuid.UUID) ([]*Apartment, error)
	IDsByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]uuid.UUID, error)
	Create(ctx context.Context, tx *gorm.DB, apartment *Apartment) error
	Save(ctx context.Context, tx *gorm.DB, apartment *Apartment) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) error
}

type apartmentRepository struct {
	log logger.Logger
}

func NewApartmentRepository() ApartmentRepository {
	return &apartmentRepository{
		log: logger.New("apartmentRepository"),
	}
}

func (r *apartmentRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Apartment, error) {
	log := r.log.Function("GetByID")

	apartment, err := gorm.G[*Apartment](tx).
		Preload("Owner", nil).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		if err = classify(err, "Apartment not found"); isClassified(err) {
			return nil, err
		}
		return nil, log.Err("failed to get apartment", err, "apartmentID", id)
	}

	return apartment, nil
}

func (r *apartmentRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	ownerID *uuid.UUID,
) ([]*Apartment, error) {
	log := r.log.Function("List")

	query := gorm.G[*Apartment](tx).Preload("Owner", nil).Order("name ASC")
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}

	apartments, err := query.Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list apartments", err)
	}

	return apartments, nil
}

func (r *apartmentRepository) IDsByOwner(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
) ([]uuid.UUID, error) {
	log := r.log.Function("IDsByOwner")

	var ids []uuid.UUID
	if err := tx.WithContext(ctx).
		Model(&Apartment{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, log.Err("failed to get apartment ids", err, "ownerID", ownerID)
	}

	return ids, nil
}

func (r *apartmentRepository) Create(ctx context.Context, tx *gorm.DB, apartment *Apartment) error {
	log := r.log.Function("Create")

	if err := gorm.G[Apartment](tx).Create(ctx, apartment); err != nil {
		return log.Err("failed to create apartment", err, "name", apartment.Name)
	}

	return nil
}

func (r *apartmentRepository) Save(ctx context.Context, tx *gorm.DB, apartment *Apartment) error {
	log := r.log.Function("Save")

	if err := tx.WithContext(ctx).Omit("Owner").Save(apartment).Error; err != nil {
		return log.Err("failed to save apartment", err, "apartmentID", apartment.ID)
	}

	return nil
}

func (r *apartmentRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("Delete")

	if err := tx.WithContext(ctx).Unscoped().Delete(&Apartment{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete apartment", err, "apartmentID", id)
	}

	return nil
}

func (r *apartmentRepository) DeleteByOwner(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
) error {
	log := r.log.Function("DeleteByOwner")

	if err := tx.WithContext(ctx).
		Unscoped().
		Where("owner_id = ?", ownerID).
		Delete(&Apartment{}).Error; err != nil {
		return log.Err("failed to delete apartments by owner", err, "ownerID", ownerID)
	}

	return nil
}
