package repositories

import (
	"context"
	"time"
	. "topup/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Notification, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, notification *Notification) error
	DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type notificationRepository struct {
	log logger.Logger
}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{
		log: logger.New("notificationRepository"),
	}
}

func (r *notificationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	notification *Notification,
) error {
	log := r.log.Function("Create")

	if err := gorm.G[Notification](tx).Create(ctx, notification); err != nil {
		return log.Err(
			"failed to create notification",
			err,
			"userID", notification.UserID,
			"type", notification.Type,
		)
	}

	return nil
}

func (r *notificationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Notification, error) {
	log := r.log.Function("GetByID")

	notification, err := gorm.G[*Notification](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		if err = classify(err, "Notification not found"); isClassified(err) {
			return nil, err
		}
		return nil, log.Err("failed to get notification", err, "notificationID", id)
	}

	return notification, nil
}

func (r *notificationRepository) ListForUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	limit int,
) ([]*Notification, error) {
	log := r.log.Function("ListForUser")

	notifications, err := gorm.G[*Notification](tx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list notifications", err, "userID", userID)
	}

	return notifications, nil
}

func (r *notificationRepository) CountUnread(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) (int64, error) {
	log := r.log.Function("CountUnread")

	count, err := gorm.G[Notification](tx).
		Where("user_id = ? AND read = ?", userID, false).
		Count(ctx, "*")
	if err != nil {
		return 0, log.Err("failed to count unread notifications", err, "userID", userID)
	}

	return count, nil
}

func (r *notificationRepository) Save(
	ctx context.Context,
	tx *gorm.DB,
	notification *Notification,
) error {
	log := r.log.Function("Save")

	if err := tx.WithContext(ctx).Omit("User").Save(notification).Error; err != nil {
		return log.Err("failed to save notification", err, "notificationID", notification.ID)
	}

	return nil
}

func (r *notificationRepository) DeleteReadBefore(
	ctx context.Context,
	tx *gorm.DB,
	cutoff time.Time,
) (int64, error) {
	log := r.log.Function("DeleteReadBefore")

	result := tx.WithContext(ctx).
		Unscoped().
		Where("read = ? AND read_at < ?", true, cutoff).
		Delete(&Notification{})
	if result.Error != nil {
		return 0, log.Err("failed to delete read notifications", result.Error, "cutoff", cutoff)
	}

	return result.RowsAffected, nil
}

func (r *notificationRepository) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	log := r.log.Function("DeleteAll")

	result := tx.WithContext(ctx).
		Unscoped().
		Where("1 = 1").
		Delete(&Notification{})
	if result.Error != nil {
		return 0, log.Err("failed to delete notifications", result.Error)
	}

	return result.RowsAffected, nil
}
