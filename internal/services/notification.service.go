package services

import (
	"context"
	"time"
	"topup/internal/events"
	"topup/internal/metrics"
	"topup/internal/models"
	"topup/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const NOTIFICATION_RETENTION = 24 * time.Hour

// Audience resolves the users a broadcast goes to.
type Audience interface {
	IDsByRole(ctx context.Context, tx *gorm.DB, role models.Role) ([]uuid.UUID, error)
}

// Notifier is what the controllers need from the notification pipeline.
type Notifier interface {
	Admins(ctx context.Context) []uuid.UUID
	Dispatch(ctx context.Context, intents []Intent) int
}

// NotificationService turns intents into stored notifications and pushes
// each one to the recipient's live connections. Delivery is best-effort:
// failures are logged and never returned to the caller.
type NotificationService struct {
	db        Transactor
	repo      repositories.NotificationRepository
	audience  Audience
	publisher events.Publisher
	log       logger.Logger
}

func NewNotificationService(
	db Transactor,
	repo repositories.NotificationRepository,
	audience Audience,
	publisher events.Publisher,
) *NotificationService {
	return &NotificationService{
		db:        db,
		repo:      repo,
		audience:  audience,
		publisher: publisher,
		log:       logger.New("NotificationService"),
	}
}

// Admins returns every admin's ID, or nil when they cannot be loaded.
func (s *NotificationService) Admins(ctx context.Context) []uuid.UUID {
	log := s.log.TraceFromContext(ctx).Function("Admins")

	ids, err := s.audience.IDsByRole(ctx, s.db.Read(ctx), models.RoleAdmin)
	if err != nil {
		log.Er("failed to load admin audience", err)
		return nil
	}
	return ids
}

// Dispatch stores and publishes every intent. One recipient failing does
// not stop the others.
func (s *NotificationService) Dispatch(ctx context.Context, intents []Intent) int {
	log := s.log.TraceFromContext(ctx).Function("Dispatch")

	delivered := 0
	for _, intent := range intents {
		notification := &models.Notification{
			UserID:         intent.RecipientID,
			Type:           intent.Type,
			Title:          intent.Title,
			Message:        intent.Message,
			RelatedShiftID: intent.RelatedShiftID,
		}

		if err := s.repo.Create(ctx, s.db.Read(ctx), notification); err != nil {
			metrics.NotificationDispatched(string(intent.Type), false)
			log.Er("failed to store notification", err,
				"recipient", intent.RecipientID,
				"type", intent.Type,
			)
			continue
		}

		metrics.NotificationDispatched(string(intent.Type), true)
		delivered++
		s.publish(ctx, notification)
	}

	return delivered
}

func (s *NotificationService) publish(ctx context.Context, notification *models.Notification) {
	if s.publisher == nil {
		return
	}

	recipient := notification.UserID
	data := map[string]any{
		"id":      notification.ID,
		"type":    notification.Type,
		"title":   notification.Title,
		"message": notification.Message,
	}
	if notification.RelatedShiftID != nil {
		data["relatedShiftId"] = notification.RelatedShiftID
	}

	if err := s.publisher.Publish(events.NOTIFICATION_CHANNEL, events.Event{
		Type:   events.NOTIFICATION_CREATED,
		UserID: &recipient,
		Data:   data,
	}); err != nil {
		s.log.TraceFromContext(ctx).Function("publish").
			Er("failed to publish notification", err, "notificationID", notification.ID)
	}
}

// PurgeRead deletes read notifications whose readAt is older than the
// retention window.
func (s *NotificationService) PurgeRead(ctx context.Context, now time.Time) (int64, error) {
	log := s.log.TraceFromContext(ctx).Function("PurgeRead")

	cutoff := now.Add(-NOTIFICATION_RETENTION)
	deleted, err := s.repo.DeleteReadBefore(ctx, s.db.Read(ctx), cutoff)
	if err != nil {
		return 0, log.Err("failed to purge read notifications", err, "cutoff", cutoff)
	}

	if deleted > 0 {
		log.Info("Purged read notifications", "count", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}
