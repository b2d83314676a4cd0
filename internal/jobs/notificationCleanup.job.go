package jobs

import (
	"context"
	"time"
	"topup/internal/metrics"
	"topup/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const NOTIFICATION_CLEANUP_JOB = services.NOTIFICATION_CLEANUP_JOB

type readPurger interface {
	PurgeRead(ctx context.Context, now time.Time) (int64, error)
}

// NotificationCleanupJob deletes notifications that were read more than the
// retention window ago.
type NotificationCleanupJob struct {
	notifications readPurger
	now           func() time.Time
	log           logger.Logger
	schedule      services.Schedule
}

func NewNotificationCleanupJob(
	notifications readPurger,
	schedule services.Schedule,
) *NotificationCleanupJob {
	log := logger.New("notificationCleanupJob")
	log.Info("Creating new notification cleanup job", "schedule", schedule)

	return &NotificationCleanupJob{
		notifications: notifications,
		now:           time.Now,
		log:           log,
		schedule:      schedule,
	}
}

func (j *NotificationCleanupJob) Name() string {
	return NOTIFICATION_CLEANUP_JOB
}

func (j *NotificationCleanupJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	deleted, err := j.notifications.PurgeRead(ctx, j.now())
	metrics.JobRun(j.Name(), err == nil)
	if err != nil {
		return log.Err("notification cleanup failed", err)
	}

	log.Info("Notification cleanup completed", "deleted", deleted)
	return nil
}

func (j *NotificationCleanupJob) Schedule() services.Schedule {
	return j.schedule
}
