package jobs

import (
	"topup/config"
	"topup/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	Daily  = services.Daily
	Hourly = services.Hourly
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	services services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	notificationCleanupJob := NewNotificationCleanupJob(services.Notification, Hourly)
	if err := schedulerService.AddJob(notificationCleanupJob); err != nil {
		return log.Err("failed to register notification cleanup job", err)
	}
	log.Info("Registered notification cleanup job", "schedule", "hourly")

	return nil
}
