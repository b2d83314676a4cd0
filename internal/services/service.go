package services

import (
	"topup/config"
	"topup/internal/database"
	"topup/internal/events"
	"topup/internal/repositories"
)

type Service struct {
	Transaction  *TransactionService
	Scheduler    *SchedulerService
	Availability *AvailabilityService
	Notification *NotificationService
	Auth         *AuthService
	Report       *ReportService
}

func New(
	db database.DB,
	repos repositories.Repository,
	config config.Config,
	eventBus *events.EventBus,
) Service {
	loc := config.Location()
	transactionService := NewTransactionService(db)

	var publisher events.Publisher
	if eventBus != nil {
		publisher = eventBus
	}

	return Service{
		Transaction:  transactionService,
		Scheduler:    NewSchedulerService(loc),
		Availability: NewAvailabilityService(repos.Shift, loc),
		Notification: NewNotificationService(
			transactionService,
			repos.Notification,
			repos.User,
			publisher,
		),
		Auth:   NewAuthService(config, NewCacheRevocations(db.Cache.Session)),
		Report: NewReportService(transactionService, repos, loc),
	}
}
