package app

import (
	"context"
	"reflect"
	"topup/config"
	"topup/internal/controllers"
	"topup/internal/database"
	"topup/internal/events"
	"topup/internal/handlers/middleware"
	"topup/internal/jobs"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events)

	repos := repositories.New(db)
	service := services.New(db, repos, config, eventBus)
	controllers := controllers.New(service, repos)

	websocket, err := websockets.New(controllers.Auth, eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(config, controllers.Auth)

	if err := jobs.RegisterAllJobs(service.Scheduler, config, service); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware,
		Websocket:   websocket,
		EventBus:    eventBus,
		Services:    service,
		Repos:       repos,
		Controllers: controllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	if config.SchedulerEnabled {
		if err := service.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := map[string]any{
		"websocket":                a.Websocket,
		"eventBus":                 a.EventBus,
		"transactionService":       a.Services.Transaction,
		"schedulerService":         a.Services.Scheduler,
		"availabilityService":      a.Services.Availability,
		"notificationService":      a.Services.Notification,
		"authService":              a.Services.Auth,
		"reportService":            a.Services.Report,
		"userRepo":                 a.Repos.User,
		"apartmentRepo":            a.Repos.Apartment,
		"shiftRepo":                a.Repos.Shift,
		"scheduleRepo":             a.Repos.Schedule,
		"notificationRepo":         a.Repos.Notification,
		"unavailabilityRepo":       a.Repos.Unavailability,
		"authController":           a.Controllers.Auth,
		"userController":           a.Controllers.User,
		"apartmentController":      a.Controllers.Apartment,
		"shiftController":          a.Controllers.Shift,
		"scheduleController":       a.Controllers.Schedule,
		"notificationController":   a.Controllers.Notification,
		"unavailabilityController": a.Controllers.Unavailability,
		"reportController":         a.Controllers.Report,
	}

	for name, check := range nilChecks {
		if isNil(check) {
			return log.ErrMsg("nil check failed: " + name)
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
