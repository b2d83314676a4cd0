package controllers

import (
	"topup/internal/repositories"
	"topup/internal/services"

	apartmentController "topup/internal/controllers/apartments"
	authController "topup/internal/controllers/auth"
	notificationController "topup/internal/controllers/notifications"
	reportController "topup/internal/controllers/reports"
	scheduleController "topup/internal/controllers/schedules"
	shiftController "topup/internal/controllers/shifts"
	unavailabilityController "topup/internal/controllers/unavailability"
	userController "topup/internal/controllers/users"
)

type Controllers struct {
	Auth           authController.AuthControllerInterface
	User           userController.UserControllerInterface
	Apartment      apartmentController.ApartmentControllerInterface
	Shift          shiftController.ShiftControllerInterface
	Schedule       scheduleController.ScheduleControllerInterface
	Notification   notificationController.NotificationControllerInterface
	Unavailability unavailabilityController.UnavailabilityControllerInterface
	Report         reportController.ReportControllerInterface
}

func New(services services.Service, repos repositories.Repository) Controllers {
	return Controllers{
		Auth:           authController.New(repos, services),
		User:           userController.New(repos, services),
		Apartment:      apartmentController.New(repos, services),
		Shift:          shiftController.New(repos, services),
		Schedule:       scheduleController.New(repos, services),
		Notification:   notificationController.New(repos, services),
		Unavailability: unavailabilityController.New(repos, services),
		Report:         reportController.New(services),
	}
}
