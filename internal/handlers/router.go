package handlers

import (
	"topup/internal/app"
	"topup/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func newHandler(app app.App, router fiber.Router, file string) Handler {
	return Handler{
		log:        logger.New("handlers").File(file),
		router:     router,
		middleware: app.Middleware,
	}
}

func Router(router fiber.Router, app *app.App) (err error) {
	WebSocketHandler(router, app)

	if app.Config.MetricsEnabled {
		router.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := router.Group("/api", app.Middleware.Metrics())
	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()
	NewUserHandler(*app, api).Register()
	NewApartmentHandler(*app, api).Register()
	NewShiftHandler(*app, api).Register()
	NewScheduleHandler(*app, api).Register()
	NewNotificationHandler(*app, api).Register()
	NewUnavailabilityHandler(*app, api).Register()
	NewReportHandler(*app, api).Register()

	return nil
}
