package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/roomescape-club/reservation-service/config"
	"github.com/roomescape-club/reservation-service/internal/handler"
	"github.com/roomescape-club/reservation-service/internal/middleware"
	"github.com/roomescape-club/reservation-service/internal/repository"
	"github.com/roomescape-club/reservation-service/internal/service"
	"github.com/roomescape-club/reservation-service/pkg/database"
	"github.com/roomescape-club/reservation-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Repositories
	reservationRepo := repository.NewReservationRepository(db)
	themeRepo := repository.NewThemeRepository(db)
	timeRepo := repository.NewTimeRepository(db)
	memberRepo := repository.NewMemberRepository(db)

	// Services
	reservationSvc := service.NewReservationService(reservationRepo, themeRepo, timeRepo, publisher)
	lookupSvc := service.NewLookupService(reservationRepo)
	scheduleSvc := service.NewScheduleService(themeRepo, timeRepo, reservationRepo)
	authSvc := service.NewAuthService(memberRepo, []byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLMin)*time.Minute)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authSvc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("failed to seed admin account: %v", err)
		}
	}

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "reservation-service"})
	})

	api := e.Group("/api/v1")
	handler.NewAuthHandler(authSvc).RegisterRoutes(api)

	authed := api.Group("", middleware.JWT([]byte(cfg.JWTSecret)))
	handler.NewReservationHandler(reservationSvc, lookupSvc).RegisterRoutes(authed)
	handler.NewScheduleHandler(scheduleSvc).RegisterRoutes(authed)

	admin := authed.Group("/admin", middleware.RequireAdmin())
	handler.NewAdminHandler(reservationSvc, lookupSvc, memberRepo).RegisterRoutes(admin)

	log.Printf("Reservation Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
