package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assess-api/internal/config"
	"github.com/gradeflow/assess-api/internal/database"
	"github.com/gradeflow/assess-api/internal/handler"
	"github.com/gradeflow/assess-api/internal/middleware"
	"github.com/gradeflow/assess-api/internal/models"
	"github.com/gradeflow/assess-api/internal/repository"
	"github.com/gradeflow/assess-api/internal/router"
	"github.com/gradeflow/assess-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Exercise{},
		&models.StudentParticipation{},
		&models.Result{},
		&models.Complaint{},
		&models.ComplaintResponse{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	responseRepo := repository.NewComplaintResponseRepository(db)
	resultRepo := repository.NewResultRepository(db)
	uow := repository.NewUnitOfWork(db)

	authz := service.NewAuthorizationService()
	eligibility := service.NewAssessmentEligibilityService()
	notifier := service.NewComplaintNotificationService(redisClient, natsConn, cfg.NotificationChannel, logger)
	lockService := service.NewComplaintLockService(complaintRepo, responseRepo, userRepo, uow, authz, cfg.ComplaintLockDuration, logger)
	resolutionService := service.NewComplaintResolutionService(responseRepo, userRepo, uow, lockService, authz, notifier, logger)
	complaintService := service.NewComplaintService(complaintRepo, resultRepo, userRepo, validate, logger)
	assessmentService := service.NewAssessmentService(resultRepo, userRepo, eligibility, authz, logger)

	complaintHandler := handler.NewComplaintHandler(complaintService, logger)
	responseHandler := handler.NewComplaintResponseHandler(lockService, resolutionService, logger)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ComplaintHandler:         complaintHandler,
		ComplaintResponseHandler: responseHandler,
		AssessmentHandler:        assessmentHandler,
		JWTMiddleware:            middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
