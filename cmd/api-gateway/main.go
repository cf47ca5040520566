package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/lms-api/api/swagger"
	"github.com/noah-isme/lms-api/internal/handler"
	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/repository"
	"github.com/noah-isme/lms-api/internal/service"
	"github.com/noah-isme/lms-api/pkg/cache"
	"github.com/noah-isme/lms-api/pkg/config"
	"github.com/noah-isme/lms-api/pkg/database"
	"github.com/noah-isme/lms-api/pkg/jobs"
	"github.com/noah-isme/lms-api/pkg/logger"
	"github.com/noah-isme/lms-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-api/pkg/middleware/requestid"
)

// @title LMS API
// @version 0.1.0
// @description Teaching schedules, session attendance and notifications
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewAcademicClassRepository(db)
	courseRepo := repository.NewClassCourseRepository(db)
	instructorRepo := repository.NewClassInstructorRepository(db)
	scheduleRepo := repository.NewTeachingScheduleRepository(db)
	attendanceRepo := repository.NewSessionAttendanceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	studentRepo := repository.NewStudentAcademicRepository(db)
	blacklist := repository.NewTokenBlacklist(redisClient)

	var mail mailer.Mailer
	if cfg.Email.Provider == "sendgrid" && cfg.Email.SendgridKey != "" {
		mail = mailer.NewSendgrid(cfg.Email.SendgridKey, cfg.Email.FromName, cfg.Email.FromEmail)
	} else {
		mail = mailer.NewConsole(logr)
	}

	metricsSvc := service.NewMetricsService()

	// The reminder queue and the notification service reference each
	// other: the queue's handler delegates to the service built below.
	var notificationSvc *service.NotificationService
	reminderQueue := jobs.NewQueue("reminders", func(ctx context.Context, job jobs.Job) error {
		return notificationSvc.HandleEmailJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Reminders.Workers,
		BufferSize: cfg.Reminders.BufferSize,
		Logger:     logr,
	})

	if cfg.Reminders.Enabled {
		notificationSvc = service.NewNotificationService(notificationRepo, scheduleRepo, studentRepo, userRepo, mail, reminderQueue, metricsSvc, validate, logr)
	} else {
		notificationSvc = service.NewNotificationService(notificationRepo, scheduleRepo, studentRepo, userRepo, mail, nil, metricsSvc, validate, logr)
	}

	authSvc := service.NewAuthService(userRepo, blacklist, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	classSvc := service.NewAcademicClassService(classRepo, courseRepo, validate, logr)
	instructorSvc := service.NewClassInstructorService(instructorRepo, classRepo, userRepo, scheduleRepo, validate, logr)
	scheduleSvc := service.NewTeachingScheduleService(scheduleRepo, classRepo, instructorRepo, courseRepo, attendanceRepo, studentRepo, notificationSvc, validate, logr)
	attendanceSvc := service.NewSessionAttendanceService(attendanceRepo, scheduleRepo, studentRepo, userRepo, validate, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	classHandler := handler.NewAcademicClassHandler(classSvc)
	instructorHandler := handler.NewClassInstructorHandler(instructorSvc)
	scheduleHandler := handler.NewTeachingScheduleHandler(scheduleSvc)
	attendanceHandler := handler.NewSessionAttendanceHandler(attendanceSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "dependency": "postgres"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "dependency": "redis"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg.APIPrefix, authSvc, authHandler, classHandler, instructorHandler, scheduleHandler, attendanceHandler, notificationHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reminders.Enabled {
		reminderQueue.Start(ctx)
		defer reminderQueue.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

func registerRoutes(
	r *gin.Engine,
	prefix string,
	authSvc *service.AuthService,
	authHandler *handler.AuthHandler,
	classHandler *handler.AcademicClassHandler,
	instructorHandler *handler.ClassInstructorHandler,
	scheduleHandler *handler.TeachingScheduleHandler,
	attendanceHandler *handler.SessionAttendanceHandler,
	notificationHandler *handler.NotificationHandler,
) {
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor)
	admin := middleware.RequireRoles(models.RoleAdmin)

	public := r.Group(prefix)
	public.POST("/auth/login", authHandler.Login)
	public.POST("/auth/refresh", authHandler.Refresh)

	api := r.Group(prefix)
	api.Use(middleware.JWT(authSvc))

	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me)

	classes := api.Group("/academic-classes")
	classes.GET("", classHandler.List)
	classes.GET("/:id", classHandler.Get)
	classes.GET("/:id/courses", classHandler.ListCourses)
	classes.POST("", admin, classHandler.Create)
	classes.PUT("/:id", admin, classHandler.Update)
	classes.DELETE("/:id", admin, classHandler.Delete)

	assignments := api.Group("/academic-class-instructors")
	assignments.GET("/:id", instructorHandler.Get)
	assignments.GET("/class/:classId", instructorHandler.ListByClass)
	assignments.GET("/instructor/:instructorId", instructorHandler.ListByInstructor)
	assignments.POST("", admin, instructorHandler.Assign)
	assignments.PATCH("/:id", admin, instructorHandler.Update)
	assignments.DELETE("/:id", admin, instructorHandler.Remove)

	schedules := api.Group("/teaching-schedules")
	schedules.GET("", scheduleHandler.List)
	schedules.GET("/:id", scheduleHandler.Get)
	schedules.GET("/instructor/:instructorId", scheduleHandler.ListByInstructor)
	schedules.GET("/student/:studentAcademicId", scheduleHandler.ListByStudent)
	schedules.POST("", staff, scheduleHandler.Create)
	schedules.PATCH("/:id", staff, scheduleHandler.Update)
	schedules.PATCH("/:id/status", staff, scheduleHandler.UpdateStatus)
	schedules.PATCH("/:id/recording", staff, scheduleHandler.AttachRecording)
	schedules.DELETE("/:id", staff, scheduleHandler.Delete)

	attendances := api.Group("/session-attendances")
	attendances.GET("", attendanceHandler.List)
	attendances.GET("/:id", attendanceHandler.Get)
	attendances.GET("/schedule/:scheduleId/stats", attendanceHandler.ScheduleStats)
	attendances.GET("/schedule/:scheduleId/export", staff, attendanceHandler.Export)
	attendances.GET("/student/:studentAcademicId/stats", attendanceHandler.StudentStats)
	attendances.POST("", staff, attendanceHandler.Create)
	attendances.POST("/mark-attendance", attendanceHandler.MarkAttendance)
	attendances.POST("/mark-leave", attendanceHandler.MarkLeave)
	attendances.PUT("/:id", staff, attendanceHandler.Update)
	attendances.DELETE("/:id", staff, attendanceHandler.Delete)

	notifications := api.Group("/notifications")
	notifications.GET("/:id", notificationHandler.Get)
	notifications.GET("/user/:userId", notificationHandler.ListForUser)
	notifications.POST("", staff, notificationHandler.Create)
	notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
	notifications.PATCH("/user/:userId/read-all", notificationHandler.MarkAllAsRead)
	notifications.DELETE("/:id", notificationHandler.Delete)
}
