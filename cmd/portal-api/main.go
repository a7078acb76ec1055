package main

import (
	"context"
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

	_ "github.com/campushq/uniportal-api/api/swagger"
	"github.com/campushq/uniportal-api/internal/handler"
	"github.com/campushq/uniportal-api/internal/middleware"
	"github.com/campushq/uniportal-api/internal/models"
	"github.com/campushq/uniportal-api/internal/repository"
	"github.com/campushq/uniportal-api/internal/service"
	"github.com/campushq/uniportal-api/pkg/cache"
	"github.com/campushq/uniportal-api/pkg/config"
	"github.com/campushq/uniportal-api/pkg/database"
	"github.com/campushq/uniportal-api/pkg/logger"
	corsmiddleware "github.com/campushq/uniportal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/uniportal-api/pkg/middleware/requestid"
)

// @title UniPortal API
// @version 1.0.0
// @description University administration portal: sessions, roles, enrollments, grades, attendance
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

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	sessionStore := repository.NewSessionStore(redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	activitySvc := service.NewActivityService(activityRepo, service.ActivityConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
	}, logr)
	activitySvc.Start(ctx)
	defer activitySvc.Stop()

	authSvc := service.NewAuthService(userRepo, sessionStore, activitySvc, validate, logr, service.AuthConfig{
		Secret:   cfg.Session.Secret,
		Lifetime: cfg.Session.Lifetime,
		Issuer:   cfg.Session.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, userRepo, activitySvc, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, userRepo, activitySvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, teacherRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, studentRepo, activitySvc, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, enrollmentRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, enrollmentRepo, validate, logr)
	noticeSvc := service.NewNoticeService(noticeRepo, activitySvc, validate, logr)
	metricsSvc := service.NewMetricsService()
	activitySvc.UseMetrics(metricsSvc)
	authSvc.UseMetrics(metricsSvc)
	gradeSvc.UseMetrics(metricsSvc)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	noticeHandler := handler.NewNoticeHandler(noticeSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

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
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", middleware.Session(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.Session(authSvc), authHandler.Me)
	auth.PUT("/password", middleware.Session(authSvc), authHandler.ChangePassword)

	protected := api.Group("", middleware.Session(authSvc))

	students := protected.Group("/students")
	students.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), studentHandler.List)
	students.GET("/:id", middleware.Allow(string(models.RoleAdmin), string(models.RoleTeacher), "SELF"), studentHandler.Get)
	students.POST("", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(activitySvc, models.ActivityCreate, "student"), studentHandler.Create)
	students.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(activitySvc, models.ActivityUpdate, "student"), studentHandler.Update)
	students.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), studentHandler.Delete)
	students.GET("/:id/grades", middleware.Allow(string(models.RoleAdmin), string(models.RoleTeacher), string(models.RoleStudent)), gradeHandler.ListByStudent)
	students.GET("/:id/grades/export", middleware.Allow(string(models.RoleAdmin), string(models.RoleTeacher), string(models.RoleStudent)), gradeHandler.ExportTranscript)
	students.GET("/:id/attendance/summary", middleware.Allow(string(models.RoleAdmin), string(models.RoleTeacher), string(models.RoleStudent)), attendanceHandler.StudentSummary)

	teachers := protected.Group("/teachers")
	teachers.GET("", middleware.RequireRoles(models.RoleAdmin), teacherHandler.List)
	teachers.GET("/:id", middleware.Allow(string(models.RoleAdmin), "SELF"), teacherHandler.Get)
	teachers.POST("", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(activitySvc, models.ActivityCreate, "teacher"), teacherHandler.Create)
	teachers.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(activitySvc, models.ActivityUpdate, "teacher"), teacherHandler.Update)
	teachers.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), teacherHandler.Delete)

	courses := protected.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(activitySvc, models.ActivityCreate, "course"), courseHandler.Create)
	courses.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(activitySvc, models.ActivityUpdate, "course"), courseHandler.Update)
	courses.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(activitySvc, models.ActivityDelete, "course"), courseHandler.Delete)
	courses.GET("/:id/grades", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), gradeHandler.ListByOffering)

	enrollments := protected.Group("/enrollments")
	enrollments.GET("", enrollmentHandler.List)
	enrollments.GET("/:id", enrollmentHandler.Get)
	enrollments.POST("", middleware.RequireRoles(models.RoleAdmin), enrollmentHandler.Create)
	enrollments.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), enrollmentHandler.Update)
	enrollments.GET("/:id/grade", gradeHandler.GetByEnrollment)
	enrollments.GET("/:id/attendance/summary", attendanceHandler.EnrollmentSummary)

	grades := protected.Group("/grades")
	grades.PUT("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), middleware.Audit(activitySvc, models.ActivityUpdate, "grade"), gradeHandler.Upsert)

	attendance := protected.Group("/attendance")
	attendance.GET("", attendanceHandler.List)
	attendance.PUT("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), attendanceHandler.Mark)
	attendance.POST("/bulk", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), attendanceHandler.BulkMark)

	notices := protected.Group("/notices")
	notices.GET("", noticeHandler.List)
	notices.GET("/:id", noticeHandler.Get)
	notices.POST("", middleware.RequireRoles(models.RoleAdmin), noticeHandler.Create)
	notices.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), noticeHandler.Update)
	notices.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), noticeHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown error", "error", err)
	}
}
