package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workpulse/hr-backend-go/internal/config"
	appHTTP "github.com/workpulse/hr-backend-go/internal/handler/http"
	"github.com/workpulse/hr-backend-go/internal/pkg/cron"
	"github.com/workpulse/hr-backend-go/internal/pkg/database"
	"github.com/workpulse/hr-backend-go/internal/pkg/jwt"
	"github.com/workpulse/hr-backend-go/internal/repository/postgresql"
	attendanceService "github.com/workpulse/hr-backend-go/internal/service/attendance"
	leaveService "github.com/workpulse/hr-backend-go/internal/service/leave"
	notificationService "github.com/workpulse/hr-backend-go/internal/service/notification"
	"github.com/workpulse/hr-backend-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "workpulse-hr"),
	)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		logger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	staffRepo := postgresql.NewStaffRepository(db)
	businessRepo := postgresql.NewBusinessRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	txManager := postgresql.NewTransactionManager(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	resolver := shift.NewResolver(shift.Defaults{
		Timezone:   cfg.Defaults.Timezone,
		ShiftStart: cfg.Defaults.ShiftStart,
		ShiftEnd:   cfg.Defaults.ShiftEnd,
	}, logger)

	notifSvc := notificationService.NewService(notificationRepo, logger)
	balanceEngine := leaveService.NewBalanceEngine(leaveRequestRepo, staffRepo, logger)
	reconciler := leaveService.NewReconciler(attendanceRepo, notifSvc, logger)
	leaveSvc := leaveService.NewService(
		leaveRequestRepo, staffRepo, businessRepo,
		resolver, balanceEngine, reconciler,
		notifSvc, txManager, logger,
	)
	attendanceSvc := attendanceService.NewService(
		attendanceRepo, leaveRequestRepo, staffRepo, businessRepo,
		resolver, logger,
	)

	scheduler := cron.NewScheduler(logger)
	attendanceJobs := cron.NewAttendanceJobs(
		attendanceRepo, staffRepo, businessRepo, leaveRequestRepo,
		notifSvc, resolver, logger,
	)
	scheduler.AddJob("mark-absent", time.Hour, attendanceJobs.MarkAbsent)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg,
		jwtService,
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewNotificationHandler(notifSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.Int("port", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
	}
}
