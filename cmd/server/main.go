package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/app"
	"github.com/Freeeeeet/lingua_automation/internal/clock"
	"github.com/Freeeeeet/lingua_automation/internal/config"
	"github.com/Freeeeeet/lingua_automation/internal/controller"
	"github.com/Freeeeeet/lingua_automation/internal/controller/api"
	"github.com/Freeeeeet/lingua_automation/internal/integration"
	"github.com/Freeeeeet/lingua_automation/internal/repository"
	"github.com/Freeeeeet/lingua_automation/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting automation service",
		zap.String("environment", cfg.Environment),
		zap.Int("http_port", cfg.HTTPPort),
		zap.Bool("telegram_configured", cfg.Telegram.Token != ""),
		zap.Bool("zoom_configured", cfg.Zoom.Enabled()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	// Репозитории
	scheduleRepo := repository.NewCourseScheduleRepository(pool, logger)
	meetingRepo := repository.NewMeetingRepository(pool, logger)
	logRepo := repository.NewAutomationLogRepository(pool, logger)
	settingRepo := repository.NewSettingRepository(pool, logger)

	// Настройки и журнал
	settings := service.NewSettingsService(settingRepo, logger)
	if err := settings.Load(ctx); err != nil {
		logger.Fatal("Failed to load settings", zap.Error(err))
	}
	audit := service.NewAuditService(logRepo, logger)

	// Внешние шлюзы: реальные реализации подключаются только при наличии учётных данных
	var realMessenger service.Messenger
	var tgBot *bot.Bot
	if cfg.Telegram.Token != "" {
		tgBot, err = bot.New(cfg.Telegram.Token)
		if err != nil {
			logger.Fatal("Failed to create telegram bot", zap.Error(err))
		}
		realMessenger = integration.NewTelegramMessenger(tgBot)
	}

	var realProvider service.MeetingProvider
	if cfg.Zoom.Enabled() {
		realProvider = integration.NewZoomProvider(integration.ZoomConfig{
			AccountID:    cfg.Zoom.AccountID,
			ClientID:     cfg.Zoom.ClientID,
			ClientSecret: cfg.Zoom.ClientSecret,
			APIURL:       cfg.Zoom.APIURL,
			TokenURL:     cfg.Zoom.TokenURL,
		})
	}

	messaging := service.NewMessagingService(settings, audit,
		integration.NewSimulatedMessenger(logger), realMessenger, logger)
	meetings := service.NewMeetingService(meetingRepo, settings, audit,
		integration.NewSimulatedMeetingProvider(logger), realProvider, time.Now, logger)

	// Планировщик
	dailyHour, dailyMinute := cfg.Scheduler.DailyTime()
	weeklyDay, weeklyHour, weeklyMinute := cfg.Scheduler.WeeklyTime()

	scheduler := app.NewScheduler(app.SchedulerDeps{
		Schedules: scheduleRepo,
		Meetings:  meetings,
		Messaging: messaging,
		Settings:  settings,
		Audit:     audit,
		Cron:      app.NewCron(logger),
		Clock:     clock.System(),
	}, app.SchedulerOptions{
		DailyHour:    dailyHour,
		DailyMinute:  dailyMinute,
		WeeklyDay:    weeklyDay,
		WeeklyHour:   weeklyHour,
		WeeklyMinute: weeklyMinute,
	}, logger)

	if err := scheduler.Initialize(); err != nil {
		logger.Fatal("Failed to initialize scheduler", zap.Error(err))
	}

	// HTTP API
	handler := api.NewHandler(settings, scheduler, meetings, audit, scheduleRepo, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      api.NewRouter(handler, cfg.Environment, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// Бот с командами /chatid и /status
	if tgBot != nil {
		botController := controller.NewBotController(tgBot, scheduler, settings, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Failed to register bot commands", zap.Error(err))
		}
		go func() {
			if err := botController.Start(ctx); err != nil {
				logger.Error("Bot stopped with error", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	scheduler.Shutdown(shutdownCtx)

	logger.Info("Automation service stopped")
}
