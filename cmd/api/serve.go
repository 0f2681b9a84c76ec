package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/config"
	"github.com/harentsoaR/smart-health-api/internal/database"
	"github.com/harentsoaR/smart-health-api/internal/handlers"
	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/services"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

const (
	reportQueueKey  = "smart-health:reports"
	reportQueueSize = 100
	shutdownTimeout = 30 * time.Second
)

// runServer serves until ctx is cancelled, then drains requests and workers.
func runServer(ctx context.Context) error {
	cfg, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	utils.ConfigureJWT(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	health := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return err
		}
		defer rdb.Close()
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn("REDIS_ADDR not set: throttling and caching disabled, reports use an in-process queue")
	}

	var feed services.FeedStore = services.DisabledFeed{}
	if cfg.MongoURI != "" {
		client, mdb, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer client.Disconnect(context.Background()) //nolint:errcheck
		feed = services.NewMongoFeed(mdb)
		health["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		log.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
	} else {
		log.Warn("MONGO_URI not set: in-app notification feed disabled")
	}

	users := repository.NewUserRepository(db)
	patients := repository.NewPatientRepository(db)
	doctors := repository.NewDoctorRepository(db)
	availability := repository.NewAvailabilityRepository(db)
	appointments := repository.NewAppointmentRepository(db)
	diagnoses := repository.NewDiagnosisRepository(db)
	reports := repository.NewReportRepository(db)

	notifier := services.NewNotificationService(newMailer(cfg, log), newSMSSender(cfg, log), feed, log)
	storage := services.NewLocalStorage(cfg.MediaRoot)

	var queue services.Queue
	var cache services.Cache = services.NopCache{}
	var limiter services.Limiter
	if rdb != nil {
		queue = services.NewRedisQueue(rdb, reportQueueKey, log)
		cache = services.NewRedisCache(rdb, "smart-health:")
		limiter = services.NewRedisLimiter(rdb)
	} else {
		queue = services.NewMemoryQueue(reportQueueSize, log)
	}
	generator := services.NewReportGenerator(reports, appointments, users, storage, notifier)
	dispatcher := services.NewReportDispatcher(queue, generator, reports, cfg.ReportMaxRetries, log)
	if err := dispatcher.Start(context.WithoutCancel(ctx), cfg.ReportWorkers); err != nil {
		return fmt.Errorf("start report workers: %w", err)
	}
	if n, err := dispatcher.Resume(ctx); err != nil {
		log.Warn("resume pending reports", zap.Error(err))
	} else if n > 0 {
		log.Info("resumed pending reports", zap.Int("count", n))
	}

	h := handlers.NewHandler(handlers.Deps{
		Users:          users,
		Patients:       patients,
		Doctors:        doctors,
		Availability:   availability,
		Appointments:   appointments,
		Diagnoses:      diagnoses,
		Reports:        reports,
		Notifier:       notifier,
		AI:             services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel),
		Feed:           feed,
		Cache:          cache,
		Storage:        storage,
		Jobs:           dispatcher,
		Health:         health,
		BaseURL:        cfg.PublicBaseURL,
		PageSize:       cfg.PageSize,
		DoctorCacheTTL: cfg.DoctorCacheTTL,
		Log:            log,
	})
	router, err := handlers.NewRouter(h, handlers.RouterOptions{
		Limiter:        limiter,
		AnonRate:       cfg.AnonRate,
		UserRate:       cfg.UserRate,
		AIRate:         cfg.AIRate,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Log:            log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn("report workers did not stop in time", zap.Error(err))
	}
	notifier.Wait()
	log.Info("server exited")
	return nil
}

// newMailer returns nil when SMTP credentials are missing; email is then skipped.
func newMailer(cfg *config.Config, log *zap.Logger) services.Mailer {
	if cfg.EmailUser == "" {
		log.Warn("EMAIL_HOST_USER not set: email notifications disabled")
		return nil
	}
	return services.NewSMTPMailer(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPassword, cfg.FromEmail)
}

func newSMSSender(cfg *config.Config, log *zap.Logger) services.SMSSender {
	switch cfg.SMSProvider {
	case "textbelt":
		if cfg.TextbeltAPIKey != "" {
			return services.NewTextbeltSender(cfg.TextbeltAPIKey)
		}
	case "twilio":
		if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
			return services.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
		}
	}
	log.Warn("SMS provider not configured: SMS notifications disabled", zap.String("provider", cfg.SMSProvider))
	return nil
}
