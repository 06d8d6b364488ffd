package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	funnelapp "github.com/crm/backend/internal/application/funnel"
	referralapp "github.com/crm/backend/internal/application/referral"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/referral"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/event"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/notification"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	contactRepo := persistence.NewGormContactRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	opportunityRepo := persistence.NewGormOpportunityRepository(db.DB)
	originRepo := persistence.NewGormOriginRepository(db.DB)
	programRepo := persistence.NewGormProgramRepository(db.DB)
	referralRepo := persistence.NewGormReferralRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Access control: DB-backed provider behind a redis delegation cache,
	// falling back to an in-process cache when redis is unreachable.
	var accessProvider identity.AccessProvider = persistence.NewGormAccessProvider(db.DB)
	storeFactory := cache.NewDelegationStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	delegationStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create delegation store", zap.Error(err))
	}
	accessProvider = cache.NewCachedAccessProvider(accessProvider, delegationStore, cache.DefaultDelegationTTL, log)

	// Event bus with the audit trail subscriber
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewActivityLogHandler(log))

	// Referral notifications go out by mail when SMTP is configured
	var notifier referral.Notifier
	if cfg.SMTP.Enabled {
		resolver := notification.NewProgramOwnerResolver(programRepo, contactRepo, clientRepo)
		notifier = notification.NewEmailNotifier(cfg.SMTP, resolver, log)
		log.Info("Email notifications enabled", zap.String("host", cfg.SMTP.Host))
	} else {
		notifier = notification.NewLogNotifier(log)
	}

	// Application services
	contactService := funnelapp.NewContactService(contactRepo)
	opportunityService := funnelapp.NewOpportunityService(opportunityRepo, contactRepo, clientRepo, txManager, log)
	opportunityService.SetEventPublisher(eventBus)

	contactResolver := funnelapp.NewContactResolver(contactRepo)
	programService := referralapp.NewProgramService(programRepo, referralRepo, opportunityRepo, txManager, log)
	programService.SetEventPublisher(eventBus)
	referralService := referralapp.NewReferralService(
		programRepo, referralRepo, opportunityRepo, contactRepo, clientRepo, originRepo,
		contactResolver, txManager, notifier, log,
	)
	referralService.SetEventPublisher(eventBus)

	// HTTP surface
	jwtService := auth.NewJWTService(cfg.JWT)
	authCfg := middleware.DefaultAuthConfig(jwtService)
	authCfg.AccessProvider = accessProvider
	authCfg.Logger = log

	engine, err := router.NewEngine(cfg, log, middleware.AuthMiddlewareWithConfig(authCfg))
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.NewRouter(engine).
		Register(handler.NewSystemHandler(db, log)).
		Register(handler.NewContactHandler(contactService, log)).
		Register(handler.NewOpportunityHandler(opportunityService, log)).
		Register(handler.NewProgramHandler(programService, log)).
		Register(handler.NewReferralHandler(referralService, log)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
