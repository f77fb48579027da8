package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cron "github.com/robfig/cron/v3"

	"github.com/poofware/blog-auth-service/internal/app"
	"github.com/poofware/blog-auth-service/internal/config"
	"github.com/poofware/blog-auth-service/internal/controllers"
	"github.com/poofware/blog-auth-service/internal/middleware"
	"github.com/poofware/blog-auth-service/internal/repositories"
	"github.com/poofware/blog-auth-service/internal/services"
	"github.com/poofware/blog-auth-service/internal/utils"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Logger.Fatal("Failed to load config: ", err)
	}
	utils.InitLogger(cfg.AppName, cfg.LogLevel, cfg.LogFormat)

	if cfg.RunMigrations {
		if err := app.RunMigrations(context.Background(), cfg.DBUrl); err != nil {
			utils.Logger.Fatal("Failed to run migrations: ", err)
		}
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application: ", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	userRepo := repositories.NewUserRepository(application.DB)

	registry, err := app.NewRevocationRegistry(cfg, application.DB, application.Redis)
	if err != nil {
		utils.Logger.Fatal("Failed to create revocation registry: ", err)
	}

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	hasher, err := utils.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		utils.Logger.Fatal("Invalid BCRYPT_COST: ", err)
	}

	emailOpts := utils.EmailValidatorOptions{
		CheckMX:      cfg.CheckMX,
		Timeout:      cfg.MXLookupTimeout,
		TransientTTL: cfg.MXTransientTTL,
		Resolver:     &net.Resolver{PreferGo: true},
	}
	if cfg.LDFlag_ValidateEmailWithSendGrid {
		emailOpts.Deliverability = &utils.SendGridEmailChecker{
			APIKey:  cfg.SendGridAPIKey,
			Timeout: cfg.SendGridTimeout,
		}
	}
	emailValidator := utils.NewEmailValidator(emailOpts)

	tokenService := services.NewTokenService(cfg, registry, userRepo)
	authService := services.NewAuthService(userRepo, tokenService, hasher, emailValidator)
	tokenCleanupService := services.NewTokenCleanupService(registry)

	//----------------------------------------------------------------------
	// Controllers & router
	//----------------------------------------------------------------------
	router := app.NewRouter(app.Handlers{
		Auth:          controllers.NewAuthController(authService),
		Profile:       controllers.NewProfileController(authService),
		Health:        controllers.NewHealthController(application.DB),
		Authenticator: middleware.NewBearerAuthenticator(authService),
	})

	//----------------------------------------------------------------------
	// Daily revoked-token cleanup via cron
	//----------------------------------------------------------------------
	c := cron.New()
	if _, err := c.AddFunc(cfg.CleanupSchedule, func() {
		if e := tokenCleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled token cleanup failed")
		}
	}); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule token cleanup job")
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      app.NewCORS(cfg).Handler(router),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Failed to start server: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	utils.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.WithError(err).Error("Graceful shutdown failed")
	}
}
