package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "crmmvp/docs"
	"crmmvp/internal/authz"
	"crmmvp/internal/config"
	"crmmvp/internal/handlers"
	"crmmvp/internal/logging"
	"crmmvp/internal/middleware"
	"crmmvp/internal/migrations"
	"crmmvp/internal/notify"
	"crmmvp/internal/pdf"
	"crmmvp/internal/realtime"
	"crmmvp/internal/repositories"
	"crmmvp/internal/routes"
	"crmmvp/internal/services"
	"crmmvp/internal/textgen"
)

const shutdownTimeout = 15 * time.Second

// App owns the database handle and the HTTP router.
type App struct {
	cfg    *config.Config
	db     *sql.DB
	Router *gin.Engine
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database url is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// New connects to the database and wires every layer.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret (JWT_SECRET) is required")
	}
	db, err := openDB(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	feedRepo := repositories.NewFeedRepository(db)
	likeRepo := repositories.NewLikeRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	linkRepo := repositories.NewTelegramLinkRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// === Delivery channels ===
	hub := realtime.NewNotificationHub()

	var (
		emailService services.EmailService
		mailer       notify.Mailer
	)
	if cfg.Email.SMTPHost != "" {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
		mailer = emailService
	} else {
		logging.Logger.Info("[app] smtp not configured, e-mail delivery disabled")
	}

	var (
		tgSender notify.TelegramSender
		tgBot    handlers.TelegramBot
	)
	if cfg.Telegram.BotToken != "" {
		tg, err := services.NewTelegramService(cfg.Telegram.BotToken)
		if err != nil {
			logging.Logger.WithError(err).Warn("[app] telegram disabled")
		} else {
			tgSender, tgBot = tg, tg
			if err := tg.SetWebhook(cfg.Telegram.WebhookURL); err != nil {
				logging.Logger.WithError(err).Warn("[app] telegram webhook not set")
			}
		}
	}

	dispatcher := notify.NewDispatcher(hub, userRepo, mailer, tgSender)

	gen, err := textgen.New(ctx, cfg.TextGen)
	if err != nil {
		logging.Logger.WithError(err).Warn("[app] text generation disabled")
		gen = nil
	}

	// === Services ===
	tokens := authz.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	policy := services.TransitionPolicy{Strict: cfg.Tasks.StrictTransitions}

	authService := services.NewAuthService(userRepo, tokens, emailService)
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo, uow, policy)
	lifecycle := services.NewTaskLifecycle(uow, userRepo, dispatcher, policy)
	clientService := services.NewClientService(clientRepo, contactRepo, taskRepo, feedRepo)
	contactService := services.NewContactService(contactRepo)
	notificationService := services.NewNotificationService(notificationRepo, dispatcher)
	feedService := services.NewFeedService(feedRepo, likeRepo, notificationService, gen)

	// === Handlers ===
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		User:         handlers.NewUserHandler(userService),
		Task:         handlers.NewTaskHandler(taskService, lifecycle, userService, pdf.NewReportGenerator(cfg.PDF.FontPath)),
		Client:       handlers.NewClientHandler(clientService),
		Contact:      handlers.NewContactHandler(contactService),
		Feed:         handlers.NewFeedHandler(feedService),
		Notification: handlers.NewNotificationHandler(notificationService, hub),
		TextGen:      handlers.NewTextGenHandler(gen),
	}
	if tgBot != nil {
		h.Integrations = handlers.NewIntegrationsHandler(tgBot, linkRepo, userRepo, taskService)
	}

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/healthz", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupRoutes(router, tokens, h)

	return &App{cfg: cfg, db: db, Router: router}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.WithField("addr", server.Addr).Info("[app] listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Logger.Info("[app] shut down signal received")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logging.Logger.Info("[app] shut down gracefully")
	return nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Migrate applies pending schema migrations.
func Migrate(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := migrations.Apply(ctx, db)
	if err != nil {
		return err
	}
	logging.Logger.WithFields(logrus.Fields{"applied": n}).Info("[migrate] done")
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
