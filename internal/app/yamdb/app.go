package yamdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/yamdb/internal/cache"
	"github.com/magabrotheeeer/yamdb/internal/config"
	grpchealth "github.com/magabrotheeeer/yamdb/internal/grpc/health"
	authhandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/auth"
	cataloghandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/catalog"
	commentshandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/comments"
	healthhandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/health"
	reviewshandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/reviews"
	titleshandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/titles"
	usershandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/users"
	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/lib/jwt"
	"github.com/magabrotheeeer/yamdb/internal/lib/probe"
	"github.com/magabrotheeeer/yamdb/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/lib/smtp"
	"github.com/magabrotheeeer/yamdb/internal/migrations"
	"github.com/magabrotheeeer/yamdb/internal/models"
	authservice "github.com/magabrotheeeer/yamdb/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/yamdb/internal/services/catalog"
	"github.com/magabrotheeeer/yamdb/internal/services/mailer"
	reviewsservice "github.com/magabrotheeeer/yamdb/internal/services/reviews"
	titlesservice "github.com/magabrotheeeer/yamdb/internal/services/titles"
	usersservice "github.com/magabrotheeeer/yamdb/internal/services/users"
	"github.com/magabrotheeeer/yamdb/internal/storage/repository"
)

const (
	shutdownTimeout     = 15 * time.Second
	probeTimeout        = 2 * time.Second
	healthCheckInterval = 10 * time.Second
)

// App HTTP API и служба здоровья gRPC.
type App struct {
	server *http.Server
	health *grpchealth.Server
	cfg    *config.Config
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// New подключает зависимости, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.yamdb.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		cfg:    cfg,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	dispatcher, err := app.newDispatcher()
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	checks := probe.New(probeTimeout).
		Add("postgres", db).
		Add("redis", cacheRedis)
	if app.amqp != nil {
		conn := app.amqp
		checks.Add("rabbitmq", probe.Func(func(context.Context) error {
			if conn.IsClosed() {
				return amqp.ErrClosed
			}
			return nil
		}))
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker, dispatcher, cfg.Confirmation.CodeTTL, logger)
	titleService := titlesservice.New(db, cacheRedis, cfg.Cache.TitleTTL, logger)
	reviewService := reviewsservice.New(db, titleService, logger)
	userService := usersservice.New(db, titleService, logger)

	handlers := Handlers{
		Auth:       authhandler.New(logger, authService),
		Users:      usershandler.New(logger, userService),
		Categories: cataloghandler.New(logger, catalogservice.New(models.KindCategory, db, titleService, logger)),
		Genres:     cataloghandler.New(logger, catalogservice.New(models.KindGenre, db, titleService, logger)),
		Titles:     titleshandler.New(logger, titleService),
		Reviews:    reviewshandler.New(logger, reviewService),
		Comments:   commentshandler.New(logger, reviewService),
		Health:     healthhandler.New(logger, checks),
	}

	router := chi.NewRouter()
	limiter := middlewarectx.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	RegisterRoutes(router, logger, handlers, authService, limiter)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	if cfg.GRPCHealthAddress != "" {
		app.health = grpchealth.NewServer(checks, healthCheckInterval, logger)
	}
	return app, nil
}

// newDispatcher выбирает доставку кодов подтверждения по mail.mode.
func (a *App) newDispatcher() (authservice.Dispatcher, error) {
	switch a.cfg.Mail.Mode {
	case config.MailModeSMTP:
		transport := smtp.NewTransport(a.cfg.SMTP, a.logger)
		return mailer.NewSMTPSender(transport, a.cfg.Mail.From, a.logger), nil
	case config.MailModeQueue:
		conn, err := rabbitmq.Connect(a.cfg.RabbitMQ.URL, a.cfg.RabbitMQ.Retries, a.cfg.RabbitMQ.Delay)
		if err != nil {
			return nil, err
		}
		a.amqp = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.MailExchange, rabbitmq.GetMailQueues())
		if err != nil {
			return nil, err
		}
		return mailer.NewQueuePublisher(ch, a.logger), nil
	default:
		a.logger.Warn("confirmation codes are written to the log", slog.String("mail_mode", a.cfg.Mail.Mode))
		return mailer.NewLogSender(a.logger), nil
	}
}

// Run обслуживает запросы до отмены ctx, затем останавливает серверы.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	if a.health != nil {
		go func() {
			if err := a.health.ListenAndServe(healthCtx, a.cfg.GRPCHealthAddress); err != nil {
				errCh <- fmt.Errorf("grpc health: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	stopHealth()
	a.close()
	return runErr
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis client", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
