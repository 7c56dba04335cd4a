package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/osmanyildiz/cinema-booking-system/internal/booking"
	"github.com/osmanyildiz/cinema-booking-system/internal/checkout"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/osmanyildiz/cinema-booking-system/internal/lockstore"
	"github.com/osmanyildiz/cinema-booking-system/internal/mailer"
	"github.com/osmanyildiz/cinema-booking-system/internal/payment"
	"github.com/osmanyildiz/cinema-booking-system/internal/repository"
	"github.com/osmanyildiz/cinema-booking-system/internal/stream"
	"github.com/osmanyildiz/cinema-booking-system/internal/sweeper"
	appvalidator "github.com/osmanyildiz/cinema-booking-system/internal/validator"
	"github.com/osmanyildiz/cinema-booking-system/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

var (
	version = vcs.Version()
)

type application struct {
	config         config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	sessionRepo domain.SessionRepository
	catalogRepo domain.CatalogRepository
	paymentRepo domain.PaymentRepository
	bookingRepo domain.BookingRepository

	lockStore      domain.SeatLockStore
	hub            *stream.Hub
	bookingManager *booking.Manager
	orchestrator   *checkout.Orchestrator
	sweeper        *sweeper.Sweeper
}

type config struct {
	port             int
	env              string
	otelCollectorUrl string
	db               struct {
		dsn          string
		maxOpenConns int
		maxIdleTime  time.Duration
	}
	redis struct {
		url          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	stripe struct {
		secretKey  string
		successUrl string
		failureUrl string
	}
	booking struct {
		holdTTL       time.Duration
		sessionTTL    time.Duration
		paymentTTL    time.Duration
		sweepInterval time.Duration
		fee           string
		currency      string
	}
	webhookSecret string
	migrate       bool
}

func Run() error {
	var cfg config

	// Flag defaults are sourced from the environment so deployments can be
	// configured through a .env file; an explicit flag always wins.
	flag.IntVar(&cfg.port, "port", envInt("PORT", 3000), "server port")
	flag.StringVar(&cfg.env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.otelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector URL")

	flag.StringVar(&cfg.db.dsn, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.redis.url, "redis-url", envString("REDIS_URL", ""), "Redis URL")
	flag.IntVar(&cfg.redis.maxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.redis.maxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.redis.maxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.smtp.host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", envString("SMTP_SENDER", "CineBook <no-reply@cinebook.example.com>"), "SMTP sender")

	flag.StringVar(&cfg.stripe.secretKey, "stripe-key", envString("STRIPE_KEY", ""), "Stripe secret key")
	flag.StringVar(&cfg.stripe.successUrl, "stripe-success-url", envString("STRIPE_SUCCESS_URL", "https://example.com/success.html"), "Stripe payment success page")
	flag.StringVar(&cfg.stripe.failureUrl, "stripe-failure-url", envString("STRIPE_FAILURE_URL", "https://example.com/failure.html"), "Stripe payment failure page")

	flag.DurationVar(&cfg.booking.holdTTL, "hold-ttl", 10*time.Minute, "Seat hold lease duration")
	flag.DurationVar(&cfg.booking.sessionTTL, "session-ttl", 10*time.Minute, "Booking session lifetime")
	flag.DurationVar(&cfg.booking.paymentTTL, "payment-ttl", 15*time.Minute, "Hold extension during payment")
	flag.DurationVar(&cfg.booking.sweepInterval, "sweep-interval", time.Minute, "Interval between lock sweeps")
	flag.StringVar(&cfg.booking.fee, "booking-fee", "0", "Flat booking fee added to every order")
	flag.StringVar(&cfg.booking.currency, "currency", "usd", "Payment currency")

	flag.StringVar(&cfg.webhookSecret, "webhook-secret", envString("WEBHOOK_SECRET", ""), "Shared secret for payment callbacks")
	flag.BoolVar(&cfg.migrate, "migrate", false, "Run database migrations on startup")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.stripe.secretKey

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	bookingFee, err := decimal.NewFromString(cfg.booking.fee)
	if err != nil {
		return fmt.Errorf("invalid booking fee: %w", err)
	}

	validator := appvalidator.NewValidator()

	db, err := newDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.migrate {
		err = runMigrations(cfg.db.dsn)
		if err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	sessionRepo := repository.NewPostgresSessionRepository(db)
	catalogRepo := repository.NewPostgresCatalogRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	voucherValidator := repository.NewPostgresVoucherValidator(db)

	var paymentProvider domain.PaymentProvider
	if cfg.stripe.secretKey != "" {
		paymentProvider = payment.NewStripePaymentProvider(cfg.stripe.failureUrl, cfg.stripe.successUrl, cfg.booking.currency)
	} else {
		logger.Warn("stripe key not set, using mock payment provider")
		paymentProvider = payment.NewMockPaymentProvider()
	}

	smtpMailer := mailer.NewSMTPMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)

	hub := stream.NewHub(redisClient, nil, catalogRepo, bookingRepo, logger)
	lockStore := lockstore.NewRedisSeatLockStore(redisClient, hub, logger)
	hub.SetLockStore(lockStore)

	bookingManager := booking.NewManager(
		sessionRepo,
		catalogRepo,
		lockStore,
		voucherValidator,
		logger,
		cfg.booking.holdTTL,
		cfg.booking.sessionTTL,
		bookingFee,
	)

	orchestrator := checkout.NewOrchestrator(
		bookingManager,
		sessionRepo,
		lockStore,
		paymentRepo,
		bookingRepo,
		paymentProvider,
		hub,
		smtpMailer,
		logger,
		cfg.booking.paymentTTL,
		cfg.booking.currency,
	)

	app := &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      validator,
		mailer:         smtpMailer,
		sessionManager: newSessionManager(redisClient),
		sessionRepo:    sessionRepo,
		catalogRepo:    catalogRepo,
		paymentRepo:    paymentRepo,
		bookingRepo:    bookingRepo,
		lockStore:      lockStore,
		hub:            hub,
		bookingManager: bookingManager,
		orchestrator:   orchestrator,
		sweeper:        sweeper.New(lockStore, logger, cfg.booking.sweepInterval),
	}

	return app.run()
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
	}

	return fallback
}

func newSessionManager(client redis.UniversalClient) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func newRedisClient(cfg config) (redis.UniversalClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.redis.url,
		MaxIdleConns:    cfg.redis.maxIdleConns,
		MaxActiveConns:  cfg.redis.maxOpenConns,
		ConnMaxIdleTime: cfg.redis.maxIdleTime,
	})

	if cfg.otelCollectorUrl != "" {
		err := redisotel.InstrumentTracing(rdb)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.db.maxIdleTime
	config.MaxConns = int32(cfg.db.maxOpenConns)

	if cfg.otelCollectorUrl != "" {
		config.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *application) run() error {
	telemetryShutdown, err := app.initTelemetry()
	if err != nil {
		return err
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go app.sweeper.Run(sweepCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // SSE responses stay open past any write deadline
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		stopSweeper()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		telemetryShutdown(ctx)

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.env)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	if app.config.otelCollectorUrl != "" {
		r.Use(otelchi.Middleware("cinema-booking-api", otelchi.WithChiRoutes(r)))
	}
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)

	r.Get("/healthcheck", app.GetHealth)

	r.Route("/showtimes/{showtimeId}", func(r chi.Router) {
		r.Get("/seats", app.GetSeatMapByShowtime)
		r.Get("/seats/events", app.GetSeatEventsByShowtime)
		r.Post("/sessions", app.CreateSessionHandler)
	})

	r.Route("/sessions/{sessionId}", func(r chi.Router) {
		r.Get("/", app.GetSessionHandler)
		r.Put("/", app.UpdateSessionHandler)
		r.Delete("/", app.CancelSessionHandler)
		r.Post("/voucher", app.ApplyVoucherHandler)
		r.Post("/checkout", app.CheckoutHandler)
	})

	r.Post("/webhook", app.PaymentCallbackHandler)

	return r
}
