package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/booking"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/events"
	"github.com/metinatakli/cinex-booking/internal/idempotency"
	"github.com/metinatakli/cinex-booking/internal/ledger"
	"github.com/metinatakli/cinex-booking/internal/payment"
	"github.com/metinatakli/cinex-booking/internal/pricing"
	"github.com/metinatakli/cinex-booking/internal/quote"
	"github.com/metinatakli/cinex-booking/internal/repository"
	"github.com/metinatakli/cinex-booking/internal/seatmap"
	appvalidator "github.com/metinatakli/cinex-booking/internal/validator"
	"github.com/metinatakli/cinex-booking/internal/vcs"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

const serviceName = "cinex-booking"

const serverWriteTimeout = 30 * time.Second

type Application struct {
	config         Config
	logger         *slog.Logger
	validator      *validator.Validate
	sessionManager *scs.SessionManager
	openapi        routers.Router

	showtimes   domain.ShowtimeRepository
	pricing     *pricing.Engine
	seatMap     *seatmap.Map
	quotes      *quote.Service
	bookings    *booking.Manager
	idempotency *idempotency.Store
	sweeper     *ledger.Sweeper
}

// Infra is the set of external connections an Application is built on.
type Infra struct {
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Publisher events.Publisher
	Authority domain.PaymentAuthority
}

func Run(args []string) error {
	cfg, displayVersion, err := LoadConfig(args)
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		return nil
	}

	textHandler := slog.NewTextHandler(os.Stdout, nil)
	logger := slog.New(textHandler)

	telemetry := &Application{config: cfg, logger: logger}

	shutdownTelemetry, err := telemetry.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(textHandler, otelslog.NewHandler(serviceName)))
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	infra := Infra{
		DB:        db,
		Redis:     redisClient,
		Publisher: events.NopPublisher{},
	}

	if cfg.AmqpUrl != "" {
		conn, err := amqp.Dial(cfg.AmqpUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		defer conn.Close()

		publisher, err := events.NewRabbitPublisher(conn)
		if err != nil {
			return err
		}
		defer publisher.Close()

		infra.Publisher = publisher
	} else {
		logger.Info("AMQP URL not set, booking events are not published")
	}

	if cfg.Stripe.SecretKey != "" {
		stripe.Key = cfg.Stripe.SecretKey
		infra.Authority = payment.NewStripePaymentAuthority(cfg.Booking.Currency)
	} else {
		logger.Warn("stripe key not set, using the mock payment authority")
		infra.Authority = payment.NewMockPaymentAuthority()
	}

	app, err := NewApp(cfg, logger, infra)
	if err != nil {
		return err
	}

	return app.serve()
}

func NewApp(cfg Config, logger *slog.Logger, infra Infra) (*Application, error) {
	prices := pricing.DefaultPriceTable()
	if cfg.Booking.Prices != "" {
		var err error

		prices, err = pricing.ParsePriceTable(cfg.Booking.Prices)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Booking.SweepInterval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}

	openapiRouter, err := newOpenAPIRouter()
	if err != nil {
		return nil, err
	}

	showtimeRepo := repository.NewPostgresShowtimeRepository(infra.DB)
	promotionRepo := repository.NewPostgresPromotionRepository(infra.DB)
	userRepo := repository.NewPostgresUserRepository(infra.DB)

	var (
		store       ledger.Store
		bookingRepo domain.BookingRepository
		paymentRepo domain.PaymentRepository
	)

	// Payments reference bookings, so both live in the ledger's backend.
	switch cfg.Booking.LedgerBackend {
	case LedgerMemory:
		memory := ledger.NewMemoryStore()
		store, bookingRepo = memory, memory
		paymentRepo = ledger.NewMemoryPayments(memory)
	case LedgerPostgres, "":
		store = repository.NewPostgresLedgerStore(infra.DB)
		bookingRepo = repository.NewPostgresBookingRepository(infra.DB)
		paymentRepo = repository.NewPostgresPaymentRepository(infra.DB)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Booking.LedgerBackend)
	}

	seatLedger := ledger.New(store, ledger.WithLogger(logger))
	engine := pricing.NewEngine(prices, promotionRepo)

	bookingCfg := booking.DefaultConfig()
	bookingCfg.HoldTTL = cfg.Booking.HoldTTL
	bookingCfg.Currency = cfg.Booking.Currency
	if cfg.Booking.VoidMaxTries > 0 {
		bookingCfg.VoidMaxTries = cfg.Booking.VoidMaxTries
	}
	if cfg.Booking.VoidMaxElapsedTime > 0 {
		bookingCfg.VoidMaxElapsedTime = cfg.Booking.VoidMaxElapsedTime
	}

	manager, err := booking.NewManager(booking.Deps{
		Showtimes:  showtimeRepo,
		Bookings:   bookingRepo,
		Payments:   paymentRepo,
		Authorizer: userRepo,
		Authority:  infra.Authority,
		Ledger:     seatLedger,
		Pricing:    engine,
		Events:     infra.Publisher,
		Logger:     logger,
	}, bookingCfg)
	if err != nil {
		return nil, err
	}

	return &Application{
		config:         cfg,
		logger:         logger,
		validator:      appvalidator.NewValidator(),
		sessionManager: NewSessionManager(infra.Redis),
		openapi:        openapiRouter,
		showtimes:      showtimeRepo,
		pricing:        engine,
		seatMap:        seatmap.New(seatLedger),
		quotes:         quote.NewService(showtimeRepo, seatLedger, engine, seatLedger.Now),
		bookings:       manager,
		idempotency:    idempotency.NewStore(infra.Redis, cfg.Booking.IdempotencyTTL, idempotencyLockTTL(bookingCfg)),
		sweeper:        ledger.NewSweeper(seatLedger, cfg.Booking.SweepInterval, logger),
	}, nil
}

// idempotencyLockTTL outlives the longest checkout: a request that used up
// the write timeout and then the whole charge retry budget.
func idempotencyLockTTL(cfg booking.Config) time.Duration {
	return serverWriteTimeout + cfg.VoidMaxElapsedTime
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Url,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to instrument redis client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.Dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

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

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: serverWriteTimeout,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	go app.sweeper.Run(sweepCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		stopSweeper()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server",
		"addr", srv.Addr,
		"env", app.config.Env,
		"ledger", app.config.Booking.LedgerBackend,
		"hold_ttl", app.config.Booking.HoldTTL)

	err := srv.ListenAndServe()
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
