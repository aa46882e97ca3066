package app

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	LedgerMemory   = "memory"
	LedgerPostgres = "postgres"
)

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	DB               DBConfig
	Redis            RedisConfig
	Stripe           StripeConfig
	AmqpUrl          string
	Booking          BookingConfig
}

type DBConfig struct {
	Dsn          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	Url          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type StripeConfig struct {
	SecretKey string
}

type BookingConfig struct {
	LedgerBackend  string
	Currency       string
	Prices         string
	HoldTTL        time.Duration
	SweepInterval  time.Duration
	IdempotencyTTL time.Duration

	VoidMaxTries       uint
	VoidMaxElapsedTime time.Duration
}

// LoadConfig reads flags from args. Flag defaults come from the environment,
// which is seeded from an optional .env file.
func LoadConfig(args []string) (Config, bool, error) {
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("cinex-booking", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	fs.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	fs.StringVar(&cfg.DB.Dsn, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")

	fs.StringVar(&cfg.Redis.Url, "redis-url", envString("REDIS_URL", ""), "Redis URL")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", envInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", envInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", envDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")

	fs.StringVar(&cfg.Stripe.SecretKey, "stripe-key", envString("STRIPE_KEY", ""), "Stripe secret key, the mock payment authority is used when empty")
	fs.StringVar(&cfg.AmqpUrl, "amqp-url", envString("AMQP_URL", ""), "RabbitMQ URL for booking events, events are dropped when empty")

	fs.StringVar(&cfg.Booking.LedgerBackend, "ledger", envString("LEDGER_BACKEND", LedgerPostgres), "Reservation ledger backend (memory|postgres)")
	fs.StringVar(&cfg.Booking.Currency, "currency", envString("CURRENCY", "USD"), "Charge currency")
	fs.StringVar(&cfg.Booking.Prices, "prices", envString("TICKET_PRICES", ""), "Ticket prices, e.g. adult=12,child=8,senior=10")
	fs.DurationVar(&cfg.Booking.HoldTTL, "hold-ttl", envDuration("HOLD_TTL", 5*time.Minute), "Seat hold lifetime")
	fs.DurationVar(&cfg.Booking.SweepInterval, "sweep-interval", envDuration("SWEEP_INTERVAL", 30*time.Second), "Expired hold sweep interval")
	fs.DurationVar(&cfg.Booking.IdempotencyTTL, "idempotency-ttl", envDuration("IDEMPOTENCY_TTL", 24*time.Hour), "Lifetime of stored checkout responses")
	fs.UintVar(&cfg.Booking.VoidMaxTries, "void-max-tries", uint(envInt("VOID_MAX_TRIES", 6)), "Attempts to void a charge before escalating")
	fs.DurationVar(&cfg.Booking.VoidMaxElapsedTime, "void-max-elapsed", envDuration("VOID_MAX_ELAPSED", 30*time.Second), "Time budget for voiding a charge")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)
	if err != nil {
		return cfg, false, err
	}

	return cfg, *displayVersion, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return v
}
