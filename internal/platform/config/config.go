package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"stacksevents/pkg/domain"
	pstrings "stacksevents/pkg/platform/strings"
)

// Config is the full process configuration built from the environment.
type Config struct {
	Server    Server
	Wallet    Wallet
	Ledger    Ledger
	Ticketing Ticketing
	Database  DatabaseConfig
	Redis     RedisConfig
	Audit     Audit
	Log       Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Wallet configures the session against the external signer.
type Wallet struct {
	Network domain.Network
	AppName string
	AppIcon string
	// InjectedGlobals is the provider globals the host environment reports,
	// e.g. "StacksProvider,XverseProviders.StacksProvider".
	InjectedGlobals  []string
	MarkerSigningKey string
	MarkerTTL        time.Duration
	// MarkerInstance scopes the Redis marker key per client process.
	MarkerInstance string
	// Dev signer profile. Used when no browser signer is attached.
	DevMainnetAddress string
	DevTestnetAddress string
}

// Ledger selects and configures the on-chain boundary.
type Ledger struct {
	// Backend is "memory" or "stacks".
	Backend          string
	NodeURL          string
	ContractAddress  string
	ContractName     string
	ConfirmTimeout   time.Duration
	PollInterval     time.Duration
	RequestTimeout   time.Duration
	FailureThreshold int
	BreakerCooldown  time.Duration
}

type Ticketing struct {
	MaxTicketsPerPurchase int
	// CatalogPath overrides the embedded seed catalog when set.
	CatalogPath     string
	OwnershipTTL    time.Duration
	RefreshInterval time.Duration
}

// DatabaseConfig enables the Postgres stores when URL is set.
type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

// RedisConfig enables the Redis cache and marker store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Audit configures the optional Kafka export of audit events.
type Audit struct {
	KafkaBrokers []string
	KafkaTopic   string
	AsyncBuffer  int
}

type Log struct {
	// Format is "json" or "text".
	Format string
	Level  string
}

const devMarkerKey = "dev-marker-key-change-in-production"

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []error
	env := envReader{errs: &errs}

	network, err := domain.ParseNetwork(env.str("NETWORK", "testnet"))
	if err != nil {
		errs = append(errs, err)
	}

	cfg := Config{
		Server: Server{
			Addr:            env.str("STACKSEVENTS_ADDR", ":8080"),
			ShutdownTimeout: env.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Wallet: Wallet{
			Network:           network,
			AppName:           env.str("WALLET_APP_NAME", "Stacks Event Tickets"),
			AppIcon:           env.str("WALLET_APP_ICON", "/logo.svg"),
			InjectedGlobals:   pstrings.SplitList(os.Getenv("WALLET_INJECTED_GLOBALS")),
			MarkerSigningKey:  env.str("WALLET_MARKER_KEY", devMarkerKey),
			MarkerTTL:         env.duration("WALLET_MARKER_TTL", 24*time.Hour),
			MarkerInstance:    os.Getenv("WALLET_MARKER_INSTANCE"),
			DevMainnetAddress: os.Getenv("WALLET_DEV_MAINNET_ADDRESS"),
			DevTestnetAddress: os.Getenv("WALLET_DEV_TESTNET_ADDRESS"),
		},
		Ledger: Ledger{
			Backend:          env.str("LEDGER_BACKEND", "memory"),
			NodeURL:          env.str("STACKS_NODE_URL", "https://api.testnet.hiro.so"),
			ContractAddress:  os.Getenv("TICKETS_CONTRACT_ADDRESS"),
			ContractName:     env.str("TICKETS_CONTRACT_NAME", "event-tickets"),
			ConfirmTimeout:   env.duration("LEDGER_CONFIRM_TIMEOUT", 2*time.Minute),
			PollInterval:     env.duration("LEDGER_POLL_INTERVAL", 2*time.Second),
			RequestTimeout:   env.duration("LEDGER_REQUEST_TIMEOUT", 10*time.Second),
			FailureThreshold: env.int("LEDGER_FAILURE_THRESHOLD", 5),
			BreakerCooldown:  env.duration("LEDGER_BREAKER_COOLDOWN", 30*time.Second),
		},
		Ticketing: Ticketing{
			MaxTicketsPerPurchase: env.int("MAX_TICKETS_PER_PURCHASE", 10),
			CatalogPath:           os.Getenv("CATALOG_PATH"),
			OwnershipTTL:          env.duration("OWNERSHIP_CACHE_TTL", 30*time.Second),
			RefreshInterval:       env.duration("DIRECTORY_REFRESH_INTERVAL", time.Minute),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(env.int("DATABASE_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     env.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: env.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  env.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  env.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: env.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Audit: Audit{
			KafkaBrokers: pstrings.SplitList(os.Getenv("AUDIT_KAFKA_BROKERS")),
			KafkaTopic:   env.str("AUDIT_KAFKA_TOPIC", "ticket-audit"),
			AsyncBuffer:  env.int("AUDIT_ASYNC_BUFFER", 256),
		},
		Log: Log{
			Format: env.str("LOG_FORMAT", "json"),
			Level:  env.str("LOG_LEVEL", "info"),
		},
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the process cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Wallet.Network != domain.NetworkMainnet && c.Wallet.Network != domain.NetworkTestnet {
		errs = append(errs, fmt.Errorf("NETWORK must be mainnet or testnet, got %q", c.Wallet.Network))
	}
	if c.Wallet.MarkerSigningKey == "" {
		errs = append(errs, errors.New("WALLET_MARKER_KEY must not be empty"))
	}
	if c.Wallet.MarkerTTL <= 0 {
		errs = append(errs, errors.New("WALLET_MARKER_TTL must be positive"))
	}
	switch c.Ledger.Backend {
	case "memory":
	case "stacks":
		if c.Ledger.NodeURL == "" {
			errs = append(errs, errors.New("STACKS_NODE_URL is required for the stacks ledger"))
		}
		if c.Ledger.ContractAddress == "" {
			errs = append(errs, errors.New("TICKETS_CONTRACT_ADDRESS is required for the stacks ledger"))
		}
	default:
		errs = append(errs, fmt.Errorf("LEDGER_BACKEND must be memory or stacks, got %q", c.Ledger.Backend))
	}
	if c.Ledger.ConfirmTimeout <= 0 {
		errs = append(errs, errors.New("LEDGER_CONFIRM_TIMEOUT must be positive"))
	}
	if c.Ledger.PollInterval <= 0 {
		errs = append(errs, errors.New("LEDGER_POLL_INTERVAL must be positive"))
	}
	if c.Ticketing.MaxTicketsPerPurchase < 1 {
		errs = append(errs, errors.New("MAX_TICKETS_PER_PURCHASE must be at least 1"))
	}
	if c.Ticketing.OwnershipTTL < 0 {
		errs = append(errs, errors.New("OWNERSHIP_CACHE_TTL must not be negative"))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// IsDevMarkerKey reports whether the built-in development marker key is in use.
func (c Config) IsDevMarkerKey() bool {
	return c.Wallet.MarkerSigningKey == devMarkerKey
}

type envReader struct {
	errs *[]error
}

func (e envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e envReader) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
