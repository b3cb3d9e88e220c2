package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"stacksevents/internal/ledger"
	memoryledger "stacksevents/internal/ledger/memory"
	"stacksevents/internal/ledger/stacks"
	"stacksevents/internal/platform/config"
	platformmetrics "stacksevents/internal/platform/metrics"
	"stacksevents/internal/platform/postgres"
	platformredis "stacksevents/internal/platform/redis"
	ticketcache "stacksevents/internal/ticketing/cache"
	ticketinghandler "stacksevents/internal/ticketing/handler"
	ticketingmetrics "stacksevents/internal/ticketing/metrics"
	"stacksevents/internal/ticketing/models"
	"stacksevents/internal/ticketing/seed"
	ticketingservice "stacksevents/internal/ticketing/service"
	"stacksevents/internal/ticketing/store/directory"
	ticketstore "stacksevents/internal/ticketing/store/ticket"
	httptransport "stacksevents/internal/transport/http"
	"stacksevents/internal/wallet/detector"
	wallethandler "stacksevents/internal/wallet/handler"
	"stacksevents/internal/wallet/marker"
	walletmetrics "stacksevents/internal/wallet/metrics"
	walletmodels "stacksevents/internal/wallet/models"
	walletservice "stacksevents/internal/wallet/service"
	"stacksevents/internal/wallet/signer"
	audit "stacksevents/pkg/platform/audit"
	"stacksevents/pkg/platform/audit/publisher"
	"stacksevents/pkg/platform/audit/publishers/kafka"
	auditmemory "stacksevents/pkg/platform/audit/store/memory"
	auditpostgres "stacksevents/pkg/platform/audit/store/postgres"
	"stacksevents/pkg/platform/circuit"
)

const (
	devTestnetAddress = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
	devMainnetAddress = "SP1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
)

type app struct {
	router    http.Handler
	wallet    *walletservice.Service
	ticketing *ticketingservice.Service
	cfg       config.Config
	logger    *slog.Logger
	closers   []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// start restores a persisted wallet session and keeps the directory in step
// with the ledger until ctx ends.
func (a *app) start(ctx context.Context) {
	if _, err := a.wallet.Restore(ctx); err != nil {
		a.logger.Warn("wallet session not restored", "error", err)
	}
	if err := a.ticketing.Refresh(ctx); err != nil {
		a.logger.Warn("initial directory refresh failed", "error", err)
	}
	if a.cfg.Ticketing.RefreshInterval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(a.cfg.Ticketing.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := a.ticketing.Refresh(ctx); err != nil {
					a.logger.Warn("directory refresh failed", "error", err)
				}
			}
		}
	}()
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log}
	checks := map[string]httptransport.HealthCheck{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := platformmetrics.New(reg)
	ticketMetrics := ticketingmetrics.New(reg)

	listings, err := seed.LoadFile(cfg.Ticketing.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		if err := postgres.Migrate(ctx, cfg.Database.URL); err != nil {
			return nil, err
		}
		pool, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		checks["postgres"] = pool.Ping
	}

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		a.close()
		return nil, err
	}
	if rdb != nil {
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		checks["redis"] = rdb.Health
		rdb.RegisterPoolMetrics(reg)
	}

	auditPublisher, err := a.buildAudit(ctx, pool)
	if err != nil {
		a.close()
		return nil, err
	}

	// Stores.
	var (
		dirStore    ticketingservice.DirectoryStore
		upserter    seed.Upserter
		tickets     ticketingservice.TicketStore
		ownership   ticketingservice.OwnershipCache
		markerStore walletservice.MarkerStore
		txOpt       []ticketingservice.Option
	)
	if pool != nil {
		pg := directory.NewPostgres(pool)
		dirStore, upserter = pg, pg
		tickets = ticketstore.NewPostgres(pool)
		txOpt = append(txOpt,
			ticketingservice.WithTx(ticketingservice.NewPostgresTx(pool)),
			ticketingservice.WithSettlementStore(ticketstore.NewPostgresSettlements(pool)),
		)
	} else {
		mem := directory.NewInMemoryStore()
		dirStore, upserter = mem, mem
		tickets = ticketstore.NewInMemoryStore()
	}
	if rdb != nil {
		ownership = ticketcache.NewRedisCache(rdb.Client, cfg.Ticketing.OwnershipTTL)
		markerStore = marker.NewRedisStore(rdb.Client, cfg.Wallet.MarkerInstance)
	} else {
		ownership = ticketcache.NewInMemoryCache(cfg.Ticketing.OwnershipTTL)
		markerStore = marker.NewInMemoryStore()
	}
	if err := seed.Apply(ctx, upserter, listings); err != nil {
		a.close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	chain := buildLedger(cfg, log, listings)
	confirmer := ledger.NewConfirmer(chain,
		ledger.WithTimeout(cfg.Ledger.ConfirmTimeout),
		ledger.WithPollInterval(cfg.Ledger.PollInterval),
		ledger.WithLogger(log),
		ledger.WithObserver(ticketMetrics.ObserveConfirm),
	)

	// Wallet session.
	env := detector.NewStaticEnvironment(cfg.Wallet.InjectedGlobals...)
	appDetails := walletmodels.AppDetails{
		Name:    cfg.Wallet.AppName,
		IconURL: cfg.Wallet.AppIcon,
		Network: cfg.Wallet.Network,
	}
	a.wallet = walletservice.New(detector.New(env), signer.NewDev(devProfile(cfg)), appDetails,
		walletservice.WithLogger(log),
		walletservice.WithMetrics(walletmetrics.New(reg)),
		walletservice.WithAuditPublisher(auditPublisher),
		walletservice.WithOwnershipInvalidator(ownership),
		walletservice.WithMarkers(markerStore, marker.NewCodec(cfg.Wallet.MarkerSigningKey, cfg.Wallet.MarkerTTL)),
	)

	// Ticketing.
	opts := append([]ticketingservice.Option{
		ticketingservice.WithLogger(log),
		ticketingservice.WithMetrics(ticketMetrics),
		ticketingservice.WithAuditPublisher(auditPublisher),
		ticketingservice.WithOwnershipCache(ownership),
		ticketingservice.WithMaxPerPurchase(cfg.Ticketing.MaxTicketsPerPurchase),
	}, txOpt...)
	a.ticketing = ticketingservice.New(dirStore, tickets, a.wallet, chain, confirmer, opts...)

	a.router = httptransport.NewRouter(httptransport.Options{
		Logger:   log,
		Metrics:  httpMetrics,
		Gatherer: reg,
		Checks:   checks,
	},
		wallethandler.New(a.wallet, env, log),
		ticketinghandler.New(a.ticketing, a.wallet, log),
	)
	return a, nil
}

// buildAudit registers closers so the publisher drains before the Kafka
// sink shuts down.
func (a *app) buildAudit(ctx context.Context, pool *pgxpool.Pool) (*publisher.Publisher, error) {
	cfg, log := a.cfg, a.logger
	var store audit.Store = auditmemory.NewInMemoryStore()
	if pool != nil {
		store = auditpostgres.New(pool)
	}
	opts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
	}
	if len(cfg.Audit.KafkaBrokers) > 0 {
		sink, err := kafka.New(ctx, kafka.Config{
			Brokers: cfg.Audit.KafkaBrokers,
			Topic:   cfg.Audit.KafkaTopic,
		}, kafka.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("connect audit sink: %w", err)
		}
		a.closers = append(a.closers, sink.Close)
		opts = append(opts, publisher.WithSink(sink))
	}
	p := publisher.NewPublisher(store, opts...)
	a.closers = append(a.closers, p.Close)
	return p, nil
}

// buildLedger returns the chain boundary. The memory ledger starts with the
// catalog's supply so local and chain views agree.
func buildLedger(cfg config.Config, log *slog.Logger, listings []*models.EventListing) ledger.Ledger {
	if cfg.Ledger.Backend == "stacks" {
		return stacks.New(cfg.Ledger.NodeURL, cfg.Ledger.ContractAddress, cfg.Ledger.ContractName,
			stacks.WithHTTPClient(&http.Client{Timeout: cfg.Ledger.RequestTimeout}),
			stacks.WithBreaker(circuit.New("stacks-node",
				circuit.WithFailureThreshold(cfg.Ledger.FailureThreshold),
				circuit.WithCooldown(cfg.Ledger.BreakerCooldown),
			)),
			stacks.WithLogger(log),
		)
	}
	mem := memoryledger.New()
	for _, l := range listings {
		mem.SetInventory(l.ID, l.RemainingSupply, l.TotalSupply)
	}
	return mem
}

func devProfile(cfg config.Config) walletmodels.Profile {
	p := walletmodels.Profile{StxAddress: walletmodels.StxAddress{
		Mainnet: cfg.Wallet.DevMainnetAddress,
		Testnet: cfg.Wallet.DevTestnetAddress,
	}}
	if p.StxAddress.Mainnet == "" {
		p.StxAddress.Mainnet = devMainnetAddress
	}
	if p.StxAddress.Testnet == "" {
		p.StxAddress.Testnet = devTestnetAddress
	}
	return p
}
