// Command stacks-node-mock serves a local stand-in for a Stacks node so the
// server can run with LEDGER_BACKEND=stacks without a devnet.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stacksevents/internal/ledger"
	memoryledger "stacksevents/internal/ledger/memory"
	"stacksevents/internal/platform/logger"
	"stacksevents/internal/ticketing/seed"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr      string
		catalog   string
		delay     time.Duration
		failEvery int
		logLevel  string
	)
	cmd := &cobra.Command{
		Use:          "stacks-node-mock",
		Short:        "Serve a fake Stacks node backed by an in-memory ledger",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("text", logLevel)

			listings, err := seed.LoadFile(catalog)
			if err != nil {
				return err
			}
			chain := memoryledger.New()
			for _, l := range listings {
				chain.SetInventory(l.ID, l.RemainingSupply, l.TotalSupply)
			}
			chain.SetScript(script(delay, failEvery))

			n := &node{chain: chain, logger: log}
			srv := &http.Server{Addr: addr, Handler: n.routes(), ReadHeaderTimeout: 5 * time.Second}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			log.Info("stacks node mock listening", "addr", addr, "events", len(listings), "confirm_delay", delay)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":3999", "listen address")
	cmd.Flags().StringVar(&catalog, "catalog", "", "catalog YAML seeding on-chain inventory (default: built-in)")
	cmd.Flags().DurationVar(&delay, "confirm-delay", 3*time.Second, "time before a transaction settles")
	cmd.Flags().IntVar(&failEvery, "fail-every", 0, "abort every Nth transaction (0 disables)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	return cmd
}

// script settles transactions after delay and aborts every failEvery-th one.
func script(delay time.Duration, failEvery int) memoryledger.Script {
	var n atomic.Int64
	return func(ledger.Transaction) memoryledger.Outcome {
		out := memoryledger.Outcome{Status: ledger.TxConfirmed, Delay: delay}
		if failEvery > 0 && n.Add(1)%int64(failEvery) == 0 {
			out.Status, out.Reason = ledger.TxFailed, "post-condition failed"
		}
		return out
	}
}
