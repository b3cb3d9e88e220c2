package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacksevents/internal/platform/config"
	ticketinghandler "stacksevents/internal/ticketing/handler"
	wallethandler "stacksevents/internal/wallet/handler"
	"stacksevents/pkg/testutil"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	for k, v := range map[string]string{
		"DATABASE_URL":            "",
		"REDIS_URL":               "",
		"AUDIT_KAFKA_BROKERS":     "",
		"CATALOG_PATH":            "",
		"LEDGER_BACKEND":          "memory",
		"LEDGER_POLL_INTERVAL":    "10ms",
		"LEDGER_CONFIRM_TIMEOUT":  "2s",
		"WALLET_INJECTED_GLOBALS": "StacksProvider",
	} {
		t.Setenv(k, v)
	}
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	return cfg
}

func TestBuild_InMemoryWiring(t *testing.T) {
	testutil.Given(t, "a server wired with in-memory backends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a, err := build(ctx, memoryConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.NoError(t, err)
		defer a.close()
		a.start(ctx)

		testutil.When(t, "probing health", func(t *testing.T) {
			rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))

			testutil.Then(t, "it reports ok", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rr.Code)
			})
		})

		testutil.When(t, "connecting and buying two tickets for evt2", func(t *testing.T) {
			rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/wallet/connect", nil))
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			state := testutil.UnmarshalResponse[wallethandler.StateResponse](t, rr)
			require.Equal(t, "connected", state.Status)
			assert.Equal(t, devTestnetAddress, state.Address)

			rr = testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/events/evt2/purchase",
				map[string]int{"quantity": 2}))
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
			receipt := testutil.UnmarshalResponse[ticketinghandler.ReceiptResponse](t, rr)

			testutil.Then(t, "the receipt is priced in STX and the supply drops", func(t *testing.T) {
				assert.Equal(t, int64(150), receipt.Total)
				assert.Len(t, receipt.Tickets, 2)

				rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/events/evt2", nil))
				listing := testutil.UnmarshalResponse[ticketinghandler.ListingResponse](t, rr)
				assert.Equal(t, 3, listing.RemainingSupply)
			})

			testutil.Then(t, "the buyer holds the tickets", func(t *testing.T) {
				rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/tickets", nil))
				held := testutil.UnmarshalResponse[ticketinghandler.TicketsResponse](t, rr)
				assert.Equal(t, devTestnetAddress, held.Address)
				assert.Len(t, held.Tickets, 2)
			})
		})

		testutil.When(t, "buying a sold out event", func(t *testing.T) {
			rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/events/evt3/purchase", nil))

			testutil.Then(t, "it is rejected as out of inventory", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusConflict, "out_of_inventory")
			})
		})
	})
}
