package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"stacksevents/internal/apiclient"
	dErrors "stacksevents/pkg/domain-errors"
)

var (
	serverURL string
	timeout   time.Duration
	asJSON    bool
	client    *apiclient.Client
)

func Execute() error {
	root := newRoot()
	if err := root.Execute(); err != nil {
		if dErrors.IsAmbiguous(err) {
			fmt.Fprintln(os.Stderr, "the transaction may still confirm; check it with `ticketctl tx <tx-id>` before retrying")
		}
		return err
	}
	return nil
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "ticketctl",
		Short:         "Browse events, buy and transfer tickets from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = apiclient.New(serverURL)
			return nil
		},
	}

	def := os.Getenv("STACKSEVENTS_URL")
	if def == "" {
		def = "http://127.0.0.1:8080"
	}
	root.PersistentFlags().StringVar(&serverURL, "server", def, "stacksevents API base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "how long to wait for a response")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")

	root.AddCommand(walletCmd(), eventsCmd(), buyCmd(), ticketsCmd(), transferCmd(), historyCmd(), txCmd(), analyticsCmd())
	return root
}

// emit prints v as JSON when --json is set, otherwise calls table.
func emit(w io.Writer, v any, table func(tw *tabwriter.Writer)) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}
