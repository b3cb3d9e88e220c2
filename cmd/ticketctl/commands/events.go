package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	ticketinghandler "stacksevents/internal/ticketing/handler"
)

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events [event-id]",
		Short: "List events, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var events []ticketinghandler.ListingResponse
			if len(args) == 1 {
				e, err := client.Event(ctx, args[0])
				if err != nil {
					return err
				}
				events = append(events, *e)
			} else {
				var err error
				if events, err = client.Events(ctx); err != nil {
					return err
				}
			}
			return emit(cmd.OutOrStdout(), events, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tDATE\tPRICE\tLEFT\tSTATUS")
				for _, e := range events {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d %s\t%d/%d\t%s\n",
						e.ID, e.Name, e.Date, e.Price, e.Currency, e.RemainingSupply, e.TotalSupply, e.Availability)
				}
			})
		},
	}
}

func analyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show platform sales figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			stats, err := client.Analytics(ctx)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), stats, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "tickets sold\t%d of %d\n", stats.TicketsSold, stats.TotalSupply)
				fmt.Fprintf(tw, "sell-through\t%.1f%%\n", stats.SellThrough*100)
				fmt.Fprintf(tw, "active events\t%d\n", stats.ActiveEvents)
				fmt.Fprintf(tw, "sold out\t%d\n", stats.SoldOut)
				for currency, amount := range stats.Revenue {
					fmt.Fprintf(tw, "revenue\t%d %s\n", amount, currency)
				}
			})
		},
	}
}
