package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	ticketinghandler "stacksevents/internal/ticketing/handler"
)

func buyCmd() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "buy <event-id>",
		Short: "Buy tickets with the connected wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			receipt, err := client.Purchase(ctx, args[0], quantity)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), receipt, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "tx\t%s\n", receipt.TxID)
				fmt.Fprintf(tw, "total\t%d %s\n", receipt.Total, receipt.Currency)
				for _, t := range receipt.Tickets {
					fmt.Fprintf(tw, "ticket\t%s\n", t.ID)
				}
			})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "number of tickets")
	return cmd
}

func ticketsCmd() *cobra.Command {
	var address, event string
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List tickets held by an address (default: the connected wallet)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			resp, err := client.Tickets(ctx, address, event)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), resp, func(tw *tabwriter.Writer) {
				if len(resp.Tickets) == 0 {
					fmt.Fprintf(tw, "%s holds no tickets\n", resp.Address)
					return
				}
				printTickets(tw, resp.Tickets)
			})
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "holder address")
	cmd.Flags().StringVar(&event, "event", "", "only this event")
	return cmd
}

func transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <ticket-id> <recipient>",
		Short: "Transfer a ticket from the connected wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			t, err := client.Transfer(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), t, func(tw *tabwriter.Writer) {
				printTickets(tw, []ticketinghandler.TicketResponse{*t})
			})
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <ticket-id>",
		Short: "Show a ticket's transfers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			h, err := client.History(ctx, args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), h, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "WHEN\tFROM\tTO\tTX")
				for _, r := range h.Transfers {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.TransferredAt.Format("2006-01-02 15:04"), r.From, r.To, r.TxID)
				}
			})
		},
	}
}

func txCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tx <tx-id>",
		Short: "Re-check a transaction that timed out and apply it if it landed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			tx, err := client.Transaction(ctx, args[0])
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), tx, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "tx\t%s\n", tx.TxID)
				fmt.Fprintf(tw, "status\t%s\n", tx.Status)
				if tx.Reason != "" {
					fmt.Fprintf(tw, "reason\t%s\n", tx.Reason)
				}
				if tx.Kind != "" {
					fmt.Fprintf(tw, "kind\t%s\n", tx.Kind)
				}
				if tx.Applied {
					fmt.Fprintln(tw, "applied\tyes")
				}
				for _, t := range tx.Tickets {
					fmt.Fprintf(tw, "ticket\t%s\n", t.ID)
				}
				if tx.Ticket != nil {
					fmt.Fprintf(tw, "ticket\t%s owned by %s\n", tx.Ticket.ID, tx.Ticket.Owner)
				}
			})
		},
	}
}

func printTickets(tw *tabwriter.Writer, tickets []ticketinghandler.TicketResponse) {
	fmt.Fprintln(tw, "ID\tEVENT\tOWNER\tPRICE\tTRANSFERABLE")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d %s\t%t\n", t.ID, t.EventID, t.Owner, t.Price, t.Currency, t.Transferable)
	}
}
