package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	wallethandler "stacksevents/internal/wallet/handler"
)

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Show or change the wallet session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			state, err := client.Wallet(ctx)
			if err != nil {
				return err
			}
			return printState(cmd, state)
		},
	}

	var globals []string
	connect := &cobra.Command{
		Use:   "connect",
		Short: "Connect a wallet; blocks until the wallet prompt is answered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			var reported []string
			if cmd.Flags().Changed("provider-global") {
				reported = globals
			}
			state, err := client.Connect(ctx, reported)
			if err != nil {
				return err
			}
			return printState(cmd, state)
		},
	}
	connect.Flags().StringSliceVar(&globals, "provider-global", nil, "injected provider global to report (repeatable)")

	disconnect := &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the wallet and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "disconnected")
			return nil
		},
	}

	cmd.AddCommand(connect, disconnect)
	return cmd
}

func printState(cmd *cobra.Command, state *wallethandler.StateResponse) error {
	return emit(cmd.OutOrStdout(), state, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "status\t%s\n", state.Status)
		if state.Address != "" {
			fmt.Fprintf(tw, "address\t%s\n", state.Address)
			fmt.Fprintf(tw, "network\t%s\n", state.Network)
			fmt.Fprintf(tw, "provider\t%s\n", state.Provider)
		}
		if state.Error != "" {
			fmt.Fprintf(tw, "error\t%s: %s\n", state.Error, state.ErrorDescription)
		}
	})
}
