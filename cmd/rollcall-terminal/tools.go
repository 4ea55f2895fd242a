package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "probe",
		Short:        "Join a network and check the endpoint's health address",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := build(os.Stdout, false)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			if !st.network.Connect(ctx) {
				return fmt.Errorf("probe: no network joined")
			}
			if !st.prober.Probe(ctx) {
				return fmt.Errorf("probe: %s unreachable", st.cfg.Endpoint)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func rosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "roster",
		Short:        "Fetch and print the roster feed as the terminal parses it",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := build(os.Stdout, false)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			if !st.network.EnsureConnected(ctx) {
				return fmt.Errorf("roster: no network joined")
			}
			n, err := st.roster.Refresh(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range st.roster.Entries() {
				fmt.Fprintf(out, "%s\t%s\n", e.UID, e.FullName())
			}
			fmt.Fprintf(out, "%d people\n", n)
			return nil
		},
	}
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "register UID FIRST [LAST]",
		Short:        "Enrol a card with the endpoint",
		Args:         cobra.RangeArgs(2, 3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := types.NormalizeUID(args[0])
			if err != nil {
				return err
			}
			last := ""
			if len(args) == 3 {
				last = args[2]
			}

			st, err := build(os.Stdout, false)
			if err != nil {
				return err
			}
			o := st.submitter.Register(cmdContext(cmd), uid, args[1], last)
			if !o.Success() {
				return fmt.Errorf("register %s: %s", uid, o.Reason())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s after %d attempt(s)\n", uid, o.Attempts)
			return nil
		},
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
