package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/vaultflow"
)

func (a *app) decideCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [item-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, closer, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			return a.report(srv.Submit(cmd.Context(), args[0], action))
		},
	}
}

func (a *app) advanceCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [item-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, closer, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			var result *vaultflow.Result
			if action == "promote" {
				result = srv.Promote(cmd.Context(), args[0])
			} else {
				result = srv.Complete(cmd.Context(), args[0])
			}
			return a.report(result)
		},
	}
}

func (a *app) report(result *vaultflow.Result) error {
	if !result.Success {
		return errors.New(result.Reason + ": " + result.Message)
	}
	fmt.Fprintln(a.out, result.Message)
	return nil
}
