package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/vaultflow/service/secret"
)

func (a *app) secretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage encrypted API tokens referenced by config",
	}
	ref := &secret.Ref{}
	put := &cobra.Command{
		Use:   "put [value]",
		Short: "Encrypt value and store it at --url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secret.New().Secure(cmd.Context(), ref, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "stored secret at %s\n", ref.URL)
			return nil
		},
	}
	put.Flags().StringVar(&ref.URL, "url", "", "secret location (file path or afs URL)")
	put.Flags().StringVar(&ref.Key, "key", secret.DefaultKey, "encryption key URL")
	_ = put.MarkFlagRequired("url")
	cmd.AddCommand(put)
	return cmd
}
