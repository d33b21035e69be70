package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/vaultflow"
	"github.com/viant/vaultflow/model"
)

type draftFlags struct {
	name     string
	body     string
	bodyURL  string
	to       string
	subject  string
	platform string
	image    string
}

func (a *app) draftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Write a draft into the approval queue",
	}
	email := &draftFlags{}
	emailCmd := &cobra.Command{
		Use:   "email",
		Short: "Draft an outgoing email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email.to == "" {
				return errors.New("--to is required")
			}
			metadata := model.NewMetadata("to", email.to)
			if email.subject != "" {
				metadata.Set("subject", email.subject)
			}
			return a.draft(cmd.Context(), model.KindEmail, email, metadata)
		},
	}
	email.register(emailCmd)
	emailCmd.Flags().StringVar(&email.to, "to", "", "recipient address")
	emailCmd.Flags().StringVar(&email.subject, "subject", "", "subject line")

	social := &draftFlags{}
	socialCmd := &cobra.Command{
		Use:   "social",
		Short: "Draft a social post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metadata := model.NewMetadata("platform", social.platform)
			if social.image != "" {
				metadata.Set("image", social.image)
			}
			return a.draft(cmd.Context(), model.KindSocial, social, metadata)
		},
	}
	social.register(socialCmd)
	socialCmd.Flags().StringVar(&social.platform, "platform", "Facebook + Instagram", "target platforms")
	socialCmd.Flags().StringVar(&social.image, "image", "", "public image URL")

	cmd.AddCommand(emailCmd, socialCmd)
	return cmd
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "record base name, generated when empty")
	cmd.Flags().StringVar(&f.body, "body", "", "draft text")
	cmd.Flags().StringVar(&f.bodyURL, "body-file", "", "read draft text from a file or afs URL")
}

func (f *draftFlags) text(ctx context.Context) (string, error) {
	if f.bodyURL == "" {
		return f.body, nil
	}
	data, err := afs.New().DownloadWithURL(ctx, url.Normalize(f.bodyURL, file.Scheme))
	if err != nil {
		return "", fmt.Errorf("failed to read draft body: %w", err)
	}
	return string(data), nil
}

func (a *app) draft(ctx context.Context, kind model.Kind, flags *draftFlags, metadata *model.Metadata) error {
	body, err := flags.text(ctx)
	if err != nil {
		return err
	}
	if body == "" {
		return errors.New("draft body was empty")
	}
	srv, _, closer, err := a.service(ctx)
	if err != nil {
		return err
	}
	defer closer()
	item, err := srv.Draft(ctx, &vaultflow.DraftRequest{Kind: kind, Name: flags.name, Metadata: metadata, Body: body})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "drafted %s\n", item.ID)
	return nil
}
