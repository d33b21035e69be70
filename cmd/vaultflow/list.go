package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/viant/vaultflow/model"
)

func (a *app) listCmd() *cobra.Command {
	var stages []string
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List vault items",
		RunE: func(cmd *cobra.Command, args []string) error {
			var selected []model.Stage
			for _, value := range stages {
				aStage, err := model.ParseStage(value)
				if err != nil {
					return err
				}
				selected = append(selected, aStage)
			}
			srv, _, closer, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			items, err := srv.Items(cmd.Context(), selected...)
			if err != nil {
				return err
			}
			if asJSON {
				return encodeJSON(a, items)
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTAGE\tCREATED\tSUMMARY")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.ID, item.Stage, item.Created(), describe(item))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&stages, "stage", []string{string(model.StagePendingApproval)}, "stages to list: needs_action, pending, approved, rejected, done")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print items as JSON")
	return cmd
}

func (a *app) countCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of items awaiting approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, closer, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			if !verbose {
				count, err := srv.PendingCount(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, count)
				return nil
			}
			summary, err := srv.Summary(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STAGE\tKIND\tCOUNT")
			for _, count := range summary.Counts {
				fmt.Fprintf(w, "%s\t%s\t%d\n", count.Stage, count.Kind, count.Count)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print counts per stage directory")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [item-id]",
		Short: "Show recorded decisions of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, closer, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			entries, err := srv.History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DECIDED\tACTION\tFROM\tTO\tOUTCOME\tDETAIL")
			for _, entry := range entries {
				detail := entry.ExternalID
				if entry.Reason != "" {
					detail = entry.Reason
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", entry.DecidedAt.Format("2006-01-02 15:04:05"), entry.Action, entry.FromStage, entry.ToStage, entry.Outcome, detail)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	return cmd
}

func describe(item *model.Item) string {
	switch {
	case item.Email != nil:
		return "to " + item.Email.To + ": " + item.Email.Subject
	case item.Social != nil:
		return strings.Join(item.Social.Platforms, ", ") + ": " + firstLine(item.Body)
	case item.WhatsApp != nil:
		return "from " + item.WhatsApp.From + ": " + firstLine(item.Body)
	}
	return firstLine(item.Body)
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line
}

func encodeJSON(a *app, v interface{}) error {
	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
