package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/tagstream"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

const digestColumnWidth = 48

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			summaries, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list conversations: %w", err)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversations.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummaries(summaries))
			return nil
		},
	}
}

func renderSummaries(summaries []tagstream.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Turns", "Updated", "Digest"})
	for _, s := range summaries {
		tw.AppendRow(table.Row{
			s.ID,
			s.Title,
			strconv.Itoa(s.Turns),
			s.UpdatedAt.Local().Format(time.DateTime),
			strings.Join(strings.Fields(s.Digest), " "),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, WidthMax: digestColumnWidth, WidthMaxEnforcer: text.Trim},
	})
	return tw.Render()
}
