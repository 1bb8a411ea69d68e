package commands

import (
	"github.com/spf13/cobra"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-dose-monitor/internal/presentation/interaction"
)

var (
	listSort   string
	listOrder  string
	listLimit  int
	listOutput string
)

var listCmd = &cobra.Command{
	Use:     "list [SUBJECT]",
	Aliases: []string{"ls"},
	Short:   "List recorded intakes",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listSort, "sort", "time",
		"Sort field (time, amount, subject)")
	listCmd.Flags().StringVar(&listOrder, "order", "desc",
		"Sort order (asc, desc)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0,
		"Limit result count (0 = unlimited)")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table",
		"Output format (table, json, csv, summary)")
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := formatter.NewFormatter(listOutput)
	if err != nil {
		return err
	}
	field, err := interaction.ParseSortField(listSort)
	if err != nil {
		return err
	}
	order, err := interaction.ParseSortOrder(listOrder)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(args) == 1 {
		subject, err := model.ParseSubject(args[0])
		if err != nil {
			return err
		}
		events = model.FilterBySubject(events, subject)
	}

	interaction.NewIntakeSorter().WithField(field, order).Sort(events)
	if listLimit > 0 && len(events) > listLimit {
		events = events[:listLimit]
	}
	return f.FormatIntakes(cmd.OutOrStdout(), events)
}
