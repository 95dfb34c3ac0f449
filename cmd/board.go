package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vendaflow/venda-cli/pkg/funnel"
	"github.com/vendaflow/venda-cli/pkg/opportunity"
	"github.com/vendaflow/venda-cli/pkg/pipeline"
	"github.com/vendaflow/venda-cli/pkg/sla"
)

// Board command flags.
var boardFunnelID string

// NewBoardCommand creates the board command.
func NewBoardCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the pipeline board",
		Long: `Show the pipeline board for a funnel: every stage in order with its
open cards, aggregate values, and SLA state.

Cards whose stage does not belong to the selected funnel are not shown;
switch funnels with --funnel to see them.

Examples:
  # Board for the default funnel
  venda board

  # Board for the referral funnel, as JSON
  venda board --funnel indicacao --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			stores, err := deps.OpenStores(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer stores.Close()

			funnelID := boardFunnelID
			if funnelID == "" {
				funnelID = cfg.FunnelID
			}

			engine := newEngine(stores, logger)
			f, grouped, summaries, err := engine.Board(cmd.Context(), funnelID, deps.Now())
			if err != nil {
				return err
			}

			out := struct {
				Funnel *funnel.Funnel                         `json:"funnel"`
				Stages []pipeline.StageSummary                `json:"stages"`
				Cards  map[funnel.StageTag][]opportunity.Card `json:"cards"`
			}{f, summaries, grouped}

			return printOutput(cfg, out, func() {
				printBoard(f, grouped, summaries, deps)
			})
		},
	}

	cmd.Flags().StringVarP(&boardFunnelID, "funnel", "f", "", "funnel to show (default from config)")
	return cmd
}

// printBoard renders the board as text, one stage block per column.
func printBoard(f *funnel.Funnel, grouped map[funnel.StageTag][]opportunity.Card, summaries []pipeline.StageSummary, deps *Deps) {
	fmt.Printf("Funil: %s\n\n", f.Label)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, summary := range summaries {
		header := fmt.Sprintf("%s (%d)", summary.Stage.Label, summary.Count)
		if summary.TotalValue > 0 {
			header += "  " + formatBRL(summary.TotalValue)
		}
		if summary.SLA != sla.StatusOK {
			header += "  [" + strings.ToUpper(string(summary.SLA)) + "]"
		}
		fmt.Fprintln(w, header)

		for _, card := range grouped[summary.Stage.Tag] {
			res := sla.Compute(card.SLADeadline, deps.Now())
			line := fmt.Sprintf("  %s\t%s\t%s\t%s", card.ID, card.Title, formatBRL(card.Value), res.Label)
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}
