package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vendaflow/venda-cli/pkg/funnel"
	"github.com/vendaflow/venda-cli/pkg/logging"
)

// Funnel command flags.
var (
	funnelStageLabel string
	funnelStageSLA   int
	funnelStagePos   int
)

// NewFunnelCommand creates the funnel command group.
func NewFunnelCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "funnel",
		Short: "Manage funnel definitions",
		Long: `Manage funnel definitions: the ordered stages cards move through.

A funnel carries at most 10 stages and stage labels are capped at 30
characters. The default funnel cannot be deleted.`,
	}

	cmd.AddCommand(newFunnelListCommand(deps))
	cmd.AddCommand(newFunnelShowCommand(deps))
	cmd.AddCommand(newFunnelAddStageCommand(deps))
	cmd.AddCommand(newFunnelRenameStageCommand(deps))
	cmd.AddCommand(newFunnelMoveStageCommand(deps))
	cmd.AddCommand(newFunnelDeleteStageCommand(deps))
	cmd.AddCommand(newFunnelDeleteCommand(deps))
	return cmd
}

func newFunnelListCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List funnels",
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

			funnels, err := stores.Registry.ListFunnels(cmd.Context())
			if err != nil {
				return err
			}

			return printOutput(cfg, funnels, func() {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNOME\tESTAGIOS\tPADRAO")
				for _, f := range funnels {
					def := ""
					if f.Default {
						def = "sim"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.ID, f.Label, len(f.Stages), def)
				}
				w.Flush()
			})
		},
	}
}

func newFunnelShowCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <funnel-id>",
		Short: "Show a funnel's stages",
		Args:  cobra.ExactArgs(1),
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

			f, err := stores.Registry.GetFunnel(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printOutput(cfg, f, func() {
				fmt.Printf("%s (%s)\n", f.Label, f.ID)
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "  #\tESTAGIO\tTAG\tSLA")
				for i, s := range f.Stages {
					slaCol := "-"
					if s.SLAHours > 0 {
						slaCol = fmt.Sprintf("%dh", s.SLAHours)
					}
					fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", i+1, s.Label, s.Tag, slaCol)
				}
				w.Flush()
			})
		},
	}
}

// withEditor runs fn against the funnel editor, then prints the updated funnel.
func withEditor(ctx context.Context, deps *Deps, funnelID string, fn func(*Stores) error) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	stores, err := deps.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	if err := fn(stores); err != nil {
		return err
	}
	invalidateFunnelCache(ctx, stores, funnelID, logger)

	f, err := stores.Registry.GetFunnel(ctx, funnelID)
	if err != nil {
		return err
	}
	return printOutput(cfg, f, func() {
		fmt.Printf("Funil %s atualizado (%d estagios)\n", f.ID, len(f.Stages))
	})
}

// invalidateFunnelCache drops the cached entry after an edit so other readers
// converge before the TTL expires. A failure only delays convergence.
func invalidateFunnelCache(ctx context.Context, stores *Stores, funnelID string, logger logging.Logger) {
	cache, ok := stores.Registry.(*funnel.Cache)
	if !ok {
		return
	}
	if err := cache.Invalidate(ctx, funnelID); err != nil {
		logger.Warn("funnel cache invalidation failed",
			logging.F("funnel", funnelID), logging.Err(err))
	}
}

func newFunnelAddStageCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-stage <funnel-id> <stage-tag>",
		Short: "Append a stage to a funnel",
		Long: `Append a stage to a funnel.

Examples:
  venda funnel add-stage comercial pos-venda --label "Pos-venda" --sla 72`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd.Context(), deps, args[0], func(stores *Stores) error {
				label := funnelStageLabel
				if label == "" {
					label = args[1]
				}
				return stores.Editor.AddStage(cmd.Context(), args[0], funnel.Stage{
					Tag:      funnel.StageTag(args[1]),
					Label:    label,
					SLAHours: funnelStageSLA,
				})
			})
		},
	}

	cmd.Flags().StringVar(&funnelStageLabel, "label", "", "stage display label (defaults to the tag)")
	cmd.Flags().IntVar(&funnelStageSLA, "sla", 0, "SLA hours for the stage (0 = no SLA)")
	return cmd
}

func newFunnelRenameStageCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-stage <funnel-id> <stage-tag> <new-label>",
		Short: "Rename a stage",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd.Context(), deps, args[0], func(stores *Stores) error {
				return stores.Editor.RenameStage(cmd.Context(), args[0], funnel.StageTag(args[1]), args[2])
			})
		},
	}
}

func newFunnelMoveStageCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move-stage <funnel-id> <stage-tag>",
		Short: "Reorder a stage within its funnel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd.Context(), deps, args[0], func(stores *Stores) error {
				return stores.Editor.MoveStage(cmd.Context(), args[0], funnel.StageTag(args[1]), funnelStagePos)
			})
		},
	}

	cmd.Flags().IntVar(&funnelStagePos, "to", 0, "target position (0-based)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newFunnelDeleteStageCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-stage <funnel-id> <stage-tag>",
		Short: "Remove a stage from a funnel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEditor(cmd.Context(), deps, args[0], func(stores *Stores) error {
				return stores.Editor.DeleteStage(cmd.Context(), args[0], funnel.StageTag(args[1]))
			})
		},
	}
}

func newFunnelDeleteCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <funnel-id>",
		Short: "Delete a funnel",
		Long:  "Delete a funnel. The default funnel cannot be deleted.",
		Args:  cobra.ExactArgs(1),
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

			if err := stores.Editor.DeleteFunnel(cmd.Context(), args[0]); err != nil {
				return err
			}
			invalidateFunnelCache(cmd.Context(), stores, args[0], logger)
			fmt.Printf("Funil %s removido\n", args[0])
			return nil
		},
	}
}
