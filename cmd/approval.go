package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vendaflow/venda-cli/pkg/approval"
)

// Approval command flags.
var (
	approvalDiscount float64
	approvalReason   string
	approvalStatus   string
)

// NewApprovalCommand creates the approval command group.
func NewApprovalCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approval",
		Short: "Manage discount approvals",
		Long: fmt.Sprintf(`Manage discount approvals.

Discounts above %.0f%% need a manager's sign-off before the discounted
price can be offered. Approved and rejected are final: a resolved
request never changes again.`, approval.DiscountThreshold),
	}

	cmd.AddCommand(newApprovalRequestCommand(deps))
	cmd.AddCommand(newApprovalListCommand(deps))
	cmd.AddCommand(newApprovalApproveCommand(deps))
	cmd.AddCommand(newApprovalRejectCommand(deps))
	return cmd
}

func newApprovalRequestCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request <card-id>",
		Short: "Request approval for a discount",
		Long: `Request approval for a discount on a card's proposal value.

The card's current value is the base; the discounted value is derived
from the percentage and shown once the request is approved.

Examples:
  venda approval request 4f1c... --discount 15 --reason "cliente estrategico"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			actorID, err := requireActor(cfg)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			stores, err := deps.OpenStores(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer stores.Close()

			card, err := stores.Cards.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			svc := approval.NewService(stores.Approvals, logger)
			req, err := svc.CreateRequest(cmd.Context(), &approval.Request{
				CardID:          card.ID,
				CardTitle:       card.Title,
				RequesterID:     actorID,
				RequesterName:   cfg.Actor.Name,
				OriginalValue:   card.Value,
				DiscountPercent: approvalDiscount,
				Reason:          approvalReason,
			}, deps.Now())
			if err != nil {
				return err
			}

			return printOutput(cfg, req, func() {
				fmt.Printf("Aprovacao %s pendente: %.1f%% sobre %s -> %s\n",
					req.ID, req.DiscountPercent, formatBRL(req.OriginalValue), formatBRL(req.DiscountedValue()))
			})
		},
	}

	cmd.Flags().Float64Var(&approvalDiscount, "discount", 0, "discount percentage")
	cmd.Flags().StringVar(&approvalReason, "reason", "", "why the discount is needed")
	_ = cmd.MarkFlagRequired("discount")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newApprovalListCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approval requests",
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

			svc := approval.NewService(stores.Approvals, logger)
			requests, err := svc.List(cmd.Context(), approval.Status(approvalStatus))
			if err != nil {
				return err
			}

			return printOutput(cfg, requests, func() {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCARD\tDESCONTO\tVALOR\tCOM DESCONTO\tSTATUS")
				for i := range requests {
					req := &requests[i]
					fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%s\t%s\t%s\n",
						req.ID, req.CardTitle, req.DiscountPercent,
						formatBRL(req.OriginalValue), formatBRL(req.DiscountedValue()), req.Status)
				}
				w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&approvalStatus, "status", "", "filter by status (pending, approved, rejected)")
	return cmd
}

// resolveApproval runs an approve or reject command body.
func resolveApproval(deps *Deps, cmd *cobra.Command, requestID string, approve bool) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return err
	}
	actorID, err := requireActor(cfg)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	stores, err := deps.OpenStores(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	svc := approval.NewService(stores.Approvals, logger)
	var req *approval.Request
	if approve {
		req, err = svc.Approve(cmd.Context(), requestID, actorID, cfg.Actor.Name, deps.Now())
	} else {
		req, err = svc.Reject(cmd.Context(), requestID, actorID, cfg.Actor.Name, deps.Now())
	}
	if err != nil {
		return err
	}

	return printOutput(cfg, req, func() {
		if req.Status == approval.StatusApproved {
			fmt.Printf("Aprovacao %s aprovada: %s\n", req.ID, formatBRL(req.DiscountedValue()))
		} else {
			fmt.Printf("Aprovacao %s rejeitada\n", req.ID)
		}
	})
}

func newApprovalApproveCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <request-id>",
		Short: "Approve a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolveApproval(deps, cmd, args[0], true)
		},
	}
}

func newApprovalRejectCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <request-id>",
		Short: "Reject a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolveApproval(deps, cmd, args[0], false)
		},
	}
}
