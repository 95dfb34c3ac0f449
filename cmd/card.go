package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
	"github.com/vendaflow/venda-cli/pkg/funnel"
	"github.com/vendaflow/venda-cli/pkg/opportunity"
	"github.com/vendaflow/venda-cli/pkg/sla"
)

// Card command flags.
var (
	cardFunnelID     string
	cardClientName   string
	cardValue        float64
	cardMonthlyValue float64
	cardTemperature  string
	cardCloseDate    string
	cardTags         []string
	cardLossReason   string
	cardCompetitor   string
	cardNotes        string
)

// NewCardCommand creates the card command group.
func NewCardCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage opportunity cards",
		Long: `Manage opportunity cards: create them, move them through the funnel,
and close them as won or lost.

Moves forward in the funnel are gated by required fields; moves backward
are always allowed. Only the card's responsible seller can change it.`,
	}

	cmd.AddCommand(newCardAddCommand(deps))
	cmd.AddCommand(newCardShowCommand(deps))
	cmd.AddCommand(newCardSetCommand(deps))
	cmd.AddCommand(newCardMoveCommand(deps))
	cmd.AddCommand(newCardWinCommand(deps))
	cmd.AddCommand(newCardLoseCommand(deps))
	return cmd
}

func newCardAddCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a card at the funnel's first stage",
		Long: `Create a card at the funnel's first stage. The new card belongs to the
configured actor and starts the first stage's SLA clock.

Examples:
  venda card add "Implantacao ERP" --client "Ana Souza" --value 12000
  venda card add "Novo lead" --funnel indicacao --temperature hot`,
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

			card := &opportunity.Card{
				Title:           args[0],
				ClientName:      cardClientName,
				Tags:            cardTags,
				ResponsibleID:   actorID,
				ResponsibleName: cfg.Actor.Name,
				Value:           cardValue,
				MonthlyValue:    cardMonthlyValue,
				Temperature:     opportunity.Temperature(cardTemperature),
			}
			if cardCloseDate != "" {
				closeDate, err := time.Parse("2006-01-02", cardCloseDate)
				if err != nil {
					return fmt.Errorf("parsing --close-date (want YYYY-MM-DD): %w", err)
				}
				card.ExpectedCloseDate = &closeDate
			}

			funnelID := cardFunnelID
			if funnelID == "" {
				funnelID = cfg.FunnelID
			}

			created, err := newEngine(stores, logger).Intake(cmd.Context(), card, funnelID, deps.Now())
			if err != nil {
				return err
			}

			return printOutput(cfg, created, func() {
				fmt.Printf("Card %s criado em %s\n", created.ID, created.Stage)
			})
		},
	}

	cmd.Flags().StringVar(&cardClientName, "client", "", "contact name")
	cmd.Flags().Float64Var(&cardValue, "value", 0, "proposal value")
	cmd.Flags().Float64Var(&cardMonthlyValue, "monthly", 0, "monthly recurring value")
	cmd.Flags().StringVar(&cardTemperature, "temperature", "warm", "deal temperature (hot, warm, cold)")
	cmd.Flags().StringVar(&cardCloseDate, "close-date", "", "expected close date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&cardTags, "tag", nil, "tags (repeatable)")
	cmd.Flags().StringVarP(&cardFunnelID, "funnel", "f", "", "funnel for the new card (default from config)")
	return cmd
}

func newCardShowCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show one card",
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

			card, err := stores.Cards.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printOutput(cfg, card, func() {
				printCard(card, deps.Now())
			})
		},
	}
}

func newCardSetCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <card-id>",
		Short: "Update a card's fields",
		Long: `Update a card's editable fields. Only flags you pass are changed.
Subject to the ownership guard: only the responsible seller can edit.

Examples:
  venda card set 4f1c... --client "Ana Souza" --value 12000
  venda card set 4f1c... --close-date 2026-09-30 --monthly 800`,
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
			if !card.IsOwnedBy(actorID) {
				return fmt.Errorf("card %q belongs to another seller: %w", card.ID, verrors.ErrForbidden)
			}

			if cmd.Flags().Changed("client") {
				card.ClientName = cardClientName
			}
			if cmd.Flags().Changed("value") {
				card.Value = cardValue
			}
			if cmd.Flags().Changed("monthly") {
				card.MonthlyValue = cardMonthlyValue
			}
			if cmd.Flags().Changed("temperature") {
				temp := opportunity.Temperature(cardTemperature)
				if !temp.IsValid() {
					return fmt.Errorf("unknown temperature %q: %w", cardTemperature, verrors.ErrValidation)
				}
				card.Temperature = temp
			}
			if cmd.Flags().Changed("close-date") {
				closeDate, err := time.Parse("2006-01-02", cardCloseDate)
				if err != nil {
					return fmt.Errorf("parsing --close-date (want YYYY-MM-DD): %w", err)
				}
				card.ExpectedCloseDate = &closeDate
			}
			card.UpdatedAt = deps.Now()

			if err := stores.Cards.Save(cmd.Context(), card); err != nil {
				return err
			}

			return printOutput(cfg, card, func() {
				fmt.Printf("Card %s atualizado\n", card.ID)
			})
		},
	}

	cmd.Flags().StringVar(&cardClientName, "client", "", "contact name")
	cmd.Flags().Float64Var(&cardValue, "value", 0, "proposal value")
	cmd.Flags().Float64Var(&cardMonthlyValue, "monthly", 0, "monthly recurring value")
	cmd.Flags().StringVar(&cardTemperature, "temperature", "", "deal temperature (hot, warm, cold)")
	cmd.Flags().StringVar(&cardCloseDate, "close-date", "", "expected close date (YYYY-MM-DD)")
	return cmd
}

func newCardMoveCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <card-id> <stage>",
		Short: "Move a card to another stage",
		Long: `Move a card to another stage of the funnel.

Forward moves require the target stage's fields to be filled in; the
command lists anything missing. Backward moves always succeed. Moving a
card onto its current stage is a no-op.

Examples:
  venda card move 4f1c... contato-feito
  venda card move 4f1c... fechamento --funnel comercial`,
		Args: cobra.ExactArgs(2),
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

			funnelID := cardFunnelID
			if funnelID == "" {
				funnelID = cfg.FunnelID
			}

			engine := newEngine(stores, logger)
			card, err := engine.MoveCard(cmd.Context(), actorID, args[0], funnel.StageTag(args[1]), funnelID, deps.Now())
			if err != nil {
				if fieldsErr, ok := verrors.IsIncompleteFields(err); ok {
					return fmt.Errorf("campos obrigatorios para %s: %s",
						fieldsErr.TargetStage, strings.Join(fieldsErr.Missing, ", "))
				}
				return err
			}

			return printOutput(cfg, card, func() {
				fmt.Printf("Card %s movido para %s\n", card.ID, card.Stage)
			})
		},
	}

	cmd.Flags().StringVarP(&cardFunnelID, "funnel", "f", "", "funnel for the move (default from config)")
	return cmd
}

func newCardWinCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "win <card-id>",
		Short: "Close a card as won",
		Args:  cobra.ExactArgs(1),
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

			card, err := newEngine(stores, logger).MarkWon(cmd.Context(), actorID, args[0], deps.Now())
			if err != nil {
				return err
			}

			return printOutput(cfg, card, func() {
				fmt.Printf("Card %s fechado como ganho (%s)\n", card.ID, formatBRL(card.Value))
			})
		},
	}
}

func newCardLoseCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lose <card-id>",
		Short: "Close a card as lost",
		Long: `Close a card as lost with a categorized reason.

Reasons: price, competitor, timing, no-budget, other.

Examples:
  venda card lose 4f1c... --reason price
  venda card lose 4f1c... --reason competitor --competitor "Rival SA"`,
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

			card, err := newEngine(stores, logger).MarkLost(cmd.Context(), actorID, args[0],
				opportunity.LossReason(cardLossReason), cardCompetitor, cardNotes, deps.Now())
			if err != nil {
				return err
			}

			return printOutput(cfg, card, func() {
				fmt.Printf("Card %s fechado como perdido (%s)\n", card.ID, card.LossReason.Label())
			})
		},
	}

	cmd.Flags().StringVar(&cardLossReason, "reason", "", "loss reason (price, competitor, timing, no-budget, other)")
	cmd.Flags().StringVar(&cardCompetitor, "competitor", "", "competitor that won the deal")
	cmd.Flags().StringVar(&cardNotes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

// printCard renders one card as text.
func printCard(card *opportunity.Card, now time.Time) {
	fmt.Printf("%s  %s\n", card.ID, card.Title)
	fmt.Printf("  Estagio:      %s (%s)\n", card.Stage, card.Status)
	if card.ClientName != "" {
		fmt.Printf("  Contato:      %s\n", card.ClientName)
	}
	fmt.Printf("  Responsavel:  %s\n", card.ResponsibleID)
	if card.Value > 0 {
		fmt.Printf("  Valor:        %s\n", formatBRL(card.Value))
	}
	if card.MonthlyValue > 0 {
		fmt.Printf("  Valor mensal: %s\n", formatBRL(card.MonthlyValue))
	}
	if card.ExpectedCloseDate != nil {
		fmt.Printf("  Fechamento:   %s\n", card.ExpectedCloseDate.Format("2006-01-02"))
	}
	if card.Status == opportunity.StatusOpen {
		res := sla.Compute(card.SLADeadline, now)
		fmt.Printf("  SLA:          %s (%s)\n", res.Label, res.Status)
	}
	if card.Status == opportunity.StatusLost {
		fmt.Printf("  Motivo:       %s\n", card.LossReason.Label())
	}
}
