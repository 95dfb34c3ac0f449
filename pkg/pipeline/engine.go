package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
	"github.com/vendaflow/venda-cli/pkg/funnel"
	"github.com/vendaflow/venda-cli/pkg/logging"
	"github.com/vendaflow/venda-cli/pkg/opportunity"
	"github.com/vendaflow/venda-cli/pkg/sla"
)

// TracerName is the name of the tracer for engine operations.
const TracerName = "pipeline"

// Span attribute keys.
const (
	attrCardID   = "card_id"
	attrActorID  = "actor_id"
	attrFunnelID = "funnel_id"
	attrStage    = "stage"
	attrResult   = "result"
)

// Engine orchestrates stage transitions. Every mutation follows the same
// sequence: ownership guard, completeness validation, SLA recompute, then one
// atomic Save. All precondition failures happen before any write, so the
// stored record is guaranteed untouched on every failure path.
//
// Moves on the same card are serialized by a per-card lock so the validation
// step always sees the just-committed state; moves on different cards proceed
// in parallel. Peer ordering inside a column is a presentation concern and
// never reaches the engine.
type Engine struct {
	cards    opportunity.Repository
	registry funnel.Registry
	logger   logging.Logger
	tracer   trace.Tracer
	metrics  *Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a pipeline engine. logger and metrics may be nil.
func NewEngine(cards opportunity.Repository, registry funnel.Registry, logger logging.Logger, metrics *Metrics) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Engine{
		cards:    cards,
		registry: registry,
		logger:   logger.With(logging.F("component", "pipeline_engine")),
		tracer:   otel.Tracer(TracerName),
		metrics:  metrics,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing operations on one card.
func (e *Engine) lockFor(cardID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[cardID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[cardID] = l
	}
	return l
}

// MoveCard moves a card to targetStage within the given funnel.
//
// Failure modes: ErrNotFound when the card or target stage does not exist,
// ErrForbidden when the actor is not the card's responsible seller, and
// IncompleteFieldsError when required fields for a forward move are missing.
// Moving a card onto its current stage is an idempotent no-op that succeeds
// without validation or SLA recompute.
//
// On success the card's stage and updatedAt change and the SLA clock follows
// the target stage: a stage with an SLA duration restarts the deadline from
// now (backward moves included). A stage without one leaves the previous
// deadline untouched; clearing a deadline is a separate, explicit edit.
func (e *Engine) MoveCard(ctx context.Context, actorID, cardID string, targetStage funnel.StageTag, funnelID string, now time.Time) (*opportunity.Card, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.move_card",
		trace.WithAttributes(
			attribute.String(attrCardID, cardID),
			attribute.String(attrActorID, actorID),
			attribute.String(attrFunnelID, funnelID),
			attribute.String(attrStage, string(targetStage)),
		),
	)
	defer span.End()

	card, err := e.moveCard(ctx, actorID, cardID, targetStage, funnelID, now)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(attrResult, string(verrors.Classify(err))))
		return nil, err
	}
	span.SetAttributes(attribute.String(attrResult, moveResultSuccess))
	return card, nil
}

func (e *Engine) moveCard(ctx context.Context, actorID, cardID string, targetStage funnel.StageTag, funnelID string, now time.Time) (*opportunity.Card, error) {
	// Snapshot the funnel before taking the card lock. A stage deleted after
	// this read fails the move gracefully instead of corrupting state.
	f, err := e.registry.GetFunnel(ctx, funnelID)
	if err != nil {
		e.metrics.moves.WithLabelValues(moveResultNotFound).Inc()
		return nil, err
	}

	lock := e.lockFor(cardID)
	lock.Lock()
	defer lock.Unlock()

	card, err := e.cards.Get(ctx, cardID)
	if err != nil {
		e.metrics.moves.WithLabelValues(moveResultNotFound).Inc()
		return nil, err
	}

	// Idempotent no-op: same stage, nothing to validate or recompute.
	if card.Stage == targetStage {
		e.metrics.moves.WithLabelValues(moveResultNoop).Inc()
		return card, nil
	}

	if !card.IsOwnedBy(actorID) {
		e.metrics.moves.WithLabelValues(moveResultForbidden).Inc()
		e.logger.Warn("move denied: actor does not own card",
			logging.F("card_id", cardID),
			logging.F("actor_id", actorID))
		return nil, fmt.Errorf("actor %q cannot mutate card %q: %w", actorID, cardID, verrors.ErrForbidden)
	}

	stageDef, ok := f.Stage(targetStage)
	if !ok {
		e.metrics.moves.WithLabelValues(moveResultNotFound).Inc()
		return nil, fmt.Errorf("stage %q in funnel %q: %w", targetStage, funnelID, verrors.ErrNotFound)
	}

	if missing := ValidateTransition(card, targetStage, f); len(missing) > 0 {
		e.metrics.moves.WithLabelValues(moveResultIncomplete).Inc()
		return nil, &verrors.IncompleteFieldsError{
			TargetStage: string(targetStage),
			Missing:     missing,
		}
	}

	card.Stage = targetStage
	card.UpdatedAt = now
	if stageDef.SLAHours > 0 {
		deadline := sla.Deadline(stageDef.SLAHours, now)
		card.SLADeadline = &deadline
	}

	if err := e.cards.Save(ctx, card); err != nil {
		e.metrics.moves.WithLabelValues(moveResultError).Inc()
		return nil, fmt.Errorf("commit move: %w", err)
	}

	e.metrics.moves.WithLabelValues(moveResultSuccess).Inc()
	e.logger.Info("card moved",
		logging.F("card_id", cardID),
		logging.F("stage", string(targetStage)),
		logging.F("funnel_id", funnelID))
	return card, nil
}

// Intake creates a new card at the funnel's first stage with that stage's SLA
// deadline. A card without an ID gets a generated one.
func (e *Engine) Intake(ctx context.Context, card *opportunity.Card, funnelID string, now time.Time) (*opportunity.Card, error) {
	f, err := e.registry.GetFunnel(ctx, funnelID)
	if err != nil {
		return nil, err
	}
	first, ok := f.FirstStage()
	if !ok {
		return nil, fmt.Errorf("funnel %q has no stages: %w", funnelID, verrors.ErrInvalidState)
	}

	if card.Title == "" {
		return nil, fmt.Errorf("card title is required: %w", verrors.ErrValidation)
	}
	if card.ResponsibleID == "" {
		return nil, fmt.Errorf("card responsible is required: %w", verrors.ErrValidation)
	}
	if card.Temperature == "" {
		card.Temperature = opportunity.TemperatureWarm
	}
	if !card.Temperature.IsValid() {
		return nil, fmt.Errorf("unknown temperature %q: %w", card.Temperature, verrors.ErrValidation)
	}

	card = card.Clone()
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	card.Stage = first.Tag
	card.Status = opportunity.StatusOpen
	card.CreatedAt = now
	card.UpdatedAt = now
	if first.SLAHours > 0 {
		deadline := sla.Deadline(first.SLAHours, now)
		card.SLADeadline = &deadline
	}

	if err := e.cards.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	e.metrics.intakes.Inc()
	e.logger.Info("card created",
		logging.F("card_id", card.ID),
		logging.F("funnel_id", funnelID))
	return card, nil
}

// MarkWon closes an open card as won. Subject to the ownership guard; a card
// that is not open fails with ErrInvalidState.
func (e *Engine) MarkWon(ctx context.Context, actorID, cardID string, now time.Time) (*opportunity.Card, error) {
	return e.resolve(ctx, actorID, cardID, now, func(card *opportunity.Card) error {
		card.Status = opportunity.StatusWon
		return nil
	}, "won")
}

// MarkLost closes an open card as lost with a categorized reason. Competitor
// and notes are optional detail.
func (e *Engine) MarkLost(ctx context.Context, actorID, cardID string, reason opportunity.LossReason, competitor, notes string, now time.Time) (*opportunity.Card, error) {
	if !reason.IsValid() {
		return nil, fmt.Errorf("unknown loss reason %q: %w", reason, verrors.ErrValidation)
	}
	return e.resolve(ctx, actorID, cardID, now, func(card *opportunity.Card) error {
		card.Status = opportunity.StatusLost
		card.LossReason = reason
		card.LossCompetitor = competitor
		card.LossNotes = notes
		return nil
	}, "lost")
}

func (e *Engine) resolve(ctx context.Context, actorID, cardID string, now time.Time, apply func(*opportunity.Card) error, outcome string) (*opportunity.Card, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.resolve_card",
		trace.WithAttributes(
			attribute.String(attrCardID, cardID),
			attribute.String(attrActorID, actorID),
			attribute.String("outcome", outcome),
		),
	)
	defer span.End()

	lock := e.lockFor(cardID)
	lock.Lock()
	defer lock.Unlock()

	card, err := e.cards.Get(ctx, cardID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !card.IsOwnedBy(actorID) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, fmt.Errorf("actor %q cannot mutate card %q: %w", actorID, cardID, verrors.ErrForbidden)
	}
	if card.Status != opportunity.StatusOpen {
		span.SetStatus(codes.Error, "not open")
		return nil, fmt.Errorf("card %q is already %s: %w", cardID, card.Status, verrors.ErrInvalidState)
	}

	if err := apply(card); err != nil {
		return nil, err
	}
	card.UpdatedAt = now

	if err := e.cards.Save(ctx, card); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("commit resolution: %w", err)
	}

	e.metrics.closed.WithLabelValues(outcome).Inc()
	e.logger.Info("card closed",
		logging.F("card_id", cardID),
		logging.F("outcome", outcome))
	return card, nil
}

// GroupByStage buckets open cards by stage, restricted to stages the funnel
// carries. Cards whose stage is outside the funnel's stage set are silently
// omitted: they are not lost, merely not shown until the funnel carrying
// their stage is selected. Every funnel stage gets an entry, possibly empty.
func GroupByStage(cards []opportunity.Card, f *funnel.Funnel) map[funnel.StageTag][]opportunity.Card {
	grouped := make(map[funnel.StageTag][]opportunity.Card, len(f.Stages))
	for _, s := range f.Stages {
		grouped[s.Tag] = []opportunity.Card{}
	}
	for _, card := range cards {
		if card.Status != opportunity.StatusOpen {
			continue
		}
		if _, ok := grouped[card.Stage]; !ok {
			continue
		}
		grouped[card.Stage] = append(grouped[card.Stage], card)
	}
	return grouped
}

// StageSummary is a board column header: card count, aggregate values, and
// the worst SLA status among the column's cards.
type StageSummary struct {
	Stage        funnel.Stage
	Count        int
	TotalValue   float64
	TotalMonthly float64
	SLA          sla.Status
}

// Summarize computes one StageSummary per funnel stage, in funnel order.
func (e *Engine) Summarize(cards []opportunity.Card, f *funnel.Funnel, now time.Time) []StageSummary {
	grouped := GroupByStage(cards, f)

	summaries := make([]StageSummary, 0, len(f.Stages))
	for _, stageDef := range f.Stages {
		summary := StageSummary{Stage: stageDef, SLA: sla.StatusOK}
		for i := range grouped[stageDef.Tag] {
			card := &grouped[stageDef.Tag][i]
			summary.Count++
			summary.TotalValue += card.Value
			summary.TotalMonthly += card.MonthlyValue

			res := sla.Compute(card.SLADeadline, now)
			if res.Status == sla.StatusBreached {
				e.metrics.slaBreach.Inc()
			}
			summary.SLA = sla.Worst(summary.SLA, res.Status)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Board loads the open cards and summarizes them for one funnel.
func (e *Engine) Board(ctx context.Context, funnelID string, now time.Time) (*funnel.Funnel, map[funnel.StageTag][]opportunity.Card, []StageSummary, error) {
	f, err := e.registry.GetFunnel(ctx, funnelID)
	if err != nil {
		return nil, nil, nil, err
	}
	cards, err := e.cards.ListOpen(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load open cards: %w", err)
	}
	return f, GroupByStage(cards, f), e.Summarize(cards, f, now), nil
}
