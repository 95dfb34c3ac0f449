// Package pipeline implements the stage-transition engine: it validates and
// executes card moves between funnel stages, restarts the SLA clock on stage
// entry, and aggregates cards per stage for the board.
package pipeline

import (
	"github.com/vendaflow/venda-cli/pkg/funnel"
	"github.com/vendaflow/venda-cli/pkg/opportunity"
)

// FieldTag identifies an opportunity field a stage may require.
type FieldTag string

const (
	FieldClientName        FieldTag = "clientName"
	FieldExpectedCloseDate FieldTag = "expectedCloseDate"
	FieldValue             FieldTag = "value"
	FieldMonthlyValue      FieldTag = "monthlyValue"
)

// FieldRequirement pairs a field with its display label and presence check.
// A numeric field counts as missing when its value is zero or negative.
type FieldRequirement struct {
	Tag     FieldTag
	Label   string
	present func(*opportunity.Card) bool
}

var (
	reqClientName = FieldRequirement{
		Tag:   FieldClientName,
		Label: "Nome do contato",
		present: func(c *opportunity.Card) bool {
			return c.ClientName != ""
		},
	}
	reqExpectedCloseDate = FieldRequirement{
		Tag:   FieldExpectedCloseDate,
		Label: "Data prevista de fechamento",
		present: func(c *opportunity.Card) bool {
			return c.ExpectedCloseDate != nil && !c.ExpectedCloseDate.IsZero()
		},
	}
	reqValue = FieldRequirement{
		Tag:   FieldValue,
		Label: "Valor da proposta",
		present: func(c *opportunity.Card) bool {
			return c.Value > 0
		},
	}
	reqMonthlyValue = FieldRequirement{
		Tag:   FieldMonthlyValue,
		Label: "Valor mensal",
		present: func(c *opportunity.Card) bool {
			return c.MonthlyValue > 0
		},
	}
)

// stageRequirements is the fixed completeness policy per target stage. The
// table is cumulative: each stage requires everything the previous gated
// stage required, plus possibly more.
var stageRequirements = map[funnel.StageTag][]FieldRequirement{
	funnel.StageLeadIn:          {},
	funnel.StageContatoFeito:    {reqClientName},
	funnel.StageReuniaoAgendada: {reqClientName, reqExpectedCloseDate},
	funnel.StagePropostaEnviada: {reqClientName, reqExpectedCloseDate, reqValue},
	funnel.StageNegociacao:      {reqClientName, reqExpectedCloseDate, reqValue, reqMonthlyValue},
	funnel.StageFechamento:      {reqClientName, reqExpectedCloseDate, reqValue, reqMonthlyValue},
}

// RequiredFields returns the completeness policy for a target stage. Stages
// without an entry (custom stages added through the pipeline manager) require
// nothing.
func RequiredFields(target funnel.StageTag) []FieldRequirement {
	return stageRequirements[target]
}

// ValidateTransition returns the display labels of every field the card is
// missing for a move to targetStage within f. Lateral and backward moves are
// never blocked: only forward movement is gated by completeness.
//
// The function is pure and deterministic. A targetStage the funnel does not
// carry yields no requirements here; callers must reject such moves before
// validation (see Engine.MoveCard).
func ValidateTransition(card *opportunity.Card, targetStage funnel.StageTag, f *funnel.Funnel) []string {
	currentIdx := f.StageIndex(card.Stage)
	targetIdx := f.StageIndex(targetStage)

	if targetIdx <= currentIdx {
		return nil
	}

	var missing []string
	for _, req := range RequiredFields(targetStage) {
		if !req.present(card) {
			missing = append(missing, req.Label)
		}
	}
	return missing
}
