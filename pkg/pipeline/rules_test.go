package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaflow/venda-cli/pkg/funnel"
	"github.com/vendaflow/venda-cli/pkg/opportunity"
)

func comercialFunnel(t *testing.T) *funnel.Funnel {
	t.Helper()
	reg := funnel.NewBuiltinRegistry()
	f, err := reg.GetFunnel(context.Background(), "comercial")
	require.NoError(t, err)
	return f
}

func bareCard(stage funnel.StageTag) *opportunity.Card {
	return &opportunity.Card{
		ID:            "card-1",
		Title:         "Implantacao ERP",
		ResponsibleID: "seller-1",
		Stage:         stage,
		Status:        opportunity.StatusOpen,
	}
}

func TestValidateTransitionMissingClientName(t *testing.T) {
	f := comercialFunnel(t)
	card := bareCard(funnel.StageLeadIn)

	missing := ValidateTransition(card, funnel.StageContatoFeito, f)
	assert.Equal(t, []string{"Nome do contato"}, missing)

	card.ClientName = "Ana Souza"
	assert.Empty(t, ValidateTransition(card, funnel.StageContatoFeito, f))
}

func TestValidateTransitionCumulative(t *testing.T) {
	f := comercialFunnel(t)
	card := bareCard(funnel.StageLeadIn)

	// Skipping ahead accumulates every gated field at once.
	missing := ValidateTransition(card, funnel.StageNegociacao, f)
	assert.Equal(t, []string{
		"Nome do contato",
		"Data prevista de fechamento",
		"Valor da proposta",
		"Valor mensal",
	}, missing)
}

func TestValidateTransitionPartialFill(t *testing.T) {
	f := comercialFunnel(t)
	card := bareCard(funnel.StageContatoFeito)
	card.ClientName = "Ana Souza"
	closeDate := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	card.ExpectedCloseDate = &closeDate

	missing := ValidateTransition(card, funnel.StagePropostaEnviada, f)
	assert.Equal(t, []string{"Valor da proposta"}, missing)

	card.Value = 12000
	assert.Empty(t, ValidateTransition(card, funnel.StagePropostaEnviada, f))
}

func TestValidateTransitionBackwardNeverBlocks(t *testing.T) {
	f := comercialFunnel(t)

	// An empty card parked deep in the funnel can always move back.
	card := bareCard(funnel.StageNegociacao)
	for _, target := range []funnel.StageTag{
		funnel.StageLeadIn,
		funnel.StageContatoFeito,
		funnel.StageReuniaoAgendada,
		funnel.StagePropostaEnviada,
	} {
		assert.Empty(t, ValidateTransition(card, target, f), "backward to %s", target)
	}

	// Lateral (same stage) is also never blocked.
	assert.Empty(t, ValidateTransition(card, funnel.StageNegociacao, f))
}

func TestValidateTransitionZeroValueCountsAsMissing(t *testing.T) {
	f := comercialFunnel(t)
	card := bareCard(funnel.StageReuniaoAgendada)
	card.ClientName = "Ana Souza"
	closeDate := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	card.ExpectedCloseDate = &closeDate
	card.Value = 0

	missing := ValidateTransition(card, funnel.StagePropostaEnviada, f)
	assert.Contains(t, missing, "Valor da proposta")
}

func TestRequiredFieldsUnknownStage(t *testing.T) {
	assert.Empty(t, RequiredFields(funnel.StageTag("pos-venda")))
}
