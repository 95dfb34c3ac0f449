package opportunity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
	"github.com/vendaflow/venda-cli/pkg/funnel"
)

func TestIsOwnedBy(t *testing.T) {
	card := &Card{ResponsibleID: "seller-1"}
	assert.True(t, card.IsOwnedBy("seller-1"))
	assert.False(t, card.IsOwnedBy("seller-2"))
	assert.False(t, card.IsOwnedBy(""))
}

func TestCloneIsDeep(t *testing.T) {
	deadline := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	card := &Card{
		ID:          "card-1",
		Tags:        []string{"erp"},
		SLADeadline: &deadline,
	}

	cp := card.Clone()
	cp.Tags[0] = "crm"
	*cp.SLADeadline = deadline.Add(time.Hour)

	assert.Equal(t, "erp", card.Tags[0])
	assert.Equal(t, deadline, *card.SLADeadline)
}

func TestLossReasonLabels(t *testing.T) {
	assert.Equal(t, "Concorrencia", LossReasonCompetitor.Label())
	assert.Equal(t, "Sem orcamento", LossReasonNoBudget.Label())
	assert.Equal(t, "ghosting", LossReason("ghosting").Label())
	assert.False(t, LossReason("ghosting").IsValid())
}

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	card := &Card{
		ID:            "card-1",
		Title:         "Implantacao ERP",
		ResponsibleID: "seller-1",
		Stage:         funnel.StageLeadIn,
		Status:        StatusOpen,
	}
	require.NoError(t, repo.Create(ctx, card))

	// The repository holds its own copy.
	card.Title = "mutated"
	got, err := repo.Get(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, "Implantacao ERP", got.Title)

	got.Title = "Implantacao ERP v2"
	require.NoError(t, repo.Save(ctx, got))
	again, err := repo.Get(ctx, "card-1")
	require.NoError(t, err)
	assert.Equal(t, "Implantacao ERP v2", again.Title)
}

func TestMemoryRepositoryNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.True(t, verrors.IsNotFound(err))

	err = repo.Save(ctx, &Card{ID: "missing"})
	assert.True(t, verrors.IsNotFound(err))
}

func TestMemoryRepositoryDuplicateCreate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Card{ID: "card-1", Status: StatusOpen}))
	assert.Error(t, repo.Create(ctx, &Card{ID: "card-1", Status: StatusOpen}))
}

func TestMemoryRepositoryListOpen(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Card{ID: "a", Status: StatusOpen, CreatedAt: time.Unix(2, 0)}))
	require.NoError(t, repo.Create(ctx, &Card{ID: "b", Status: StatusWon, CreatedAt: time.Unix(1, 0)}))
	require.NoError(t, repo.Create(ctx, &Card{ID: "c", Status: StatusOpen, CreatedAt: time.Unix(3, 0)}))

	open, err := repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "a", open[0].ID)
	assert.Equal(t, "c", open[1].ID)
}
