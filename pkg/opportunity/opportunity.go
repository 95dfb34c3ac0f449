// Package opportunity defines the sales opportunity ("card") record and its
// repositories. Cards are never physically deleted: win/loss resolution
// soft-closes them via Status while the record stays behind for reporting.
package opportunity

import (
	"time"

	"github.com/vendaflow/venda-cli/pkg/funnel"
)

// Temperature is the seller's read on how likely the deal is to close.
type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureWarm Temperature = "warm"
	TemperatureCold Temperature = "cold"
)

// IsValid reports whether t is a known temperature.
func (t Temperature) IsValid() bool {
	switch t {
	case TemperatureHot, TemperatureWarm, TemperatureCold:
		return true
	}
	return false
}

// Status is the card's lifecycle state. Only open cards appear on the board.
type Status string

const (
	StatusOpen Status = "open"
	StatusWon  Status = "won"
	StatusLost Status = "lost"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusWon, StatusLost:
		return true
	}
	return false
}

// LossReason categorizes why a deal was lost.
type LossReason string

const (
	LossReasonPrice      LossReason = "price"
	LossReasonCompetitor LossReason = "competitor"
	LossReasonTiming     LossReason = "timing"
	LossReasonNoBudget   LossReason = "no-budget"
	LossReasonOther      LossReason = "other"
)

// lossReasonLabels maps reasons to the labels the UI shows.
var lossReasonLabels = map[LossReason]string{
	LossReasonPrice:      "Preco",
	LossReasonCompetitor: "Concorrencia",
	LossReasonTiming:     "Timing",
	LossReasonNoBudget:   "Sem orcamento",
	LossReasonOther:      "Outro",
}

// IsValid reports whether r is a known loss reason.
func (r LossReason) IsValid() bool {
	_, ok := lossReasonLabels[r]
	return ok
}

// Label returns the display label for the reason.
func (r LossReason) Label() string {
	if label, ok := lossReasonLabels[r]; ok {
		return label
	}
	return string(r)
}

// Card is a sales opportunity moving through a funnel.
type Card struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	ClientName      string          `json:"clientName"`
	Tags            []string        `json:"tags"`
	ResponsibleID   string          `json:"responsibleId"`
	ResponsibleName string          `json:"responsibleName"`
	Value           float64         `json:"value"`
	MonthlyValue    float64         `json:"monthlyValue"`
	Temperature     Temperature     `json:"temperature"`
	Stage           funnel.StageTag `json:"stage"`
	Status          Status          `json:"status"`

	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	SLADeadline       *time.Time `json:"slaDeadline,omitempty"`

	// Loss details, set only when Status is lost.
	LossReason     LossReason `json:"lossReason,omitempty"`
	LossCompetitor string     `json:"lossCompetitor,omitempty"`
	LossNotes      string     `json:"lossNotes,omitempty"`
}

// Clone returns a deep copy of the card.
func (c *Card) Clone() *Card {
	cp := *c
	if c.Tags != nil {
		cp.Tags = append([]string(nil), c.Tags...)
	}
	if c.ExpectedCloseDate != nil {
		t := *c.ExpectedCloseDate
		cp.ExpectedCloseDate = &t
	}
	if c.SLADeadline != nil {
		t := *c.SLADeadline
		cp.SLADeadline = &t
	}
	return &cp
}

// IsOwnedBy reports whether actorID is the card's responsible seller. This is
// the ownership guard: any mutation by a non-owner must be rejected before
// validation or SLA logic runs.
func (c *Card) IsOwnedBy(actorID string) bool {
	return actorID == c.ResponsibleID
}
