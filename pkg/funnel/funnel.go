// Package funnel defines sales funnels: ordered, named sequences of stages,
// each with an SLA duration. The registry is the catalog the pipeline engine
// validates transitions against.
package funnel

// StageTag identifies a pipeline stage. Tags form a closed set shared across
// funnels; a funnel picks an ordered subset of them.
type StageTag string

const (
	StageLeadIn          StageTag = "lead-in"
	StageContatoFeito    StageTag = "contato-feito"
	StageReuniaoAgendada StageTag = "reuniao-agendada"
	StagePropostaEnviada StageTag = "proposta-enviada"
	StageNegociacao      StageTag = "negociacao"
	StageFechamento      StageTag = "fechamento"
)

// Editing limits enforced by the registry.
const (
	// MaxStages caps how many stages a funnel may carry.
	MaxStages = 10
	// MaxStageLabelLen caps stage display labels.
	MaxStageLabelLen = 30
)

// Stage is a single step of a funnel.
type Stage struct {
	Tag      StageTag `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	SLAHours int      `json:"slaHours" yaml:"sla_hours"`
}

// Funnel is an ordered sequence of stages. Stage order defines what counts as
// forward movement for validation purposes.
type Funnel struct {
	ID      string  `json:"id" yaml:"id"`
	Label   string  `json:"label" yaml:"label"`
	Default bool    `json:"default" yaml:"default"`
	Stages  []Stage `json:"stages" yaml:"stages"`
}

// StageIndex returns the position of tag in the funnel's stage order, or -1
// when the funnel does not carry that stage.
func (f *Funnel) StageIndex(tag StageTag) int {
	for i, s := range f.Stages {
		if s.Tag == tag {
			return i
		}
	}
	return -1
}

// Stage returns the stage definition for tag, if the funnel carries it.
func (f *Funnel) Stage(tag StageTag) (Stage, bool) {
	if i := f.StageIndex(tag); i >= 0 {
		return f.Stages[i], true
	}
	return Stage{}, false
}

// HasStage reports whether tag belongs to the funnel's stage set.
func (f *Funnel) HasStage(tag StageTag) bool {
	return f.StageIndex(tag) >= 0
}

// FirstStage returns the intake stage new cards land in. ok is false for a
// funnel that is transiently empty while being edited.
func (f *Funnel) FirstStage() (Stage, bool) {
	if len(f.Stages) == 0 {
		return Stage{}, false
	}
	return f.Stages[0], true
}

// StageTags returns the funnel's stage tags in order.
func (f *Funnel) StageTags() []StageTag {
	tags := make([]StageTag, len(f.Stages))
	for i, s := range f.Stages {
		tags[i] = s.Tag
	}
	return tags
}

// clone returns a deep copy so registry callers cannot mutate shared state.
func (f *Funnel) clone() *Funnel {
	cp := *f
	cp.Stages = make([]Stage, len(f.Stages))
	copy(cp.Stages, f.Stages)
	return &cp
}
