package funnel

// BuiltinFunnels returns the funnels the product ships with. "comercial" is
// the default funnel; "indicacao" is a shorter referral funnel with tighter
// SLAs on the early stages.
func BuiltinFunnels() []Funnel {
	return []Funnel{
		{
			ID:      "comercial",
			Label:   "Funil Comercial",
			Default: true,
			Stages: []Stage{
				{Tag: StageLeadIn, Label: "Lead-In", SLAHours: 48},
				{Tag: StageContatoFeito, Label: "Contato Feito", SLAHours: 72},
				{Tag: StageReuniaoAgendada, Label: "Reuniao Agendada", SLAHours: 120},
				{Tag: StagePropostaEnviada, Label: "Proposta Enviada", SLAHours: 96},
				{Tag: StageNegociacao, Label: "Negociacao", SLAHours: 168},
				{Tag: StageFechamento, Label: "Fechamento", SLAHours: 48},
			},
		},
		{
			ID:    "indicacao",
			Label: "Funil Indicacao",
			Stages: []Stage{
				{Tag: StageLeadIn, Label: "Lead-In", SLAHours: 24},
				{Tag: StageContatoFeito, Label: "Contato Feito", SLAHours: 48},
				{Tag: StagePropostaEnviada, Label: "Proposta Enviada", SLAHours: 72},
				{Tag: StageFechamento, Label: "Fechamento", SLAHours: 48},
			},
		},
	}
}
