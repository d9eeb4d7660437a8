package model

import ai "github.com/spetersoncode/maildraft"

// LongContextTokens is the prompt size above which long-context rates apply.
const LongContextTokens = 200_000

// Pricing holds USD rates per million tokens. The long rates are zero for
// vendors without tiered pricing.
type Pricing struct {
	InputPerMillion      float64
	OutputPerMillion     float64
	LongInputPerMillion  float64
	LongOutputPerMillion float64
}

func (p Pricing) tiered() bool {
	return p.LongInputPerMillion > 0 || p.LongOutputPerMillion > 0
}

// Cost estimates the USD cost of usage.
func (p Pricing) Cost(usage ai.Usage) float64 {
	in, out := p.InputPerMillion, p.OutputPerMillion
	if p.tiered() && usage.InputTokens > LongContextTokens {
		in, out = p.LongInputPerMillion, p.LongOutputPerMillion
	}
	return (float64(usage.InputTokens)*in + float64(usage.OutputTokens)*out) / 1_000_000
}
