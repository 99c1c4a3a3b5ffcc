package pipeline

import (
	"strings"

	"aduan-agent/prompts"
)

// Tone selects the voice of the drafted complaint.
type Tone string

const (
	ToneFormal Tone = "formal"
	ToneFunny  Tone = "funny"
	ToneAngry  Tone = "angry"
)

// NormalizeTone maps a request tone string onto the closed tone set. Unknown
// values fall back to formal rather than erroring.
func NormalizeTone(s string) Tone {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case ToneFunny:
		return ToneFunny
	case ToneAngry:
		return ToneAngry
	default:
		return ToneFormal
	}
}

// template returns the drafting prompt template for the tone.
func (t Tone) template() string {
	switch t {
	case ToneFunny:
		return prompts.ComplaintFunny()
	case ToneAngry:
		return prompts.ComplaintAngry()
	default:
		return prompts.ComplaintFormal()
	}
}
