package pipeline

import "testing"

func TestNormalizeTone(t *testing.T) {
	tests := []struct {
		input string
		want  Tone
	}{
		{"formal", ToneFormal},
		{"funny", ToneFunny},
		{"angry", ToneAngry},
		{"ANGRY", ToneAngry},
		{"  funny  ", ToneFunny},
		{"", ToneFormal},
		{"sarcastic", ToneFormal},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeTone(tt.input); got != tt.want {
				t.Errorf("NormalizeTone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToneTemplatesAreDistinct(t *testing.T) {
	seen := map[string]Tone{}
	for _, tone := range []Tone{ToneFormal, ToneFunny, ToneAngry} {
		tmpl := tone.template()
		if tmpl == "" {
			t.Fatalf("tone %q has empty template", tone)
		}
		if prev, ok := seen[tmpl]; ok {
			t.Errorf("tones %q and %q share a template", prev, tone)
		}
		seen[tmpl] = tone
	}
}
