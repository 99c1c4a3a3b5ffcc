package social

import "testing"

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "bare_object",
			input: `{"handle": "@KemenPU", "confidence": "high"}`,
			want:  `{"handle": "@KemenPU", "confidence": "high"}`,
			ok:    true,
		},
		{
			name:  "object_with_surrounding_prose",
			input: "Sure, here is the result:\n{\"handle\": \"@KemenPU\", \"confidence\": \"high\"}\nLet me know!",
			want:  `{"handle": "@KemenPU", "confidence": "high"}`,
			ok:    true,
		},
		{
			name:  "nested_object",
			input: `result: {"outer": {"inner": 1}} trailing`,
			want:  `{"outer": {"inner": 1}}`,
			ok:    true,
		},
		{
			name:  "brace_inside_string_value",
			input: `{"handle": "@a{b}c", "confidence": "low"}`,
			want:  `{"handle": "@a{b}c", "confidence": "low"}`,
			ok:    true,
		},
		{
			name:  "escaped_quote_inside_string",
			input: `{"handle": "@say\"hi\"", "confidence": "low"}`,
			want:  `{"handle": "@say\"hi\"", "confidence": "low"}`,
			ok:    true,
		},
		{
			name:  "first_of_two_objects",
			input: `{"a": 1} {"b": 2}`,
			want:  `{"a": 1}`,
			ok:    true,
		},
		{
			name:  "no_object",
			input: "I could not find a handle.",
			ok:    false,
		},
		{
			name:  "unbalanced_braces",
			input: `{"handle": "@KemenPU"`,
			ok:    false,
		},
		{
			name:  "balanced_but_invalid_json",
			input: `{handle: @KemenPU}`,
			ok:    false,
		},
		{
			name:  "empty_input",
			input: "",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstJSONObject(tt.input)
			if ok != tt.ok {
				t.Fatalf("FirstJSONObject() ok = %v, want %v", ok, tt.ok)
			}
			if tt.ok && string(got) != tt.want {
				t.Errorf("FirstJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}
