package social

import "encoding/json"

// FirstJSONObject finds the first balanced {...} span in free-form model
// output and returns it if it parses as JSON. On any failure (no opening
// brace, unbalanced braces, invalid JSON) it returns ok=false. Brace matching
// is string-aware so braces inside quoted values do not affect the balance.
func FirstJSONObject(s string) ([]byte, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if start == -1 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					span := []byte(s[start : i+1])
					if json.Valid(span) {
						return span, true
					}
					return nil, false
				}
			}
		}
	}
	return nil, false
}
