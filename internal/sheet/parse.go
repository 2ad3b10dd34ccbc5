package sheet

import "strings"

// ParseLine splits one line of comma-separated text into fields. Quote state
// toggles on every double quote, so a comma inside an open quote is literal
// text. Doubled-quote escaping is not supported: a "" sequence closes and
// reopens the quote instead of yielding a literal quote character.
func ParseLine(line string) []string {
	fields := make([]string, 0, 8)
	start := 0
	inQuotes := false

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				fields = append(fields, cleanField(line[start:i]))
				start = i + 1
			}
		}
	}
	// The last field has no trailing delimiter.
	fields = append(fields, cleanField(line[start:]))

	return fields
}

func cleanField(raw string) string {
	v := strings.TrimSpace(raw)
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = v[1 : len(v)-1]
	}
	return v
}

// SplitLines breaks retrieved text into non-blank trimmed lines. ParseLine
// treats an empty line as a single empty field, so blank filtering happens
// here, before parsing.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
