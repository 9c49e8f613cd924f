package querystring

import (
	"strings"
)

// Fuzzify modes.
const (
	ModeWildcard = "*"
	ModeFuzzy    = "~"
)

// Escape prefixes every occurrence of the reserved characters with a
// backslash, in table order.
func Escape(text string) string {
	return escapeWith(text, specialChars)
}

// EscapeFreeText escapes user input but leaves * and " alone so wildcard and
// phrase syntax keeps working. Quotes are escaped after all when their count
// is odd, since an unbalanced quote would break the engine's parser.
func EscapeFreeText(text string) string {
	out := escapeWith(text, specialCharsSubset)
	for _, p := range pairs {
		if strings.Count(out, p)%2 != 0 {
			out = strings.ReplaceAll(out, p, `\`+p)
		}
	}
	return out
}

func escapeWith(text string, chars []string) string {
	for _, c := range chars {
		text = strings.ReplaceAll(text, c, `\`+c)
	}
	return text
}

// Unescape removes one backslash in front of each reserved character,
// processing the full set in table order. It inverts Escape exactly.
func Unescape(text string) string {
	for _, c := range specialChars {
		text = strings.ReplaceAll(text, `\`+c, c)
	}
	return text
}

// Fuzzify appends mode to every bare term of text, and for "*" also
// prepends it. Text that already uses *, ~ or field syntax is returned
// unchanged, as is any mode other than "*" or "~". The result keeps a
// trailing space after the last term.
func Fuzzify(text, mode string) string {
	if mode != ModeWildcard && mode != ModeFuzzy {
		return text
	}
	if strings.ContainsAny(text, "*~:") {
		return text
	}

	var b strings.Builder
	for _, part := range strings.Split(text, " ") {
		if part == "" {
			continue
		}
		if mode == ModeWildcard {
			b.WriteString(mode)
		}
		b.WriteString(part)
		b.WriteString(mode)
		b.WriteByte(' ')
	}
	return b.String()
}

// StripDistanceUnit removes the first matching unit suffix from value.
func StripDistanceUnit(value string) string {
	for _, unit := range distanceUnits {
		if strings.HasSuffix(value, unit) {
			return strings.TrimSuffix(value, unit)
		}
	}
	return value
}
