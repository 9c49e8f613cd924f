// Package querystring escapes and unescapes free-text engine queries and
// applies the wildcard/fuzzy "fuzzify" transform to bare query terms.
package querystring

// The backslash must come first: escaping introduces backslashes, so it has
// to be processed before any other character.
var specialChars = []string{`\`, "+", "-", "=", "&&", "||", ">", "<", "!", "(", ")", "{", "}", "[", "]", `"`, "^", "~", "*", "?", ":", "/"}

// specialCharsSubset omits * and " so users can still write wildcard and
// phrase queries.
var specialCharsSubset = []string{`\`, "+", "-", "=", "&&", "||", ">", "<", "!", "(", ")", "{", "}", "[", "]", "^", "~", "?", ":", "/"}

// pairs must occur an even number of times or they are escaped.
var pairs = []string{`"`}

// First matching suffix wins, so the order is significant.
var distanceUnits = []string{"km", "mi", "miles", "in", "inch", "yd", "yards", "kilometers", "mm", "millimeters", "cm", "centimeters", "m", "meters"}

// SpecialChars returns the full ordered reserved-character set.
func SpecialChars() []string { return append([]string(nil), specialChars...) }

// SpecialCharsSubset returns the reserved set without * and ".
func SpecialCharsSubset() []string { return append([]string(nil), specialCharsSubset...) }

// Pairs returns the characters that must appear in even counts.
func Pairs() []string { return append([]string(nil), pairs...) }

// DistanceUnits returns the ordered distance-unit vocabulary.
func DistanceUnits() []string { return append([]string(nil), distanceUnits...) }
