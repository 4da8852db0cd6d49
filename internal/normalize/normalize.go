// Package normalize maps free-text item names onto canonical keys so that
// "Cement Bags", "cement-bag" and "CEMENT BAG" all land on the same inventory
// line. Keys are for matching only and are never displayed.
package normalize

import "strings"

var quoteReplacer = strings.NewReplacer(
	`"`, "", "'", "",
	"‘", "", "’", "", // curly single quotes
	"“", "", "”", "", // curly double quotes
)

// Key returns the canonical key for a raw item name. Empty input yields an
// empty key. The transform is idempotent.
func Key(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = quoteReplacer.Replace(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")

	return singularize(s)
}

// singularize strips a plural suffix from the trailing word. The rules fire
// in fixed order and at most one fires.
func singularize(s string) string {
	if len(s) < 4 {
		return s
	}

	switch {
	case strings.HasSuffix(s, "oes"):
		// tomatoes -> tomato
		return strings.TrimSuffix(s, "es")
	case strings.HasSuffix(s, "ies"):
		// cherries -> cherry
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "ves"):
		// leaves -> leaf
		return strings.TrimSuffix(s, "ves") + "f"
	case hasSibilantESSuffix(s):
		// boxes -> box, glasses -> glass, benches -> bench
		return strings.TrimSuffix(s, "es")
	case strings.HasSuffix(s, "ss"), strings.HasSuffix(s, "us"):
		// grass, citrus: not plurals
		return s
	case strings.HasSuffix(s, "s"):
		// apples -> apple
		return strings.TrimSuffix(s, "s")
	}
	return s
}

// hasSibilantESSuffix reports whether s ends in an "es" that follows a
// sibilant stem (x, s, z, ch, sh). Only those stems take an "es" plural, so
// "apples" is left for the plain "s" rule instead of becoming "appl".
func hasSibilantESSuffix(s string) bool {
	for _, suffix := range []string{"xes", "ses", "zes", "ches", "shes"} {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
