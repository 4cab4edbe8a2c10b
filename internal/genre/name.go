// Package genre provides genre name normalization for the catalog.
package genre

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// escaper mirrors the sanitizer applied to submitted names: every character
// that carries meaning in HTML is replaced with its entity so a stored name
// can be rendered anywhere without further escaping.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// NormalizeName canonicalizes a submitted genre name:
// Unicode NFC composition, whitespace trim, then markup escaping.
// It never lowercases - name uniqueness is case-sensitive.
// Pure transformation; rule checks happen in the validation layer.
func NormalizeName(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.TrimSpace(s)
	return escaper.Replace(s)
}
