package translation

import (
	"strings"

	"golang.org/x/text/language"
)

// Normalizer maps service language codes onto the codes the relay stores.
type Normalizer struct {
	collapse map[string]bool
}

// NewNormalizer collapses regional variants of the given base languages to
// the bare base code. English variants are always collapsed.
func NewNormalizer(prefixes []string) *Normalizer {
	n := &Normalizer{collapse: map[string]bool{English: true}}
	for _, p := range prefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			n.collapse[p] = true
		}
	}
	return n
}

// Normalize returns the canonical code for code. Empty input yields English.
// Codes that do not parse as BCP 47 are matched by prefix. Anything else
// is returned as given.
func (n *Normalizer) Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return English
	}

	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err == nil {
		base, _ := tag.Base()
		if n.collapse[base.String()] {
			return base.String()
		}
		return code
	}

	lower := strings.ToLower(code)
	for prefix := range n.collapse {
		if strings.HasPrefix(lower, prefix) {
			return prefix
		}
	}
	return code
}
