package extract

import (
	"strings"
	"unicode"
)

// Default denylists. Sponsor rules drop whole sub-products, item rules drop
// kit items that are not sized merchandise (accessories, add-ons, terms).
var (
	DefaultSponsorRules = []string{"patrocinador"}
	DefaultItemRules    = []string{
		"termo",
		"distância",
		"bateria",
		"moletom",
		"mochila",
		"boné",
		"jaqueta",
		"aceite",
		"personalização de camiseta",
		"viseira",
	}
)

// Rules is a denylist of substrings compared without case or whitespace, so
// "personalização de camiseta" and "Personalização De Camiseta" match the
// same rule.
type Rules struct {
	terms []string
}

// NewRules builds a denylist from raw terms. Blank terms are dropped and
// duplicates collapse.
func NewRules(terms ...string) Rules {
	r := Rules{terms: make([]string, 0, len(terms))}
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = normalize(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		r.terms = append(r.terms, t)
	}
	return r
}

// Match reports whether any rule is a substring of name.
func (r Rules) Match(name string) bool {
	if name == "" || len(r.terms) == 0 {
		return false
	}
	n := normalize(name)
	for _, t := range r.terms {
		if strings.Contains(n, t) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct rules.
func (r Rules) Len() int { return len(r.terms) }

// Terms returns a copy of the normalized rules.
func (r Rules) Terms() []string {
	out := make([]string, len(r.terms))
	copy(out, r.terms)
	return out
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
