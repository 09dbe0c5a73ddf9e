package domain

import "strings"

// TokenID names a priced asset. Only the identifiers in supportedTokens are valid.
type TokenID string

const (
	Ethereum   TokenID = "ethereum"
	Celo       TokenID = "celo"
	GoodDollar TokenID = "gooddollar"
)

var supportedTokens = []TokenID{Ethereum, Celo, GoodDollar}

// Short route names used by the dedicated per-token endpoints.
var tokenSlugs = map[string]TokenID{
	"eth":        Ethereum,
	"celo":       Celo,
	"gooddollar": GoodDollar,
}

// SupportedTokens returns the closed set of tokens in display order.
func SupportedTokens() []TokenID {
	out := make([]TokenID, len(supportedTokens))
	copy(out, supportedTokens)
	return out
}

func (t TokenID) Valid() bool {
	for _, s := range supportedTokens {
		if s == t {
			return true
		}
	}
	return false
}

// Slug returns the per-token route name for t.
func (t TokenID) Slug() string {
	for slug, id := range tokenSlugs {
		if id == t {
			return slug
		}
	}
	return string(t)
}

func ParseTokenID(s string) (TokenID, bool) {
	t := TokenID(strings.TrimSpace(s))
	return t, t.Valid()
}

// TokenBySlug resolves a per-token route name ("eth", "celo", "gooddollar").
func TokenBySlug(slug string) (TokenID, bool) {
	t, ok := tokenSlugs[strings.ToLower(slug)]
	return t, ok
}

// FilterSupported trims every requested identifier and keeps the supported ones,
// preserving first-seen order and dropping duplicates.
func FilterSupported(requested []string) []TokenID {
	seen := make(map[TokenID]bool, len(requested))
	out := make([]TokenID, 0, len(requested))
	for _, raw := range requested {
		t, ok := ParseTokenID(raw)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SupportedList renders the supported set as "a, b, c".
func SupportedList() string {
	names := make([]string, len(supportedTokens))
	for i, t := range supportedTokens {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
