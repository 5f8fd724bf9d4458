// Package text holds the string rules shared by the loader, the store and the
// CSV codec: accent folding, slugs, location labels and pt-BR ordering.
package text

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const blocoPrefix = "BLOCO "

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	// The ordinal mark shows up both well-formed (º, °, ª) and as the
	// mojibake "¬∫" left by a Latin-1 round trip in older exports.
	andarSuffix = regexp.MustCompile(`(?i)\s*(?:¬∫|º|°|ª)?\s*ANDAR`)
)

// Fold lowercases s, strips combining marks and trims it, so that
// "Administração" and "administracao" compare equal.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.TrimSpace(folded)
}

// Slugify derives a URL-safe key: folded, non-alphanumerics collapsed to a
// single dash, no leading or trailing dash.
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(Fold(s), "-"), "-")
}

// NormalizeBloco removes a leading "BLOCO " label ("BLOCO 2" -> "2").
func NormalizeBloco(bloco string) string {
	if len(bloco) >= len(blocoPrefix) && strings.EqualFold(bloco[:len(blocoPrefix)], blocoPrefix) {
		return strings.TrimSpace(bloco[len(blocoPrefix):])
	}
	return bloco
}

// NormalizeAndar removes the first " ANDAR" suffix together with an optional
// ordinal mark ("3º ANDAR" -> "3"). Values without " ANDAR" are kept as is.
func NormalizeAndar(andar string) string {
	if !strings.Contains(strings.ToUpper(andar), " ANDAR") {
		return andar
	}
	loc := andarSuffix.FindStringIndex(andar)
	if loc == nil {
		return andar
	}
	return strings.TrimSpace(andar[:loc[0]] + andar[loc[1]:])
}

// SplitList splits a "; "-joined multi-value cell, dropping blanks.
func SplitList(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CleanList trims every entry and drops the blank ones.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SortBy sorts items in place by key using Brazilian Portuguese collation.
// The sort is stable so equal names keep their previous relative order.
func SortBy[T any](items []T, key func(T) string) {
	col := collate.New(language.BrazilianPortuguese)
	slices.SortStableFunc(items, func(a, b T) int {
		return col.CompareString(key(a), key(b))
	})
}

// UniqueSorted returns the distinct non-empty values in collation order.
func UniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	SortBy(out, func(s string) string { return s })
	return out
}
