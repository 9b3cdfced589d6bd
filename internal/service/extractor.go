package service

import (
	"regexp"
	"strconv"
	"strings"

	"dantechat/internal/model"
)

// FilterExtractor scans lowercased user text for search constraints. It is
// pattern matching only; anything ambiguous simply yields fewer filter keys.
type FilterExtractor struct {
	neighborhoods []string // curated known names, lowercased
}

// NewFilterExtractor creates an extractor seeded with the known neighborhood names
func NewFilterExtractor(neighborhoods []string) *FilterExtractor {
	known := make([]string, 0, len(neighborhoods))
	for _, n := range neighborhoods {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			known = append(known, n)
		}
	}
	return &FilterExtractor{neighborhoods: known}
}

var (
	neighborhoodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`en ([a-záéíóúñü ]+)`),
		regexp.MustCompile(`barrio ([a-záéíóúñü ]+)`),
		regexp.MustCompile(`zona ([a-záéíóúñü ]+)`),
		regexp.MustCompile(`de ([a-záéíóúñü ]+)$`),
	}

	maxPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`hasta \$?\s*([0-9.]+)`),
		regexp.MustCompile(`máximo \$?\s*([0-9.]+)`),
		regexp.MustCompile(`menos de \$?\s*([0-9.]+)`),
		regexp.MustCompile(`precio.*?\$?\s*([0-9.]+)`),
	}

	minPricePattern = regexp.MustCompile(`desde \$?\s*([0-9.]+)`)
	roomsPattern    = regexp.MustCompile(`(\d+)\s*amb`)
)

// operationKeywords maps trigger words to the canonical operation value.
// Order matters: first matching set wins.
var operationKeywords = []struct {
	words []string
	value string
}{
	{[]string{"alquiler", "alquilar", "renta"}, model.OperacionAlquiler},
	{[]string{"venta", "comprar", "compra", "vender"}, model.OperacionVenta},
	{[]string{"temporario", "temporal", "temporada"}, model.OperacionTemporario},
}

// tipoKeywords maps trigger words to the canonical property type.
var tipoKeywords = []struct {
	words []string
	value string
}{
	{[]string{"departamento", "depto"}, "departamento"},
	{[]string{"casaquinta"}, "casaquinta"},
	{[]string{"casa"}, "casa"},
	{[]string{"ph"}, "ph"},
	{[]string{"terreno", "terrenos"}, "terreno"},
}

// Extract produces a partial filter set from free text. Each field is
// detected independently; a field with no positive match is left unset.
func (e *FilterExtractor) Extract(text string) *model.Filters {
	text = strings.ToLower(strings.TrimSpace(text))
	filters := &model.Filters{}
	if text == "" {
		return filters
	}

	if n := e.extractNeighborhood(text); n != "" {
		filters.Neighborhood = &n
	}
	if max, ok := extractNumber(text, maxPricePatterns...); ok {
		filters.MaxPrice = &max
	}
	if min, ok := extractNumber(text, minPricePattern); ok {
		filters.MinPrice = &min
	}
	if m := roomsPattern.FindStringSubmatch(text); m != nil {
		if rooms, err := strconv.Atoi(m[1]); err == nil {
			filters.MinRooms = &rooms
		}
	}
	if op := matchKeyword(text, operationKeywords); op != "" {
		filters.Operacion = &op
	}
	if tipo := matchKeyword(text, tipoKeywords); tipo != "" {
		filters.Tipo = &tipo
	}

	return filters
}

// extractNeighborhood tries the known-name set first, then falls back to the
// "en X" / "barrio X" / "zona X" / trailing "de X" patterns. A fallback
// capture that is really an operation keyword is rejected.
func (e *FilterExtractor) extractNeighborhood(text string) string {
	for _, known := range e.neighborhoods {
		if containsWord(text, known) {
			return known
		}
	}

	for _, pattern := range neighborhoodPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		capture := strings.TrimSpace(m[1])
		if capture == "" || isOperationKeyword(capture) {
			continue
		}
		return capture
	}
	return ""
}

func isOperationKeyword(s string) bool {
	for _, set := range operationKeywords {
		for _, w := range set.words {
			if s == w {
				return true
			}
		}
	}
	return false
}

// extractNumber returns the first numeric capture across the patterns, with
// "." thousands separators stripped.
func extractNumber(text string, patterns ...*regexp.Regexp) (float64, bool) {
	for _, pattern := range patterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ".", "")
		if raw == "" {
			continue
		}
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || value < 0 {
			continue
		}
		return float64(value), true
	}
	return 0, false
}

func matchKeyword(text string, sets []struct {
	words []string
	value string
}) string {
	for _, set := range sets {
		for _, w := range set.words {
			if containsWord(text, w) {
				return set.value
			}
		}
	}
	return ""
}

// containsWord reports whether text contains word bounded by non-letter
// characters, so "casa" does not fire inside "casaquinta".
func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isLetter(rune(text[start-1]))
		afterOK := end == len(text) || !isLetter(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x80
}
