// Package similarity provides the interchangeable skill similarity strategies used
// for soft matching. Every strategy returns a value in [0,1] and is pure.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Func scores how alike two canonical skill names are.
type Func func(a, b string) float64

const (
	StrategyLexical   = "lexical"
	StrategyEmbedding = "embedding"
)

// Lexical is the default strategy: the larger of token Jaccard and character
// bigram Dice coefficients. Identical strings score 1.
func Lexical(a, b string) float64 {
	if a == b {
		return 1
	}
	return Clamp(math.Max(TokenJaccard(a, b), BigramDice(a, b)))
}

// TokenJaccard is |A∩B| / |A∪B| over the word tokens of a and b.
func TokenJaccard(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// BigramDice is the Sørensen-Dice coefficient over character bigrams, counted as
// multisets. Separators are ignored, so "node js" and "nodejs" compare equal.
func BigramDice(a, b string) float64 {
	ba, na := bigrams(a)
	bb, nb := bigrams(b)
	if na == 0 || nb == 0 {
		return 0
	}

	shared := 0
	for gram, ca := range ba {
		shared += min(ca, bb[gram])
	}
	return 2 * float64(shared) / float64(na+nb)
}

// Clamp forces v into [0,1]. NaN becomes 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ErrNeedsTable is returned by ByName for strategies backed by precomputed vectors.
// Their function comes from Table.Func once the vectors are fetched.
var ErrNeedsTable = errors.New("similarity strategy requires precomputed vectors")

// ByName resolves a configured strategy name.
func ByName(name string) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyLexical:
		return Lexical, nil
	case StrategyEmbedding:
		return nil, fmt.Errorf("%s: %w", StrategyEmbedding, ErrNeedsTable)
	default:
		return nil, fmt.Errorf("unknown similarity strategy %q", name)
	}
}

func tokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(s, isSeparator) {
		out[f] = struct{}{}
	}
	return out
}

func bigrams(s string) (map[string]int, int) {
	runes := make([]rune, 0, len(s))
	for _, r := range s {
		if !isSeparator(r) {
			runes = append(runes, r)
		}
	}
	if len(runes) < 2 {
		return nil, 0
	}

	out := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		out[string(runes[i:i+2])]++
	}
	return out, len(runes) - 1
}

func isSeparator(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#')
}
