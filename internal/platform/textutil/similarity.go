package textutil

import "strings"

// DiceCoefficient is the Sørensen-Dice similarity of the character bigrams of
// the two values after normalization, ignoring whitespace. Identical inputs
// score 1, inputs shorter than two characters score 0 unless identical.
func DiceCoefficient(a, b string) float64 {
	first := Compact(a)
	second := Compact(b)
	if first == second {
		if first == "" {
			return 0
		}
		return 1
	}
	if len(first) < 2 || len(second) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(first))
	for i := 0; i < len(first)-1; i++ {
		bigrams[first[i:i+2]]++
	}

	intersection := 0
	for i := 0; i < len(second)-1; i++ {
		pair := second[i : i+2]
		if count := bigrams[pair]; count > 0 {
			bigrams[pair] = count - 1
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(first)+len(second)-2)
}

// Jaccard is the token-set Jaccard index of the two values.
func Jaccard(a, b string) float64 {
	left := tokenSet(a)
	right := tokenSet(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	intersection := 0
	for token := range left {
		if _, ok := right[token]; ok {
			intersection++
		}
	}
	union := len(left) + len(right) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// SubstringScore rewards one normalized value fully containing the other. The
// shorter side must be at least three characters.
func SubstringScore(a, b string) float64 {
	first := Normalize(a)
	second := Normalize(b)
	if first == "" || second == "" {
		return 0
	}
	short, long := first, second
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) < 3 || !strings.Contains(long, short) {
		return 0
	}
	return 0.7 + 0.3*float64(len(short))/float64(len(long))
}

// NameSimilarity combines Jaccard, substring containment and Dice into a
// single 0..1 score by taking the strongest signal.
func NameSimilarity(a, b string) float64 {
	if Normalize(a) == "" || Normalize(b) == "" {
		return 0
	}
	if Normalize(a) == Normalize(b) {
		return 1
	}
	best := DiceCoefficient(a, b)
	if j := Jaccard(a, b); j > best {
		best = j
	}
	if s := SubstringScore(a, b); s > best {
		best = s
	}
	return best
}

// BestMatch returns the index and Dice score of the candidate most similar to value.
func BestMatch(value string, candidates []string) (int, float64) {
	bestIdx := -1
	bestScore := 0.0
	for i, candidate := range candidates {
		score := DiceCoefficient(value, candidate)
		if score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	return bestIdx, bestScore
}

func tokenSet(value string) map[string]struct{} {
	tokens := Tokens(value)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}
