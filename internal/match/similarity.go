package match

import "github.com/agext/levenshtein"

// ratioParams uses substitution cost 2, which makes the distance a pure
// insert/delete count. Normalizing that by the combined length reproduces
// the classic 0-100 fuzzy ratio.
var ratioParams = levenshtein.NewParams().SubCost(2)

// Ratio is the normalized edit-distance similarity between two strings,
// 0 (no match) to 100 (identical). Symmetric in its arguments.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	d := levenshtein.Distance(a, b, ratioParams)
	return 100 * (1 - float64(d)/float64(len(ra)+len(rb)))
}
