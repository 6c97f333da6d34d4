package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// ResolveName finds the candidate that `name` refers to. Exact matches after
// normalization win, otherwise the most similar candidate (Jaro-Winkler) is
// returned if its similarity is at least `threshold`.
func ResolveName(name string, candidates []string, threshold float64) (string, float64, bool) {
	normalized := NormalizeName(name)
	for _, c := range candidates {
		if NormalizeName(c) == normalized {
			return c, 1, true
		}
	}

	var mostSimilarity float64
	var mostSimilar string
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(normalized, NormalizeName(c), false)
		if similarity > mostSimilarity {
			mostSimilarity = similarity
			mostSimilar = c
		}
	}
	if mostSimilar == "" || mostSimilarity < threshold {
		return "", mostSimilarity, false
	}
	return mostSimilar, mostSimilarity, true
}
