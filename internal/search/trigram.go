package search

import (
	"regexp"
	"slices"
	"strings"
)

var nonWord = regexp.MustCompile(`\W+`)

// TrigramSorensenDiceSimilarity compares the unique word trigrams of a and b.
// The result lies in [0, 1]; 1 means both strings share all trigrams.
func TrigramSorensenDiceSimilarity(a, b string) float64 {
	aTrigrams := TransformToUniqueTrigrams(a)
	bTrigrams := TransformToUniqueTrigrams(b)

	aCount, bCount := len(aTrigrams), len(bTrigrams)
	if aCount+bCount == 0 {
		return 0
	}

	aSet := make(map[string]struct{}, aCount)
	for _, v := range aTrigrams {
		aSet[v] = struct{}{}
	}

	var intersectionCount int
	for _, v := range bTrigrams {
		if _, ok := aSet[v]; ok {
			intersectionCount++
		}
	}

	// Sorensen-Dice coefficient
	//   SDC = 2 * |A ∩ B| / (|A| + |B|)
	return 2 * float64(intersectionCount) / float64(aCount+bCount)
}

// TransformToUniqueTrigrams splits a into lower-cased words and returns the sorted set of
// their trigrams. Each word is padded with two leading blanks and one trailing blank,
// so "go" yields "  g", " go" and "go ".
func TransformToUniqueTrigrams(a string) []string {
	if len(a) == 0 {
		return []string{}
	}

	words := nonWord.Split(a, -1)

	// a word of n characters yields n+1 trigrams
	var trigramCount int
	for _, word := range words {
		trigramCount += 1 + len(word)
	}
	uniqueTrigrams := make(map[string]struct{}, trigramCount)

	for _, word := range words {
		if len(word) == 0 {
			continue
		}

		padded := "  " + strings.ToLower(word) + " "
		for i := 0; i+3 <= len(padded); i++ {
			uniqueTrigrams[padded[i:i+3]] = struct{}{}
		}
	}

	trigrams := make([]string, 0, len(uniqueTrigrams))
	for t := range uniqueTrigrams {
		trigrams = append(trigrams, t)
	}
	slices.Sort(trigrams)

	return trigrams
}
