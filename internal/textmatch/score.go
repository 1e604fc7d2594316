package textmatch

import (
	"strings"
	"unicode/utf8"
)

const (
	ExactScore           = 1.0
	NormalizedCeiling    = 0.95
	NormalizationPenalty = 0.1
	ContainsCeiling      = 0.8
	ContainsPenalty      = 0.2
	ReverseContainsScore = 0.6
	RawContainsCeiling   = 0.4
	RawContainsPenalty   = 0.2
)

// Score returns a similarity in [0,1] between query and candidate. Blank input
// scores 0. The tiers never overlap, so a higher tier always outranks a lower one.
func Score(query, candidate string) float64 {
	rawQuery := strings.ToLower(strings.TrimSpace(query))
	rawCandidate := strings.ToLower(strings.TrimSpace(candidate))
	if rawQuery == "" || rawCandidate == "" {
		return 0
	}
	if rawQuery == rawCandidate {
		return ExactScore
	}

	normQuery := Normalize(rawQuery)
	normCandidate := Normalize(rawCandidate)
	queryLen := utf8.RuneCountInString(normQuery)
	candidateLen := utf8.RuneCountInString(normCandidate)

	if queryLen > 0 && candidateLen > 0 {
		if normQuery == normCandidate {
			original := utf8.RuneCountInString(rawQuery) + utf8.RuneCountInString(rawCandidate)
			removed := original - queryLen - candidateLen
			if removed < 0 {
				removed = 0
			}
			return NormalizedCeiling - NormalizationPenalty*float64(removed)/float64(original)
		}
		if strings.Contains(normCandidate, normQuery) {
			penalty := float64(candidateLen-queryLen) / float64(candidateLen)
			return ContainsCeiling - ContainsPenalty*penalty
		}
		if strings.Contains(normQuery, normCandidate) {
			return ReverseContainsScore
		}
	}

	if strings.Contains(rawCandidate, rawQuery) || strings.Contains(rawQuery, rawCandidate) {
		a := utf8.RuneCountInString(rawQuery)
		b := utf8.RuneCountInString(rawCandidate)
		diff, longest := a-b, a
		if diff < 0 {
			diff = -diff
		}
		if b > longest {
			longest = b
		}
		return RawContainsCeiling - RawContainsPenalty*float64(diff)/float64(longest)
	}
	return 0
}

// Best returns the index and score of the highest scoring candidate. The first
// candidate wins ties. It returns -1 when candidates is empty.
func Best(query string, candidates []string) (int, float64) {
	best, bestScore := -1, 0.0
	for i, candidate := range candidates {
		score := Score(query, candidate)
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}
