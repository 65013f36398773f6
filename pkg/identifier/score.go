package identifier

import "strings"

// score.go implements candidate scoring (§4.D): exact-title and
// year-match bonuses plus a popularity tiebreak, with a short-title
// cutoff that filters out candidates too ambiguous to trust.

const shortTitleCutoff = 3

// candidateInput is the minimal shape ScoreResult needs, so it stays
// independent of pkg/metadata's wire-shaped Candidate type.
type candidateInput struct {
	title      string
	year       string
	popularity float64
}

// ScoreResult computes the composite score for one candidate against the
// cleaned query title/year, returning (score, passesFilter).
func ScoreResult(c candidateInput, queryTitle, queryYear string) (float64, bool) {
	score := c.popularity

	exactMatch := strings.EqualFold(strings.TrimSpace(c.title), strings.TrimSpace(queryTitle))
	yearMatch := queryYear != "" && c.year == queryYear

	if exactMatch {
		score += 1000
	}
	if yearMatch {
		score += 500
	}

	if len(strings.TrimSpace(c.title)) <= shortTitleCutoff && !(exactMatch && yearMatch) {
		return 0, false
	}

	return score, true
}
