package processor

import (
	"strings"
	"time"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

// Scoring weights. The four sub-scores are each in [0,10]; the weighted
// sum is scaled by 10 into [0,100].
const (
	weightSource  = 0.20
	weightEntity  = 0.30
	weightKeyword = 0.30
	weightRecency = 0.20

	defaultSubScore = 5.0
)

// sourceAuthorityScores maps source identity substrings to credibility.
// Top-tier wire services score highest; longest match wins.
var sourceAuthorityScores = map[string]float64{
	"reuters":             10,
	"ap":                  10,
	"associated press":    10,
	"wsj":                 8,
	"wall street journal": 8,
	"bloomberg":           8,
	"cnbc":                6,
	"timeline":            5,
	"twitter":             5,
	"x.com":               5,
}

// entityImportanceScores maps person names to importance. Matching is
// case-insensitive substring over the extracted people; the max match
// wins.
var entityImportanceScores = map[string]float64{
	"fed chair":         10,
	"fed chairman":      10,
	"jerome powell":     10,
	"joe biden":         10,
	"president biden":   10,
	"donald trump":      10,
	"president trump":   10,
	"elon musk":         8,
	"michael saylor":    8,
	"balaji srinivasan": 8,
	"vitalik buterin":   8,
	"gary gensler":      8,
	"jamie dimon":       8,
	"larry fink":        8,
	"warren buffett":    8,
	"janet yellen":      8,
}

// keywordRelevanceScores maps urgency keywords to relevance.
var keywordRelevanceScores = map[string]float64{
	"breaking":     10,
	"urgent":       10,
	"alert":        10,
	"major":        8,
	"significant":  8,
	"important":    8,
	"update":       8,
	"exclusive":    8,
	"report":       5,
	"news":         5,
	"announcement": 5,
}

// impactScore computes the rule-based impact score for an enriched item,
// clamped to [0,100].
func impactScore(item *models.NewsItem, now time.Time) float64 {
	score := scoreSource(item)*weightSource +
		scoreEntities(item)*weightEntity +
		scoreKeywords(item)*weightKeyword +
		scoreRecency(item, now)*weightRecency

	score *= 10
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// scoreSource looks up source type and account against the authority
// table, preferring the longest matching key. Unmatched sources get the
// mid score.
func scoreSource(item *models.NewsItem) float64 {
	sourceLower := strings.ToLower(string(item.Source))
	accountLower := strings.ToLower(item.SourceAccount)

	best := defaultSubScore
	bestLen := 0
	for key, score := range sourceAuthorityScores {
		if strings.Contains(sourceLower, key) || strings.Contains(accountLower, key) {
			if len(key) > bestLen {
				best = score
				bestLen = len(key)
			}
		}
	}
	return best
}

// scoreEntities takes the max importance over the extracted people.
func scoreEntities(item *models.NewsItem) float64 {
	if len(item.People) == 0 {
		return defaultSubScore
	}

	max := 0.0
	for _, person := range item.People {
		personLower := strings.ToLower(person)
		for entity, score := range entityImportanceScores {
			if strings.Contains(personLower, entity) && score > max {
				max = score
			}
		}
	}
	if max == 0 {
		return defaultSubScore
	}
	return max
}

// scoreKeywords takes the max urgency-keyword relevance over
// title+content.
func scoreKeywords(item *models.NewsItem) float64 {
	text := strings.ToLower(item.Text())

	max := 0.0
	for keyword, score := range keywordRelevanceScores {
		if strings.Contains(text, keyword) && score > max {
			max = score
		}
	}
	if max == 0 {
		return defaultSubScore
	}
	return max
}

// scoreRecency is a step function of age-since-published in hours.
func scoreRecency(item *models.NewsItem, now time.Time) float64 {
	ageHours := (float64(now.UnixNano())/1e9 - item.PublishedAt) / 3600

	switch {
	case ageHours < 1:
		return 10
	case ageHours < 6:
		return 8
	case ageHours < 24:
		return 5
	case ageHours < 48:
		return 3
	default:
		return 1
	}
}
