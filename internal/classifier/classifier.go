// Package classifier implements rule-based entity extraction and
// categorization for news text. It is pure lookup-table matching: no
// statistical models, no I/O, deterministic output for a given input.
package classifier

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

var (
	tickerPattern     = regexp.MustCompile(`\$([A-Z]{1,10})\b`)
	bareTickerPattern = regexp.MustCompile(`\b([A-Z]{2,5})\b`)
	wordPattern       = regexp.MustCompile(`\b[a-z]{3,}\b`)

	titleCaser = cases.Title(language.Und)

	// Strips combining marks after canonical decomposition, so
	// "Pelé" normalizes to "pele".
	stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Result holds everything extracted from one text.
type Result struct {
	Tickers  []string
	People   []string
	Category models.Category
	Tags     []string
	Markets  []models.MarketRef
}

// Classify extracts tickers, people, category, tags and prediction-market
// references from text. It tolerates empty input and never fails: entity
// extraction must never block ingestion.
func Classify(text string) Result {
	if text == "" {
		return Result{Category: models.CategoryOther}
	}

	tickers := Tickers(text)
	people := People(text)

	return Result{
		Tickers:  tickers,
		People:   people,
		Category: Categorize(text),
		Tags:     Tags(text),
		Markets:  markets(text, tickers, people),
	}
}

// normalize lowercases and strips diacritics so roster and keyword
// matching is accent- and case-insensitive.
func normalize(text string) string {
	out, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Fall back to the raw text; matching stays best-effort.
		out = text
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Tickers extracts ticker symbols. Currency-prefixed tokens ($BTC) are
// kept if they appear in the ticker dictionary; bare uppercase tokens are
// kept only when the dictionary matches and the text carries market
// context. The result is sorted ascending.
func Tickers(text string) []string {
	if text == "" {
		return nil
	}

	found := make(map[string]struct{})

	for _, m := range tickerPattern.FindAllStringSubmatch(text, -1) {
		ticker := strings.ToUpper(m[1])
		if _, ok := allTickers[ticker]; ok {
			found[ticker] = struct{}{}
		}
	}

	lower := strings.ToLower(text)
	hasContext := false
	for _, kw := range tickerContextKeywords {
		if strings.Contains(lower, kw) {
			hasContext = true
			break
		}
	}
	if hasContext {
		for _, m := range bareTickerPattern.FindAllStringSubmatch(text, -1) {
			ticker := strings.ToUpper(m[1])
			if _, ok := allTickers[ticker]; ok {
				found[ticker] = struct{}{}
			}
		}
	}

	if len(found) == 0 {
		return nil
	}
	out := make([]string, 0, len(found))
	for t := range found {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// People extracts roster names by case-insensitive substring match over
// the normalized text. A shorter alias ("musk") matches alongside the
// fuller form ("elon musk") and both are reported; downstream scoring
// relies on this max-over-matches behavior.
func People(text string) []string {
	if text == "" {
		return nil
	}

	normalized := normalize(text)
	seen := make(map[string]struct{})
	var found []string

	for person := range allPeople {
		if strings.Contains(normalized, person) {
			name := titleCaser.String(person)
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			found = append(found, name)
		}
	}

	sort.Strings(found)
	return found
}

// Categorize counts category keyword hits as substrings of the normalized
// text and returns the highest-scoring category. Ties break toward the
// first declared category; zero hits everywhere yields "other".
func Categorize(text string) models.Category {
	if text == "" {
		return models.CategoryOther
	}

	normalized := normalize(text)

	best := models.CategoryOther
	bestScore := 0
	for _, cat := range models.Categories {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(normalized, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	if bestScore == 0 {
		return models.CategoryOther
	}
	return best
}

// Tags runs independent boolean trigger checks against the lowercased
// text. Any subset may apply.
func Tags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string

	if strings.Contains(lower, "breaking") || strings.Contains(lower, "urgent") {
		tags = append(tags, "breaking")
	}
	if strings.Contains(lower, "update") {
		tags = append(tags, "update")
	}
	if strings.Contains(lower, "exclusive") {
		tags = append(tags, "exclusive")
	}
	if strings.Contains(lower, "analysis") || strings.Contains(lower, "opinion") {
		tags = append(tags, "analysis")
	}

	return tags
}

// markets emits one market reference when any known prediction-market
// platform is mentioned, carrying the already-extracted entities.
func markets(text string, tickers, people []string) []models.MarketRef {
	lower := strings.ToLower(text)

	var platforms []string
	for _, p := range marketPlatforms {
		if strings.Contains(lower, p.trigger) {
			platforms = append(platforms, p.name)
		}
	}
	if len(platforms) == 0 {
		return nil
	}

	entities := make([]string, 0, len(tickers)+len(people))
	entities = append(entities, tickers...)
	entities = append(entities, people...)

	return []models.MarketRef{{
		Type:      "prediction_market_related",
		Platforms: platforms,
		Entities:  entities,
	}}
}

// Keywords returns up to max salient keywords: category keywords present
// in the text first, then the most frequent non-stopword words.
func Keywords(text string, max int) []string {
	if text == "" || max <= 0 {
		return nil
	}

	normalized := normalize(text)

	var keywords []string
	seen := make(map[string]struct{})
	for _, cat := range models.Categories {
		for _, kw := range categoryKeywords[cat] {
			if _, dup := seen[kw]; dup {
				continue
			}
			if strings.Contains(normalized, kw) {
				seen[kw] = struct{}{}
				keywords = append(keywords, kw)
			}
		}
	}

	counts := make(map[string]int)
	var order []string
	for _, w := range wordPattern.FindAllString(normalized, -1) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	for _, w := range order {
		if len(keywords) >= max {
			break
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}

	if len(keywords) > max {
		keywords = keywords[:max]
	}
	return keywords
}
