package fanout

import (
	"strings"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

// Matches evaluates a subscription filter against a news item. A nil
// filter matches everything. Empty filter lists impose no constraint;
// the impact threshold is inclusive.
func Matches(f *models.SubscriptionFilter, item *models.NewsItem) bool {
	if f == nil {
		return true
	}

	if f.ImpactThreshold > 0 && item.ImpactScore < float64(f.ImpactThreshold) {
		return false
	}

	if len(f.Categories) > 0 && !containsString(f.Categories, string(item.Category)) {
		return false
	}

	// Account allow-lists are scoped to the event's source type and
	// matched as case-insensitive substrings of the source account.
	if len(f.TimelineAccounts) > 0 && item.Source == models.SourceTimeline {
		if !anySubstring(f.TimelineAccounts, item.SourceAccount) {
			return false
		}
	}
	if len(f.FeedSources) > 0 && item.Source == models.SourceFeed {
		if !anySubstring(f.FeedSources, item.SourceAccount) {
			return false
		}
	}

	if len(f.Keywords) > 0 {
		content := strings.ToLower(item.Text())

		keywordHit := false
		for _, kw := range f.Keywords {
			if strings.Contains(content, strings.ToLower(kw)) {
				keywordHit = true
				break
			}
		}

		tickerHit := false
		if !keywordHit {
			for _, kw := range f.Keywords {
				for _, t := range item.Tickers {
					if strings.EqualFold(kw, t) {
						tickerHit = true
						break
					}
				}
				if tickerHit {
					break
				}
			}
		}

		if !keywordHit && !tickerHit {
			return false
		}
	}

	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func anySubstring(list []string, target string) bool {
	targetLower := strings.ToLower(target)
	for _, s := range list {
		if strings.Contains(targetLower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
