package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// SourceType identifies which adapter produced an event.
type SourceType string

const (
	SourceTimeline SourceType = "timeline"
	SourceFeed     SourceType = "feed"
)

// Category is the rule-based classification bucket for a news item.
// Declaration order matters: category ties are broken by the first
// declared category.
type Category string

const (
	CategoryPolitics  Category = "politics"
	CategoryCrypto    Category = "crypto"
	CategoryEconomics Category = "economics"
	CategorySports    Category = "sports"
	CategoryOther     Category = "other"
)

// Categories lists all categories in tie-break order.
var Categories = []Category{
	CategoryPolitics,
	CategoryCrypto,
	CategoryEconomics,
	CategorySports,
	CategoryOther,
}

// RawEvent is an adapter's output before enrichment. It is handed to the
// ingestion queue exactly once and discarded after processing.
type RawEvent struct {
	Source        SourceType `json:"source"`
	SourceAccount string     `json:"source_account,omitempty"`
	Title         string     `json:"title,omitempty"`
	Content       string     `json:"content"`
	URL           string     `json:"url"`
	// PublishedAt is a free-form timestamp string in one of several
	// upstream formats, or empty.
	PublishedAt string `json:"published_at,omitempty"`
}

// MarketRef is a prediction-market reference detected in an item's text.
type MarketRef struct {
	Type      string   `json:"type"`
	Platforms []string `json:"platforms"`
	Entities  []string `json:"entities"`
}

// NewsItem is the canonical persisted record. It is created once by the
// processor and immutable thereafter.
type NewsItem struct {
	ID            string     `json:"id"`
	Source        SourceType `json:"source"`
	SourceAccount string     `json:"source_account,omitempty"`
	Title         string     `json:"title,omitempty"`
	Content       string     `json:"content"`
	URL           string     `json:"url"`
	PublishedAt   float64    `json:"published_at"`

	ImpactScore    float64 `json:"impact_score"`
	RelevanceScore float64 `json:"relevance_score"`

	Tickers  []string    `json:"tickers"`
	People   []string    `json:"people"`
	Markets  []MarketRef `json:"prediction_markets"`
	Category Category    `json:"category,omitempty"`
	Tags     []string    `json:"tags"`

	// Reserved for content-similarity dedup; never written by the
	// URL-dedup path.
	IsDuplicate  bool   `json:"is_duplicate"`
	DuplicateOf  string `json:"duplicate_of,omitempty"`
	IsHighSignal bool   `json:"is_high_signal"`

	CreatedAt float64 `json:"created_at,omitempty"`
}

// ItemID derives the stable identity of an item from its source and URL.
// The URL is the sole external key; the id is source-prefixed so the same
// URL seen from different source types never collides.
func ItemID(source SourceType, url string) string {
	sum := md5.Sum([]byte(url))
	return fmt.Sprintf("%s_%s", source, hex.EncodeToString(sum[:])[:12])
}

// Text returns title and content joined for matching and scoring.
func (n *NewsItem) Text() string {
	if n.Title == "" {
		return n.Content
	}
	return n.Title + " " + n.Content
}
