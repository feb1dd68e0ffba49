package models

// Websocket message types exchanged with subscribers.
const (
	MessageTypeNewsItem  = "news_item"
	MessageTypeKeepAlive = "keep_alive"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeSubscribe = "subscribe"
)

// Envelope is the outbound websocket message shape.
type Envelope struct {
	Type      string    `json:"type"`
	Data      *NewsItem `json:"data,omitempty"`
	Timestamp float64   `json:"timestamp"`
}

// ControlMessage is an inbound client message on the websocket.
type ControlMessage struct {
	Type string `json:"type"`
}

// Stats summarizes the persisted store and the live system for the stats
// endpoint.
type Stats struct {
	TotalNewsItems    int     `json:"total_news_items"`
	ItemsLast24h      int     `json:"items_last_24h"`
	AverageImpact     float64 `json:"average_impact"`
	ActiveConnections int     `json:"active_connections"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
	Version           string  `json:"version"`
	// Endpoints maps timeline endpoint URLs to their last probe result.
	Endpoints map[string]bool `json:"endpoints,omitempty"`
	// TrendingKeywords are extracted from recent item titles.
	TrendingKeywords []string `json:"trending_keywords,omitempty"`
}
