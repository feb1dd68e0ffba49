package models

// DefaultImpactThreshold is applied when a subscription does not set one.
const DefaultImpactThreshold = 70

// SubscriptionFilter is a per-user delivery filter. It is owned by the
// subscription CRUD surface; the fan-out stage only reads it. A connected
// user with no filter on record matches everything.
type SubscriptionFilter struct {
	UserID           string   `json:"user_id"`
	TimelineAccounts []string `json:"timeline_accounts"`
	FeedSources      []string `json:"feed_sources"`
	Categories       []string `json:"categories"`
	Keywords         []string `json:"keywords"`
	ImpactThreshold  int      `json:"impact_threshold"`
	AlertChannels    []string `json:"alert_channels"`
	CreatedAt        float64  `json:"created_at,omitempty"`
	UpdatedAt        float64  `json:"updated_at,omitempty"`
}

// HasAlertChannel reports whether the filter lists the named channel.
func (s *SubscriptionFilter) HasAlertChannel(name string) bool {
	for _, c := range s.AlertChannels {
		if c == name {
			return true
		}
	}
	return false
}
