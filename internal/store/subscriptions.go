package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

// GetFilter returns the subscription filter for a user, or (nil, nil)
// when none exists.
func (s *PostgresStore) GetFilter(ctx context.Context, userID string) (*models.SubscriptionFilter, error) {
	query := `
		SELECT user_id, timeline_accounts, feed_sources, categories, keywords,
		       impact_threshold, alert_channels, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
	`

	f := &models.SubscriptionFilter{}
	var accounts, feeds, categories, keywords, channels []byte
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&f.UserID, &accounts, &feeds, &categories, &keywords,
		&f.ImpactThreshold, &channels, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription filter: %w", err)
	}

	if err := decodeFilterLists(f, accounts, feeds, categories, keywords, channels); err != nil {
		return nil, err
	}
	return f, nil
}

// Upsert creates or replaces a user's subscription filter.
func (s *PostgresStore) Upsert(ctx context.Context, filter *models.SubscriptionFilter) error {
	accounts, err := json.Marshal(filter.TimelineAccounts)
	if err != nil {
		return fmt.Errorf("failed to encode timeline accounts: %w", err)
	}
	feeds, err := json.Marshal(filter.FeedSources)
	if err != nil {
		return fmt.Errorf("failed to encode feed sources: %w", err)
	}
	categories, err := json.Marshal(filter.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	keywords, err := json.Marshal(filter.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}
	channels, err := json.Marshal(filter.AlertChannels)
	if err != nil {
		return fmt.Errorf("failed to encode alert channels: %w", err)
	}

	now := float64(time.Now().UnixNano()) / 1e9
	query := `
		INSERT INTO subscriptions (
			user_id, timeline_accounts, feed_sources, categories, keywords,
			impact_threshold, alert_channels, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			timeline_accounts = EXCLUDED.timeline_accounts,
			feed_sources = EXCLUDED.feed_sources,
			categories = EXCLUDED.categories,
			keywords = EXCLUDED.keywords,
			impact_threshold = EXCLUDED.impact_threshold,
			alert_channels = EXCLUDED.alert_channels,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.pool.Exec(ctx, query,
		filter.UserID, accounts, feeds, categories, keywords,
		filter.ImpactThreshold, channels, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// Delete removes a user's subscription filter.
func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE user_id = $1`, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFilters returns all subscription filters.
func (s *PostgresStore) ListFilters(ctx context.Context) ([]*models.SubscriptionFilter, error) {
	query := `
		SELECT user_id, timeline_accounts, feed_sources, categories, keywords,
		       impact_threshold, alert_channels, created_at, updated_at
		FROM subscriptions
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	filters := []*models.SubscriptionFilter{}
	for rows.Next() {
		f := &models.SubscriptionFilter{}
		var accounts, feeds, categories, keywords, channels []byte
		if err := rows.Scan(
			&f.UserID, &accounts, &feeds, &categories, &keywords,
			&f.ImpactThreshold, &channels, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		if err := decodeFilterLists(f, accounts, feeds, categories, keywords, channels); err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscription rows: %w", err)
	}

	return filters, nil
}

func decodeFilterLists(f *models.SubscriptionFilter, accounts, feeds, categories, keywords, channels []byte) error {
	if err := json.Unmarshal(accounts, &f.TimelineAccounts); err != nil {
		return fmt.Errorf("failed to decode timeline accounts: %w", err)
	}
	if err := json.Unmarshal(feeds, &f.FeedSources); err != nil {
		return fmt.Errorf("failed to decode feed sources: %w", err)
	}
	if err := json.Unmarshal(categories, &f.Categories); err != nil {
		return fmt.Errorf("failed to decode categories: %w", err)
	}
	if err := json.Unmarshal(keywords, &f.Keywords); err != nil {
		return fmt.Errorf("failed to decode keywords: %w", err)
	}
	if err := json.Unmarshal(channels, &f.AlertChannels); err != nil {
		return fmt.Errorf("failed to decode alert channels: %w", err)
	}
	return nil
}
