package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// PostgresStore implements NewsStore and SubscriptionStore using
// PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by a pgx connection pool.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Insert persists a news item. A unique violation on url maps to
// ErrDuplicateURL so a concurrent-insert race reads as a successful
// dedup.
func (s *PostgresStore) Insert(ctx context.Context, item *models.NewsItem) error {
	tickers, err := json.Marshal(item.Tickers)
	if err != nil {
		return fmt.Errorf("failed to encode tickers: %w", err)
	}
	people, err := json.Marshal(item.People)
	if err != nil {
		return fmt.Errorf("failed to encode people: %w", err)
	}
	markets, err := json.Marshal(item.Markets)
	if err != nil {
		return fmt.Errorf("failed to encode prediction markets: %w", err)
	}
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO news (
			id, source, source_account, title, content, url, published_at,
			impact_score, relevance_score, tickers, people, prediction_markets,
			category, tags, is_duplicate, duplicate_of, is_high_signal
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = s.pool.Exec(ctx, query,
		item.ID, string(item.Source), nullable(item.SourceAccount), nullable(item.Title),
		item.Content, item.URL, item.PublishedAt,
		item.ImpactScore, item.RelevanceScore, tickers, people, markets,
		nullable(string(item.Category)), tags,
		item.IsDuplicate, nullable(item.DuplicateOf), item.IsHighSignal,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateURL
		}
		return fmt.Errorf("failed to insert news item: %w", err)
	}

	return nil
}

// ExistsByURL reports whether a news item with the given URL is already
// persisted.
func (s *PostgresStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM news WHERE url = $1)`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check URL existence: %w", err)
	}
	return exists, nil
}

// List returns a page of news items matching the query, newest first,
// plus the total match count.
func (s *PostgresStore) List(ctx context.Context, q NewsQuery) ([]*models.NewsItem, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if q.Category != "" {
		whereClause += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, q.Category)
		argPos++
	}
	if q.Source != "" {
		whereClause += fmt.Sprintf(" AND source = $%d", argPos)
		args = append(args, q.Source)
		argPos++
	}
	if q.MinImpact > 0 {
		whereClause += fmt.Sprintf(" AND impact_score >= $%d", argPos)
		args = append(args, q.MinImpact)
		argPos++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM news %s", whereClause)
	var total int
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count news items: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, q.Offset)

	query := fmt.Sprintf(`
		SELECT
			id, source, source_account, title, content, url, published_at,
			impact_score, relevance_score, tickers, people, prediction_markets,
			category, tags, is_duplicate, duplicate_of, is_high_signal, created_at
		FROM news
		%s
		ORDER BY published_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list news items: %w", err)
	}
	defer rows.Close()

	items := []*models.NewsItem{}
	for rows.Next() {
		item, err := scanNewsItem(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read news rows: %w", err)
	}

	return items, total, nil
}

// DeleteOlderThan removes news items published before the cutoff and
// returns how many were deleted.
func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM news WHERE published_at < $1`,
		float64(cutoff.UnixNano())/1e9,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old news items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats reports aggregate counts over the persisted store.
func (s *PostgresStore) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	dayAgo := float64(time.Now().Add(-24*time.Hour).UnixNano()) / 1e9
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE published_at >= $1),
			COALESCE(AVG(impact_score), 0)
		FROM news
	`, dayAgo).Scan(&stats.TotalNewsItems, &stats.ItemsLast24h, &stats.AverageImpact)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	return stats, nil
}

// scanNewsItem decodes one news row, unpacking the JSON list columns.
func scanNewsItem(scan func(...interface{}) error) (*models.NewsItem, error) {
	item := &models.NewsItem{}
	var (
		source        string
		sourceAccount *string
		title         *string
		category      *string
		duplicateOf   *string
		tickers       []byte
		people        []byte
		markets       []byte
		tags          []byte
	)

	err := scan(
		&item.ID, &source, &sourceAccount, &title, &item.Content, &item.URL,
		&item.PublishedAt, &item.ImpactScore, &item.RelevanceScore,
		&tickers, &people, &markets, &category, &tags,
		&item.IsDuplicate, &duplicateOf, &item.IsHighSignal, &item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan news row: %w", err)
	}

	item.Source = models.SourceType(source)
	if sourceAccount != nil {
		item.SourceAccount = *sourceAccount
	}
	if title != nil {
		item.Title = *title
	}
	if category != nil {
		item.Category = models.Category(*category)
	}
	if duplicateOf != nil {
		item.DuplicateOf = *duplicateOf
	}
	if err := json.Unmarshal(tickers, &item.Tickers); err != nil {
		return nil, fmt.Errorf("failed to decode tickers: %w", err)
	}
	if err := json.Unmarshal(people, &item.People); err != nil {
		return nil, fmt.Errorf("failed to decode people: %w", err)
	}
	if err := json.Unmarshal(markets, &item.Markets); err != nil {
		return nil, fmt.Errorf("failed to decode prediction markets: %w", err)
	}
	if err := json.Unmarshal(tags, &item.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}

	return item, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
