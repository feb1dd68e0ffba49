package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
	"github.com/AmolDerickSoans/polyfloat-news/internal/server"
)

// apiClient is a thin HTTP client for the newsd API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type newsListParams struct {
	Category  string
	Source    string
	MinImpact float64
	Limit     int
	Offset    int
}

func (c *apiClient) listNews(p newsListParams) (*server.NewsListResponse, error) {
	q := url.Values{}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Source != "" {
		q.Set("source", p.Source)
	}
	if p.MinImpact > 0 {
		q.Set("min_impact", strconv.FormatFloat(p.MinImpact, 'f', -1, 64))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}

	var resp server.NewsListResponse
	if err := c.get("/api/v1/news?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) purgeNews(olderThan time.Duration) (int64, error) {
	path := "/api/v1/news?older_than=" + url.QueryEscape(olderThan.String())
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}

	var resp map[string]int64
	if err := c.do(req, &resp); err != nil {
		return 0, err
	}
	return resp["deleted"], nil
}

func (c *apiClient) stats() (*models.Stats, error) {
	var stats models.Stats
	if err := c.get("/api/v1/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *apiClient) listSubscriptions() ([]*models.SubscriptionFilter, error) {
	var filters []*models.SubscriptionFilter
	if err := c.get("/api/v1/subscriptions", &filters); err != nil {
		return nil, err
	}
	return filters, nil
}

func (c *apiClient) getSubscription(userID string) (*models.SubscriptionFilter, error) {
	var filter models.SubscriptionFilter
	if err := c.get("/api/v1/subscriptions/"+url.PathEscape(userID), &filter); err != nil {
		return nil, err
	}
	return &filter, nil
}

func (c *apiClient) upsertSubscription(filter *models.SubscriptionFilter) (*models.SubscriptionFilter, error) {
	body, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subscription: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/subscriptions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var saved models.SubscriptionFilter
	if err := c.do(req, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *apiClient) deleteSubscription(userID string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/api/v1/subscriptions/"+url.PathEscape(userID), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *apiClient) get(path string, dst interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, dst)
}

func (c *apiClient) do(req *http.Request, dst interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr server.ErrorResponse
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s (%s)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
