package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
	"github.com/AmolDerickSoans/polyfloat-news/internal/queue"
)

const timelineFixture = `
<html><body>
  <div class="timeline-item">
    <div class="tweet-content">First post about markets</div>
    <span class="tweet-date"><a title="Jan 2, 2025 · 3:04 PM UTC" href="/user/status/1">2h</a></span>
    <a class="tweet-link" href="/user/status/1"></a>
  </div>
  <div class="timeline-item">
    <div class="tweet-content"></div>
    <a class="tweet-link" href="/user/status/2"></a>
  </div>
  <div class="timeline-item">
    <div class="tweet-content">Post without a link is skipped</div>
  </div>
  <div class="timeline-item">
    <div class="tweet-content">Second valid post</div>
    <a class="tweet-link" href="https://example.com/status/3"></a>
  </div>
</body></html>`

func TestParseTimeline(t *testing.T) {
	events := parseTimeline([]byte(timelineFixture), "user")

	require.Len(t, events, 2)

	assert.Equal(t, models.SourceTimeline, events[0].Source)
	assert.Equal(t, "@user", events[0].SourceAccount)
	assert.Equal(t, "First post about markets", events[0].Content)
	assert.Equal(t, "https://x.com/user/status/1", events[0].URL)
	assert.Equal(t, "Jan 2, 2025 · 3:04 PM UTC", events[0].PublishedAt)

	// Absolute links pass through unchanged.
	assert.Equal(t, "https://example.com/status/3", events[1].URL)
	assert.Empty(t, events[1].PublishedAt)
}

func TestParseTimeline_FallbackSelectors(t *testing.T) {
	html := `
<article class="timeline-entry">
  <div class="post-content">Entry from the alternate layout</div>
  <time title="Jan 3, 2025 · 9:00 AM UTC"></time>
  <a class="post-link" href="/alt/status/9"></a>
</article>`

	events := parseTimeline([]byte(html), "alt")

	require.Len(t, events, 1)
	assert.Equal(t, "Entry from the alternate layout", events[0].Content)
	assert.Equal(t, "https://x.com/alt/status/9", events[0].URL)
	assert.Equal(t, "Jan 3, 2025 · 9:00 AM UTC", events[0].PublishedAt)
}

func TestParseTimeline_NoMatches(t *testing.T) {
	assert.Empty(t, parseTimeline([]byte("<html><body><p>nothing</p></body></html>"), "user"))
}

func TestTimelineAdapter_ScrapeAccountFailover(t *testing.T) {
	var bad, good int
	badSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bad++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer badSrv.Close()

	goodSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		good++
		fmt.Fprint(w, timelineFixture)
	}))
	defer goodSrv.Close()

	out := queue.New[models.RawEvent]("test-ingest", 100)
	adapter := NewTimelineAdapter(TimelineConfig{
		Endpoints:      []string{badSrv.URL, goodSrv.URL},
		Accounts:       []string{"user"},
		RequestTimeout: time.Second,
		MaxRetries:     2,
	}, out, logging.Default())

	events, err := adapter.scrapeAccount(context.Background(), "user")

	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, 1, bad)
	assert.Equal(t, 1, good)
}

func TestTimelineAdapter_ScrapeAccountAllEndpointsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := queue.New[models.RawEvent]("test-ingest", 100)
	adapter := NewTimelineAdapter(TimelineConfig{
		Endpoints:      []string{srv.URL},
		Accounts:       []string{"user"},
		RequestTimeout: time.Second,
		MaxRetries:     2,
	}, out, logging.Default())

	_, err := adapter.scrapeAccount(context.Background(), "user")
	assert.Error(t, err)
}

func TestTimelineAdapter_ItemLimit(t *testing.T) {
	var html string
	for i := 0; i < 10; i++ {
		html += fmt.Sprintf(`<div class="timeline-item">
			<div class="tweet-content">post %d</div>
			<a class="tweet-link" href="/u/status/%d"></a>
		</div>`, i, i)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, html)
	}))
	defer srv.Close()

	out := queue.New[models.RawEvent]("test-ingest", 100)
	adapter := NewTimelineAdapter(TimelineConfig{
		Endpoints: []string{srv.URL},
		Accounts:  []string{"u"},
		ItemLimit: 3,
	}, out, logging.Default())

	events, err := adapter.scrapeAccount(context.Background(), "u")

	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestTimelineAdapter_EnqueueDedupes(t *testing.T) {
	out := queue.New[models.RawEvent]("test-ingest", 100)
	adapter := NewTimelineAdapter(TimelineConfig{
		Endpoints: []string{"http://localhost:1"},
	}, out, logging.Default())

	events := []models.RawEvent{
		{Source: models.SourceTimeline, URL: "https://x.com/a/1", Content: "a"},
		{Source: models.SourceTimeline, URL: "https://x.com/a/1", Content: "a again"},
		{Source: models.SourceTimeline, URL: "https://x.com/a/2", Content: "b"},
	}

	adapter.enqueue(context.Background(), events)
	assert.Equal(t, 2, out.Len())

	// A later sweep seeing the same URLs emits nothing new.
	adapter.enqueue(context.Background(), events)
	assert.Equal(t, 2, out.Len())
}
