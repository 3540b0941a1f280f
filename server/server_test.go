package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/giftpropaganda/news-backend/database"
	"github.com/giftpropaganda/news-backend/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newTestServer(t *testing.T) (*gin.Engine, *database.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "news.db")
	store, err := database.Open("sqlite://" + path)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return New(store), store
}

func seedNews(t *testing.T, store *database.Store) *model.NewsItem {
	t.Helper()
	source := &model.NewsSource{
		Name:       "feed-a",
		Url:        "http://a.example/rss",
		SourceType: "rss",
	}
	item := &model.NewsItem{
		Title:       "hello",
		Content:     "body",
		Link:        "http://a.example/hello",
		PublishDate: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Category:    "general",
	}
	err := store.WithSession(context.Background(), func(tx *gorm.DB) error {
		if err := database.CreateSource(tx, source); err != nil {
			return err
		}
		item.SourceID = source.Id
		_, err := database.UpsertNewsItem(tx, item)
		return err
	})
	require.NoError(t, err)
	return item
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthzReflectsProbe(t *testing.T) {
	router, store := newTestServer(t)

	w := doGet(router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)

	// kill the pool: the endpoint must flip to unavailable, not error out
	require.NoError(t, store.Close())

	w = doGet(router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListNews(t *testing.T) {
	router, store := newTestServer(t)
	seedNews(t, store)

	w := doGet(router, "/api/news")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []model.NewsItem `json:"items"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "hello", body.Items[0].Title)
	assert.Equal(t, "http://a.example/hello", body.Items[0].Link)
}

func TestListNewsFilterMismatch(t *testing.T) {
	router, store := newTestServer(t)
	seedNews(t, store)

	w := doGet(router, "/api/news?category=sports")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}

func TestListNewsNegativeSourceIdMeansNoFilter(t *testing.T) {
	router, store := newTestServer(t)
	seedNews(t, store)

	w := doGet(router, "/api/news?source_id=-1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count, "a negative id must not wrap into a real filter")
}

func TestGetNewsBumpsViewCounter(t *testing.T) {
	router, store := newTestServer(t)
	item := seedNews(t, store)

	w := doGet(router, "/api/news/1")
	require.Equal(t, http.StatusOK, w.Code)

	var got model.NewsItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, item.Id, got.Id)
	assert.Equal(t, 1, got.ViewsCount)

	w = doGet(router, "/api/news/1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.ViewsCount)
}

func TestGetNewsNotFound(t *testing.T) {
	router, _ := newTestServer(t)

	w := doGet(router, "/api/news/12345")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetNewsBadId(t *testing.T) {
	router, _ := newTestServer(t)

	w := doGet(router, "/api/news/not-a-number")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSources(t *testing.T) {
	router, store := newTestServer(t)
	seedNews(t, store)

	w := doGet(router, "/api/sources?active=true")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sources []model.NewsSource `json:"sources"`
		Count   int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "feed-a", body.Sources[0].Name)
	assert.True(t, body.Sources[0].IsActive)
}

func TestRequestIdHeader(t *testing.T) {
	router, _ := newTestServer(t)

	w := doGet(router, "/healthz")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
