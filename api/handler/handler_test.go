package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/shelfscan/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeEngine struct {
	products    []models.Product
	stats       models.SearchStats
	description string
	err         error
	active      int64

	gotQuery  string
	gotPages  int
	gotURL    string
	gotFormat string
}

func (f *fakeEngine) Search(_ context.Context, query string, maxPages int) ([]models.Product, models.SearchStats, error) {
	f.gotQuery, f.gotPages = query, maxPages
	return f.products, f.stats, f.err
}

func (f *fakeEngine) Describe(_ context.Context, productURL, format string) (string, error) {
	f.gotURL, f.gotFormat = productURL, format
	return f.description, f.err
}

func (f *fakeEngine) ActiveSessions() int64 { return f.active }

func serve(t *testing.T, h gin.HandlerFunc, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	r.GET("/x", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSearch_MissingQuery(t *testing.T) {
	eng := &fakeEngine{}

	for _, target := range []string{"/x", "/x?q=", "/x?q=%20%20"} {
		w, body := serve(t, Search(eng, 20), target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, models.ErrCodeInvalidInput, body["error"].(map[string]any)["code"])
	}
	assert.Empty(t, eng.gotQuery, "engine must not run without a query")
}

func TestSearch_Products(t *testing.T) {
	eng := &fakeEngine{
		products: []models.Product{{Title: "Mouse", Price: "499", ImageURL: "https://img.test/m.jpg", Link: "https://shop.test/dp/M"}},
		stats:    models.SearchStats{PagesFetched: 1, StopReason: models.StopMaxPages},
	}

	w, body := serve(t, Search(eng, 20), "/x?q=wireless+mouse&pages=2")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "wireless mouse", eng.gotQuery)
	assert.Equal(t, 2, eng.gotPages)
	assert.Equal(t, true, body["success"])

	products := body["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "https://img.test/m.jpg", products[0].(map[string]any)["image"])
}

func TestSearch_DefaultsAndClampsPages(t *testing.T) {
	eng := &fakeEngine{products: []models.Product{{Title: "a", Price: "1", ImageURL: "i"}}}

	serve(t, Search(eng, 20), "/x?q=mouse")
	assert.Equal(t, 1, eng.gotPages)

	serve(t, Search(eng, 5), "/x?q=mouse&pages=50")
	assert.Equal(t, 5, eng.gotPages)
}

func TestSearch_InvalidPages(t *testing.T) {
	w, _ := serve(t, Search(&fakeEngine{}, 20), "/x?q=mouse&pages=-3")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch_NoProducts(t *testing.T) {
	eng := &fakeEngine{stats: models.SearchStats{PagesFetched: 1, StopReason: models.StopExhausted}}

	w, body := serve(t, Search(eng, 20), "/x?q=zzz")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No products found", body["message"])
	assert.Equal(t, []any{}, body["products"])
}

func TestSearch_LaunchFailure(t *testing.T) {
	eng := &fakeEngine{err: models.NewScrapeError(models.ErrCodeLaunch, "failed to launch browser", errors.New("no chromium"))}

	w, body := serve(t, Search(eng, 20), "/x?q=mouse")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, models.ErrCodeLaunch, body["error"].(map[string]any)["code"])
}

func TestDescribe_MissingURL(t *testing.T) {
	w, body := serve(t, Describe(&fakeEngine{}), "/x")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "query parameter `url` is required", body["error"].(map[string]any)["message"])
}

func TestDescribe_InvalidFormat(t *testing.T) {
	w, _ := serve(t, Describe(&fakeEngine{}), "/x?url=https://shop.test/dp/X&format=pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDescribe_OK(t *testing.T) {
	eng := &fakeEngine{description: models.NoDescription}

	w, body := serve(t, Describe(eng), "/x?url=https://shop.test/dp/X")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://shop.test/dp/X", eng.gotURL)
	assert.Equal(t, "text", eng.gotFormat)
	assert.Equal(t, models.NoDescription, body["description"])
}

func TestDescribe_EmptyDescriptionIsNotAnError(t *testing.T) {
	w, body := serve(t, Describe(&fakeEngine{}), "/x?url=https://shop.test/dp/X&format=markdown")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", body["description"])
	assert.Equal(t, "markdown", body["format"])
}

func TestHealth(t *testing.T) {
	start := time.Now().Add(-time.Minute)

	w, body := serve(t, Health(&fakeEngine{active: 1}, fakeQueue{max: 4}, start), "/x")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])

	_, body = serve(t, Health(&fakeEngine{active: 4}, fakeQueue{max: 4}, start), "/x")
	assert.Equal(t, "degraded", body["status"])
}

func TestHealth_ReportsQueuedRequests(t *testing.T) {
	_, body := serve(t, Health(&fakeEngine{active: 2}, fakeQueue{max: 4, waiting: 3}, time.Now()), "/x")

	assert.Equal(t, "degraded", body["status"])
	sessions, ok := body["sessions"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(4), sessions["max_sessions"])
	assert.Equal(t, float64(2), sessions["active_sessions"])
	assert.Equal(t, float64(3), sessions["waiting"])
}

type fakeQueue struct{ max, waiting int64 }

func (q fakeQueue) Max() int64     { return q.max }
func (q fakeQueue) Waiting() int64 { return q.waiting }

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeNavigation, http.StatusBadGateway},
		{models.ErrCodeBusy, http.StatusServiceUnavailable},
		{models.ErrCodeLaunch, http.StatusInternalServerError},
		{models.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToStatus(models.NewScrapeError(tt.code, "x", nil)))
		})
	}
}
