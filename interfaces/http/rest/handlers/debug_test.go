package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graphd/internal/storable"
	"graphd/internal/xstate"
)

func TestHealthAlwaysOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	Health(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestReadyReportsUnavailableUntilWired(t *testing.T) {
	t.Run("no cache or arbiter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()

		Ready(DebugHandler{})(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("cache and arbiter wired", func(t *testing.T) {
		d := DebugHandler{Cache: storable.New(1024, zap.NewNop()), Arbiter: xstate.New()}
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()

		Ready(d)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCacheStatsReportsUnavailableWithoutACache(t *testing.T) {
	d := DebugHandler{}
	req := httptest.NewRequest(http.MethodGet, "/debug/cache/stats", nil)
	w := httptest.NewRecorder()

	d.CacheStats(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "UNAVAILABLE")
}

func TestCacheStatsReportsCounters(t *testing.T) {
	cache := storable.New(1024, zap.NewNop())
	d := DebugHandler{Cache: cache}
	req := httptest.NewRequest(http.MethodGet, "/debug/cache/stats", nil)
	w := httptest.NewRecorder()

	d.CacheStats(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"entries":0`)
	assert.Contains(t, w.Body.String(), `"timestamp"`)
}

func TestXStateQueuePagesTheSnapshot(t *testing.T) {
	a := xstate.New()
	for i := 0; i < 5; i++ {
		a.GetShared(nil, nil)
	}
	d := DebugHandler{Arbiter: a}

	req := httptest.NewRequest(http.MethodGet, "/debug/xstate?page=1&page_size=2", nil)
	w := httptest.NewRecorder()

	d.XStateQueue(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"total":5`)
	assert.Contains(t, body, `"page_size":2`)
	assert.Contains(t, body, `"has_next":true`)
}

func TestThawCursorRejectsMalformedBody(t *testing.T) {
	d := DebugHandler{Cache: storable.New(1024, zap.NewNop())}
	req := httptest.NewRequest(http.MethodPost, "/debug/cursor/thaw", nil)
	w := httptest.NewRecorder()

	d.ThawCursor(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
