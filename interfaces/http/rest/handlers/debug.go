// Package handlers implements graphd's admin/debug HTTP endpoints,
// grounded on the teacher's (2lar-b2/backend2) interfaces/http/rest/handlers/*
// (one file per resource, a thin JSON-encoding layer over a port
// interface) retargeted from node/edge/graph CRUD onto C1/C7/C8
// introspection. Response envelope and pagination come from pkg/common,
// typed errors from pkg/errors, both adapted from the same teacher repo
// (DESIGN.md).
package handlers

import (
	"net/http"

	"graphd/internal/cursor"
	"graphd/internal/storable"
	"graphd/internal/xstate"
	"graphd/pkg/common"
	"graphd/pkg/errors"
	"graphd/pkg/utils"
)

// DebugHandler serves the /debug/* routes. It holds only the read-only
// handles it needs (the cache and the arbiter), never the engine's
// mutable request state.
type DebugHandler struct {
	Cache   *storable.Cache
	Arbiter *xstate.Arbiter
}

// Health always reports ok; it never touches the cache or arbiter, so
// it keeps answering even if those are in a degraded state.
func Health(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports ok once the cache and arbiter are constructed, i.e.
// once this process has something to serve reads against.
func Ready(d DebugHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Cache == nil || d.Arbiter == nil {
			common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// cacheStatsResponse mirrors storable.Stats with JSON tags a dashboard
// can render without reaching into the package.
type cacheStatsResponse struct {
	Entries    int   `json:"entries"`
	TotalBytes int64 `json:"total_bytes"`
	MaxBytes   int64 `json:"max_bytes"`
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	Rejections int64 `json:"rejections"`
}

// CacheStats reports C1's current hit/miss/eviction counters.
func (d DebugHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if d.Cache == nil {
		respondUnavailable(w, "cache")
		return
	}
	s := d.Cache.Stats()
	common.RespondWithMeta(w, http.StatusOK, cacheStatsResponse{
		Entries: s.Entries, TotalBytes: s.TotalBytes, MaxBytes: s.MaxBytes,
		Hits: s.Hits, Misses: s.Misses, Evictions: s.Evictions, Rejections: s.Rejections,
	}, &common.MetaInfo{Timestamp: utils.NowRFC3339()})
}

type ticketView struct {
	Ticket      uint64 `json:"ticket"`
	Kind        string `json:"kind"`
	Running     bool   `json:"running"`
	Correlation string `json:"correlation_id"`
}

// XStateQueue reports a page of C7's current FIFO queue, head first, so
// an operator can see which requests are running versus waiting without
// a single busy arbiter's full queue dominating the response body.
func (d DebugHandler) XStateQueue(w http.ResponseWriter, r *http.Request) {
	if d.Arbiter == nil {
		respondUnavailable(w, "arbiter")
		return
	}
	snap := d.Arbiter.Snapshot()

	page := common.ExtractPaginationParams(r)
	start := page.CalculateOffset()
	if start > len(snap) {
		start = len(snap)
	}
	end := start + page.PageSize
	if end > len(snap) {
		end = len(snap)
	}
	view := snap[start:end]

	out := make([]ticketView, len(view))
	for i, s := range view {
		out[i] = ticketView{Ticket: uint64(s.Ticket), Kind: s.Kind.String(), Running: s.Running, Correlation: s.Correlation}
	}

	meta := &common.MetaInfo{
		Timestamp:  utils.NowRFC3339(),
		Pagination: common.BuildPaginationMeta(page.Page, page.PageSize, len(snap)),
	}
	common.RespondWithMeta(w, http.StatusOK, map[string]any{"queue": out}, meta)
}

type thawRequest struct {
	Cursor string `json:"cursor"`
}

type thawResponse struct {
	Fragments [][]byte `json:"fragments"`
	Missed    bool     `json:"missed"`
}

// maxThawBodyBytes bounds the request body ParseJSONBody will read, so a
// caller can't force the process to buffer an unbounded cursor blob.
const maxThawBodyBytes = 1 << 16

// ThawCursor decodes a cursor for inspection without resuming the
// query it belongs to — a read-only debugging aid over C8.
func (d DebugHandler) ThawCursor(w http.ResponseWriter, r *http.Request) {
	if d.Cache == nil {
		respondUnavailable(w, "cache")
		return
	}
	var req thawRequest
	if err := common.ParseJSONBody(w, r, &req, maxThawBodyBytes); err != nil {
		respondError(w, errors.NewValidationError("malformed request body").WithCause(err))
		return
	}

	raw, ok := cursor.Unescape(req.Cursor)
	if !ok {
		respondError(w, errors.NewValidationError("malformed cursor escaping"))
		return
	}

	reader := cursor.NewReader(d.Cache, raw)
	resp := thawResponse{}
	for {
		frag, ok, missed := reader.ReadFragment()
		if missed {
			resp.Missed = true
		}
		if !ok {
			break
		}
		resp.Fragments = append(resp.Fragments, frag)
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// respondUnavailable reports that resource hasn't been wired into this
// process yet (e.g. a debug build started without a cache), as an
// UNAVAILABLE AppError written through the common error envelope.
func respondUnavailable(w http.ResponseWriter, resource string) {
	respondError(w, errors.NewUnavailableError(resource))
}

func respondError(w http.ResponseWriter, appErr *errors.AppError) {
	common.RespondErrorWithDetails(w, appErr.HTTPStatus, string(appErr.Type), appErr.Message, appErr.Details)
}
