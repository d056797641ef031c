package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/httputil"
)

func (h *Handler) handleSyncDocuments(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if v := r.URL.Query().Get("lastSync"); v != "" {
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "lastSync must be RFC3339")
			return
		}
		since = &parsed
	}

	docs, err := h.sync.DocumentsSince(r.Context(), httputil.GetUserID(r), since)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toAPIDocuments(docs))
}

func (h *Handler) handleSyncPush(w http.ResponseWriter, r *http.Request) {
	var req api.PushDocumentsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.sync.Push(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSyncComplete(w http.ResponseWriter, r *http.Request) {
	var req api.CompleteSyncRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.sync.CompleteSync(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, api.CompleteSyncResponse{
		Success:    true,
		SyncRecord: entry.ToAPI(),
	})
}

func (h *Handler) handleSyncHistoryRecord(w http.ResponseWriter, r *http.Request) {
	var req api.RecordSyncHistoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.sync.RecordHistory(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, entry.ToAPI())
}

func (h *Handler) handleSyncHistoryList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	entries, err := h.sync.History(r.Context(), httputil.GetUserID(r), limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	out := make([]api.SyncHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ToAPI())
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleSyncConflicts(w http.ResponseWriter, r *http.Request) {
	docs, err := h.sync.Conflicts(r.Context(), httputil.GetUserID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toAPIDocuments(docs))
}
