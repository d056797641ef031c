package httpapi

import (
	"net/http"
	"strconv"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/httputil"
	"github.com/avoronovs/papertrail/internal/server/models"
)

func toAPIDocuments(docs []*models.Document) []api.Document {
	out := make([]api.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ToAPI())
	}
	return out
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.GetAll(r.Context(), httputil.GetUserID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toAPIDocuments(docs))
}

func (h *Handler) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req api.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docs.Create(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, doc.ToAPI())
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docs.Get(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc.ToAPI())
}

func (h *Handler) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docs.Update(r.Context(), httputil.GetUserID(r), r.PathValue("id"), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc.ToAPI())
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.docs.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}

func (h *Handler) handleSearchDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	docs, err := h.docs.Search(r.Context(), httputil.GetUserID(r), query)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toAPIDocuments(docs))
}

func (h *Handler) handleDocumentsByCategory(w http.ResponseWriter, r *http.Request) {
	category := api.Category(r.PathValue("category"))
	docs, err := h.docs.GetByCategory(r.Context(), httputil.GetUserID(r), category)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toAPIDocuments(docs))
}

func (h *Handler) handleExpiringDocuments(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = parsed
	}

	docs, err := h.docs.GetExpiring(r.Context(), httputil.GetUserID(r), days)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toAPIDocuments(docs))
}

func (h *Handler) handleDocumentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.docs.Stats(r.Context(), httputil.GetUserID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}
