package httpapi

import (
	"net/http"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/httputil"
)

func (h *Handler) handleImageUploadURL(w http.ResponseWriter, r *http.Request) {
	key, url, err := h.images.GetPresignedPutUrl(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, api.ImageUploadURLResponse{Key: key, URL: url})
}

func (h *Handler) handleImageURL(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing image key")
		return
	}

	url, err := h.images.GetPresignedGetUrl(r.Context(), key)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, api.ImageURLResponse{URL: url})
}
