// Package httpapi exposes the server's REST surface: authentication,
// document CRUD and queries, the device registry, the sync protocol and
// presigned image URLs.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/httputil"
	"github.com/avoronovs/papertrail/internal/logging"
	"github.com/avoronovs/papertrail/internal/server/config"
	"github.com/avoronovs/papertrail/internal/server/services"
	"github.com/rs/cors"
)

// Handler bundles the services behind the REST routes.
type Handler struct {
	users   *services.UserService
	docs    *services.DocumentService
	devices *services.DeviceService
	sync    *services.SyncService
	images  *services.ImageService
	secret  []byte
	logger  logging.Logger
}

// NewHandler constructs the REST handler.
func NewHandler(
	users *services.UserService,
	docs *services.DocumentService,
	devices *services.DeviceService,
	sync *services.SyncService,
	images *services.ImageService,
	cfg *config.Config,
	logger logging.Logger,
) *Handler {
	return &Handler{
		users:   users,
		docs:    docs,
		devices: devices,
		sync:    sync,
		images:  images,
		secret:  []byte(cfg.SecretKey),
		logger:  logger.With("component", "http"),
	}
}

// Routes builds the full handler chain: CORS, panic recovery, then auth
// around the route mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)

	mux.HandleFunc("GET /api/documents", h.handleListDocuments)
	mux.HandleFunc("POST /api/documents", h.handleCreateDocument)
	mux.HandleFunc("GET /api/documents/search", h.handleSearchDocuments)
	mux.HandleFunc("GET /api/documents/expiring", h.handleExpiringDocuments)
	mux.HandleFunc("GET /api/documents/stats", h.handleDocumentStats)
	mux.HandleFunc("GET /api/documents/category/{category}", h.handleDocumentsByCategory)
	mux.HandleFunc("GET /api/documents/{id}", h.handleGetDocument)
	mux.HandleFunc("PUT /api/documents/{id}", h.handleUpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", h.handleDeleteDocument)

	mux.HandleFunc("POST /api/devices/register", h.handleRegisterDevice)
	mux.HandleFunc("GET /api/devices", h.handleListDevices)
	mux.HandleFunc("PUT /api/devices/{id}/heartbeat", h.handleDeviceHeartbeat)
	mux.HandleFunc("DELETE /api/devices/{id}", h.handleDeactivateDevice)

	mux.HandleFunc("GET /api/sync/documents", h.handleSyncDocuments)
	mux.HandleFunc("POST /api/sync/push", h.handleSyncPush)
	mux.HandleFunc("POST /api/sync/complete", h.handleSyncComplete)
	mux.HandleFunc("GET /api/sync/history", h.handleSyncHistoryList)
	mux.HandleFunc("POST /api/sync/history", h.handleSyncHistoryRecord)
	mux.HandleFunc("GET /api/sync/conflicts", h.handleSyncConflicts)

	mux.HandleFunc("POST /api/images/upload-url", h.handleImageUploadURL)
	mux.HandleFunc("GET /api/images/{key}/url", h.handleImageURL)

	var handler http.Handler = mux
	handler = Auth(h.secret)(handler)
	handler = Recovery(h.logger)(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(handler)

	return handler
}

// respondServiceError maps service error classes onto HTTP status codes.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrorNotFound):
		httputil.RespondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		httputil.RespondError(w, http.StatusConflict, "already exists")
	default:
		h.logger.Error(r.Context(), "request failed",
			"path", r.URL.Path, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
