package httpapi

import (
	"fmt"
	"net/http"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/httputil"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterUserRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.respondServiceError(w, r, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}

	user, token, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "user registered", "email", user.Email)
	httputil.RespondJSON(w, http.StatusCreated, api.TokenResponse{AccessToken: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.respondServiceError(w, r, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}

	_, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api.TokenResponse{AccessToken: token})
}
