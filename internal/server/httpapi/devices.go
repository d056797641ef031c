package httpapi

import (
	"net/http"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/httputil"
)

func (h *Handler) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterDeviceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	device, err := h.devices.Register(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "device registered",
		"device", device.ID, "type", device.DeviceType)
	httputil.RespondJSON(w, http.StatusCreated, device.ToAPI())
}

func (h *Handler) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List(r.Context(), httputil.GetUserID(r))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	out := make([]api.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.ToAPI())
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDeviceHeartbeat(w http.ResponseWriter, r *http.Request) {
	err := h.devices.Heartbeat(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}

func (h *Handler) handleDeactivateDevice(w http.ResponseWriter, r *http.Request) {
	err := h.devices.Deactivate(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}
