package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/httputil"
)

// HTTPClient implements Client against the server's JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client bound to the given base URL, for example
// http://localhost:8080.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs one JSON round trip. in and out may be nil; non-2xx statuses are
// mapped onto the common sentinel errors with the server message attached.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearerToken(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, decodeMessage(resp))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func decodeMessage(resp *http.Response) string {
	var body httputil.ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		return resp.Status
	}
	return body.Message
}

func statusError(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, message)
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, message)
	default:
		return fmt.Errorf("%w: %s", common.ErrorInternal, message)
	}
}

func (c *HTTPClient) RegisterUser(ctx context.Context, email, password string) (string, error) {
	var resp api.TokenResponse
	req := &api.RegisterUserRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.AccessToken)
	return resp.AccessToken, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	var resp api.TokenResponse
	req := &api.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.AccessToken)
	return resp.AccessToken, nil
}

func (c *HTTPClient) RegisterDevice(ctx context.Context, req *api.RegisterDeviceRequest) (*api.Device, error) {
	var resp api.Device
	if err := c.do(ctx, http.MethodPost, "/api/devices/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Heartbeat(ctx context.Context, deviceID string) error {
	err := c.do(ctx, http.MethodPut, "/api/devices/"+url.PathEscape(deviceID)+"/heartbeat", nil, nil)
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: device %s", common.ErrorDeviceGone, deviceID)
	}
	return err
}

func (c *HTTPClient) ListDevices(ctx context.Context) ([]api.Device, error) {
	var resp []api.Device
	if err := c.do(ctx, http.MethodGet, "/api/devices", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) DeactivateDevice(ctx context.Context, deviceID string) error {
	return c.do(ctx, http.MethodDelete, "/api/devices/"+url.PathEscape(deviceID), nil, nil)
}

func (c *HTTPClient) DocumentsSince(ctx context.Context, since *time.Time) ([]api.Document, error) {
	path := "/api/sync/documents"
	if since != nil {
		path += "?lastSync=" + url.QueryEscape(since.UTC().Format(time.RFC3339Nano))
	}
	var resp []api.Document
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) PushDocuments(ctx context.Context, req *api.PushDocumentsRequest) (*api.PushDocumentsResponse, error) {
	var resp api.PushDocumentsResponse
	if err := c.do(ctx, http.MethodPost, "/api/sync/push", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CompleteSync(ctx context.Context, req *api.CompleteSyncRequest) (*api.CompleteSyncResponse, error) {
	var resp api.CompleteSyncResponse
	if err := c.do(ctx, http.MethodPost, "/api/sync/complete", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) RecordSyncHistory(ctx context.Context, req *api.RecordSyncHistoryRequest) error {
	return c.do(ctx, http.MethodPost, "/api/sync/history", req, nil)
}

func (c *HTTPClient) SyncHistory(ctx context.Context) ([]api.SyncHistoryEntry, error) {
	var resp []api.SyncHistoryEntry
	if err := c.do(ctx, http.MethodGet, "/api/sync/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) SyncConflicts(ctx context.Context) ([]api.Document, error) {
	var resp []api.Document
	if err := c.do(ctx, http.MethodGet, "/api/sync/conflicts", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) ImageUploadURL(ctx context.Context) (*api.ImageUploadURLResponse, error) {
	var resp api.ImageUploadURLResponse
	if err := c.do(ctx, http.MethodPost, "/api/images/upload-url", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ImageURL(ctx context.Context, key string) (*api.ImageURLResponse, error) {
	var resp api.ImageURLResponse
	if err := c.do(ctx, http.MethodGet, "/api/images/"+url.PathEscape(key)+"/url", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
