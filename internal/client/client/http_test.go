package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresToken(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"accessToken":"tok-123"}`))
		case "/api/devices":
			sawAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	token, err := c.Login(ctx, "user@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	_, err = c.ListDevices(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", sawAuth)
}

func TestDo_MapsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"bad request", http.StatusBadRequest, common.ErrorValidation},
		{"unauthorized", http.StatusUnauthorized, common.ErrorUnauthorized},
		{"not found", http.StatusNotFound, common.ErrorNotFound},
		{"server error", http.StatusInternalServerError, common.ErrorInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"boom"}`))
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL)
			_, err := c.ListDevices(context.Background())
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestHeartbeat_GoneDevice(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/api/devices/dev-1/heartbeat", r.URL.Path)
			w.WriteHeader(status)
		}))

		c := NewHTTPClient(srv.URL)
		err := c.Heartbeat(context.Background(), "dev-1")
		require.ErrorIs(t, err, common.ErrorDeviceGone)
		srv.Close()
	}
}

func TestHeartbeat_TransientFailureIsNotGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	err := c.Heartbeat(context.Background(), "dev-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorDeviceGone)
}

func TestDocumentsSince_QueryParam(t *testing.T) {
	since := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	var sawLastSync []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLastSync = append(sawLastSync, r.URL.Query().Get("lastSync"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"d1","title":"Passport","location":"Safe","category":"id-document","urgencyTags":[],"createdAt":"2025-06-01T12:00:00Z","updatedAt":"2025-06-01T12:00:00Z","syncStatus":"synced"}]`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	docs, err := c.DocumentsSince(ctx, &since)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0].ID)

	_, err = c.DocumentsSince(ctx, nil)
	require.NoError(t, err)

	require.Len(t, sawLastSync, 2)
	assert.Equal(t, since.Format(time.RFC3339Nano), sawLastSync[0])
	assert.Empty(t, sawLastSync[1])
}

func TestPushDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/push", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"accepted":["d1"],"conflicts":[{"id":"d2","title":"Server copy","location":"Safe","category":"legal","urgencyTags":[],"createdAt":"2025-06-01T12:00:00Z","updatedAt":"2025-06-02T12:00:00Z","syncStatus":"synced"}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	resp, err := c.PushDocuments(context.Background(), &api.PushDocumentsRequest{
		DeviceID:  "dev-1",
		Documents: []api.Document{{ID: "d1"}, {ID: "d2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, resp.Accepted)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "d2", resp.Conflicts[0].ID)
}
