package netx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadToPresignedURL(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = b
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := UploadToPresignedURL(context.Background(), srv.URL, []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestUploadToPresignedURL_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	err := UploadToPresignedURL(context.Background(), srv.URL, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestDownloadFromPresignedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	b, err := DownloadFromPresignedURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), b)
}
