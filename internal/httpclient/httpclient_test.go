package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "client-type=1", string(body))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<response/>"))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	status, body, err := c.Do(context.Background(), http.MethodPost, "/ssl-vpn/getconfig.esp", "application/x-www-form-urlencoded", []byte("client-type=1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<response/>", string(body))
}

func TestDoPropagatesNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("denied"))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	status, body, err := c.Do(context.Background(), http.MethodGet, "/x", "", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "denied", string(body))
}
