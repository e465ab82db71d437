package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../pkg/native/testdata/vaapi_h264.yaml"

func runPublish(t *testing.T, platformURL string) error {
	t.Helper()

	cfg := filepath.Join(t.TempDir(), "hwscan.yaml")
	body := fmt.Sprintf("fixture: %s\nplatform:\n  url: %s\n  node_id: edge-01\nlog:\n  level: error\n", fixturePath, platformURL)
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfg, "publish"})
	return cmd.Execute()
}

func TestPublish(t *testing.T) {
	var published atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/health":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/nodes/edge-01/capabilities":
			published.Add(1)
			_, _ = w.Write([]byte(`{"status":"registered","node_id":"edge-01","devices":1}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	require.NoError(t, runPublish(t, srv.URL))
	assert.Equal(t, int32(1), published.Load())
}

func TestPublishPreflightFails(t *testing.T) {
	var published atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		published.Add(1)
	}))
	defer srv.Close()

	err := runPublish(t, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform preflight")
	assert.Zero(t, published.Load(), "nothing is sent to an unhealthy platform")
}
