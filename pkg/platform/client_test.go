package platform

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/video-system/go-hwscan/internal/report"
	"github.com/video-system/go-hwscan/pkg/hwscan"
)

func TestPublishCapabilities(t *testing.T) {
	var gotPath, gotAuth string
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"registered","node_id":"edge-01","devices":1}`))
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, APIKey: "secret"})
	r := report.Report{
		Host:      report.Host{Hostname: "edge-01"},
		ScannedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Devices:   []hwscan.Device{{Driver: hwscan.DriverNvidia, Codecs: map[hwscan.Codec]hwscan.CodecDetails{}}},
	}

	res, err := c.PublishCapabilities(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "registered", res.Status)
	assert.Equal(t, 1, res.Devices)

	assert.Equal(t, "/api/v1/nodes/edge-01/capabilities", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "edge-01", got["node_id"])
	assert.Len(t, got["devices"], 1)
}

func TestPublishCapabilitiesNodeIDOverride(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status":"registered"}`))
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, NodeID: "rack-3"})
	_, err := c.PublishCapabilities(context.Background(), report.Report{Host: report.Host{Hostname: "edge-01"}})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/nodes/rack-3/capabilities", gotPath)
}

func TestPublishCapabilitiesErrors(t *testing.T) {
	_, err := New(Config{}).PublishCapabilities(context.Background(), report.Report{})
	assert.Error(t, err)

	_, err = New(Config{URL: "http://127.0.0.1:1"}).PublishCapabilities(context.Background(), report.Report{})
	assert.ErrorContains(t, err, "node id")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err = New(Config{URL: srv.URL, NodeID: "n"}).PublishCapabilities(context.Background(), report.Report{})
	assert.ErrorContains(t, err, "status 403")
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.NoError(t, New(Config{URL: srv.URL}).CheckHealth(context.Background()))
	assert.Error(t, New(Config{}).CheckHealth(context.Background()))
}
