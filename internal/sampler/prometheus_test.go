package sampler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchids/devops-monitor/internal/domain"
)

func promServer(t *testing.T, values map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		query := r.Form.Get("query")

		w.Header().Set("Content-Type", "application/json")
		for key, value := range values {
			if strings.Contains(query, key) {
				fmt.Fprintf(w, `{"status":"success","data":{"resultType":"vector","result":[{"metric":{},"value":[1700000000,"%s"]}]}}`, value)
				return
			}
		}
		fmt.Fprint(w, `{"status":"success","data":{"resultType":"vector","result":[]}}`)
	}))
}

func TestPrometheusSource_Collect(t *testing.T) {
	srv := promServer(t, map[string]string{
		"node_cpu_seconds_total":           "0.42",
		"node_memory_MemAvailable_bytes":   "0.5",
		"node_filesystem_avail_bytes":      "0.25",
		"node_network_receive_bytes_total": "1234",
	})
	defer srv.Close()

	src, err := NewPrometheusSource(srv.URL, nil)
	require.NoError(t, err)

	snap, err := src.Collect(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 42.0, snap.CPUPercent, 1e-9)
	assert.InDelta(t, 50.0, snap.MemoryPercent, 1e-9)
	assert.InDelta(t, 25.0, snap.DiskPercent, 1e-9)
	assert.InDelta(t, 1234.0, snap.TrafficRate, 1e-9)
	assert.Empty(t, snap.Missing)
}

func TestPrometheusSource_EmptyResultMarksMissing(t *testing.T) {
	srv := promServer(t, map[string]string{
		"node_cpu_seconds_total": "0.9",
	})
	defer srv.Close()

	src, err := NewPrometheusSource(srv.URL, nil)
	require.NoError(t, err)

	snap, err := src.Collect(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Has(domain.MetricCPU))
	assert.False(t, snap.Has(domain.MetricMemory))
	assert.False(t, snap.Has(domain.MetricDisk))
	assert.False(t, snap.Has(domain.MetricTraffic))
}

func TestPrometheusSource_ServerDown(t *testing.T) {
	srv := promServer(t, nil)
	url := srv.URL
	srv.Close()

	src, err := NewPrometheusSource(url, nil)
	require.NoError(t, err)

	snap, err := src.Collect(context.Background())
	assert.ErrorIs(t, err, domain.ErrSampleUnavailable)
	assert.True(t, snap.Unavailable())
}
