package cluster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resourceServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, resourcesPath, r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnect_HTTP(t *testing.T) {
	srv := resourceServer(t, http.StatusOK, `{"CPU": 64, "TPU": 16}`)
	ctx := context.Background()

	c, err := Connect(ctx, Config{Address: srv.URL + "/", DevicesPerHost: 4, Resource: "TPU"})
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Workers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestWorkers_AtLeastOne(t *testing.T) {
	srv := resourceServer(t, http.StatusOK, `{"TPU": 2}`)
	ctx := context.Background()

	c, err := Connect(ctx, Config{Address: srv.URL, DevicesPerHost: 4, Resource: "TPU"})
	require.NoError(t, err)
	n, err := c.Workers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Missing resource also yields one worker.
	c2, err := Connect(ctx, Config{Address: srv.URL, DevicesPerHost: 4, Resource: "GPU"})
	require.NoError(t, err)
	n, err = c2.Workers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConnect_Unreachable(t *testing.T) {
	srv := resourceServer(t, http.StatusServiceUnavailable, "down")
	_, err := Connect(context.Background(), Config{Address: srv.URL, DevicesPerHost: 4, Resource: "TPU"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestConnect_BadJSON(t *testing.T) {
	srv := resourceServer(t, http.StatusOK, "not json")
	_, err := Connect(context.Background(), Config{Address: srv.URL, DevicesPerHost: 4, Resource: "TPU"})
	assert.ErrorContains(t, err, "parse response")
}

func TestConnect_InvalidConfig(t *testing.T) {
	_, err := Connect(context.Background(), Config{Address: LocalAddress, Resource: "TPU"})
	assert.ErrorContains(t, err, "devices per host")

	_, err = Connect(context.Background(), Config{Address: LocalAddress, DevicesPerHost: 1})
	assert.ErrorContains(t, err, "resource name")
}

func TestConnect_Local(t *testing.T) {
	ctx := context.Background()
	c, err := Connect(ctx, Config{Address: LocalAddress, DevicesPerHost: 1, Resource: "CPU"})
	require.NoError(t, err)

	n, err := c.Workers(ctx)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), n)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

type stubDiscoverer struct {
	resources map[string]float64
	closed    int
}

func (s *stubDiscoverer) Resources(context.Context) (map[string]float64, error) {
	return s.resources, nil
}

func (s *stubDiscoverer) Close() error {
	s.closed++
	return nil
}

func TestContext_CloseOnce(t *testing.T) {
	stub := &stubDiscoverer{resources: map[string]float64{"accelerator": 32}}
	c, err := Connect(context.Background(), Config{DevicesPerHost: 4, Resource: "accelerator"}, WithDiscoverer(stub))
	require.NoError(t, err)

	n, err := c.Workers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, stub.closed)
}
