// Package cluster provides the execution context the pooled strategy sizes
// its worker pool from.
package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	LocalAddress  = "local"
	resourcesPath = "/api/resources"
)

type Config struct {
	Address        string
	DevicesPerHost int
	Resource       string
}

// Discoverer reports resource counts for the cluster, keyed by resource name.
type Discoverer interface {
	Resources(ctx context.Context) (map[string]float64, error)
	Close() error
}

// Context is an explicitly owned connection to the worker topology. Callers
// build it with Connect and release it with Close.
type Context struct {
	cfg        Config
	discoverer Discoverer
	logger     *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

type Option func(*Context)

func WithLogger(l *slog.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithDiscoverer overrides the discoverer chosen from the address.
func WithDiscoverer(d Discoverer) Option {
	return func(c *Context) { c.discoverer = d }
}

func Connect(ctx context.Context, cfg Config, opts ...Option) (*Context, error) {
	if cfg.DevicesPerHost <= 0 {
		return nil, fmt.Errorf("devices per host must be positive, got %d", cfg.DevicesPerHost)
	}
	if cfg.Resource == "" {
		return nil, fmt.Errorf("cluster resource name is empty")
	}

	c := &Context{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.discoverer == nil {
		if cfg.Address == "" || cfg.Address == LocalAddress {
			c.discoverer = LocalDiscoverer{}
		} else {
			c.discoverer = NewHTTPDiscoverer(cfg.Address)
		}
	}

	// Probe once so an unreachable cluster fails at connect time.
	if _, err := c.discoverer.Resources(ctx); err != nil {
		return nil, fmt.Errorf("connect cluster %q: %w", cfg.Address, err)
	}
	c.logger.Info("Connected to cluster", "address", cfg.Address, "resource", cfg.Resource)
	return c, nil
}

// Workers derives the pool size: the discovered resource count divided by
// devices per host, never less than one.
func (c *Context) Workers(ctx context.Context) (int, error) {
	res, err := c.discoverer.Resources(ctx)
	if err != nil {
		return 0, fmt.Errorf("discover resources: %w", err)
	}
	n := int(res[c.cfg.Resource]) / c.cfg.DevicesPerHost
	if n < 1 {
		c.logger.Warn("Discovered fewer devices than one host holds, using one worker",
			"resource", c.cfg.Resource, "count", res[c.cfg.Resource])
		n = 1
	}
	return n, nil
}

func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.discoverer.Close()
	})
	return c.closeErr
}

// LocalDiscoverer treats every local CPU as one device.
type LocalDiscoverer struct{}

func (LocalDiscoverer) Resources(context.Context) (map[string]float64, error) {
	n := float64(runtime.NumCPU())
	return map[string]float64{"CPU": n, "accelerator": n}, nil
}

func (LocalDiscoverer) Close() error { return nil }

// HTTPDiscoverer reads {resource: count} JSON from <address>/api/resources.
type HTTPDiscoverer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDiscoverer(address string) *HTTPDiscoverer {
	return &HTTPDiscoverer{
		baseURL: strings.TrimRight(address, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *HTTPDiscoverer) Resources(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+resourcesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("cluster create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cluster request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cluster read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cluster status %d: %s", resp.StatusCode, string(body))
	}

	var res map[string]float64
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("cluster parse response: %w", err)
	}
	return res, nil
}

func (d *HTTPDiscoverer) Close() error {
	d.client.CloseIdleConnections()
	return nil
}
