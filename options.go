package pillar

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pillar-dev/pillar/pkg/api"
)

// config collects Store construction settings.
type config struct {
	baseURL    string
	httpClient *http.Client
	client     *api.Client
	tokenStore TokenStore
	logger     *slog.Logger
	registry   prometheus.Registerer
	tracerName string
}

// Option configures a Store.
type Option func(*config)

func defaultConfig() config {
	return config{
		baseURL:    "http://localhost:7001/api",
		logger:     slog.Default(),
		tracerName: "pillar",
	}
}

// WithBaseURL sets the blog API root, e.g. "https://api.example.com/api".
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithAPIClient injects a fully built API client. The caller is then
// responsible for wiring its TokenSource; WithBaseURL and WithHTTPClient
// are ignored.
func WithAPIClient(client *api.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithTokenStore sets the durable storage for the auth token. Without
// one, the token lives only in memory for the process lifetime.
func WithTokenStore(ts TokenStore) Option {
	return func(c *config) {
		c.tokenStore = ts
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetricsRegistry enables Prometheus metrics on the given registry.
// Metrics are off when no registry is configured, so multiple stores in
// one process never fight over collector registration.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithTracerName sets the OpenTelemetry tracer name for action spans.
// Default: "pillar". Spans are no-ops until the host process installs a
// tracer provider.
func WithTracerName(name string) Option {
	return func(c *config) {
		c.tracerName = name
	}
}
