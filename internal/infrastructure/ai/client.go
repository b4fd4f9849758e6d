package ai

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/ports"
)

// maxProbeDrain bounds how much of a probe response body is read before closing.
const maxProbeDrain = 64 * 1024

// Options configures per-operation timeouts. Zero GenerationTimeout disables it.
type Options struct {
	ProbeTimeout      time.Duration
	CatalogTimeout    time.Duration
	GenerationTimeout time.Duration
}

// Client talks to OpenAI/Ollama-compatible endpoints: health probe, model catalog
// and streamed generation. Transport and protocol failures are never returned as
// errors; they collapse to false, an empty catalog or an incomplete outcome.
type Client struct {
	http   *resty.Client
	opts   Options
	logger ports.Logger
}

// NewClient builds a resty-backed client. The resty client carries no global
// timeout so that generation streams are bounded only by their own context.
func NewClient(opts Options, logger ports.Logger) *Client {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = domain.DefaultProbeTimeout
	}
	if opts.CatalogTimeout <= 0 {
		opts.CatalogTimeout = domain.DefaultCatalogTimeout
	}
	httpClient := resty.New().
		SetHeader("User-Agent", "infernav").
		SetHeader("Accept", "application/json")
	if logger != nil {
		httpClient.SetLogger(restyLogger{logger: logger})
	}
	return &Client{
		http:   httpClient,
		opts:   opts,
		logger: logger,
	}
}

// Probe issues GET {address}/v1/models and reports whether it answered 2xx within
// the probe timeout. The body is ignored.
func (c *Client) Probe(ctx context.Context, address string) bool {
	base := domain.NormalizeAddress(address)
	if base == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.ProbeTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(base + domain.ModelsPath)
	if err != nil {
		c.debug("probe failed", map[string]interface{}{"address": address, "error": err.Error()})
		return false
	}
	if body := resp.RawBody(); body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, maxProbeDrain))
		body.Close()
	}
	c.debug("probe answered", map[string]interface{}{"address": address, "status": resp.StatusCode()})
	return resp.IsSuccess()
}

// FetchModels issues GET {address}/v1/models and decodes the `data[].id` catalog.
// Any failure yields an empty catalog.
func (c *Client) FetchModels(ctx context.Context, address string) []domain.ModelDescriptor {
	base := domain.NormalizeAddress(address)
	if base == "" {
		return []domain.ModelDescriptor{}
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.CatalogTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		Get(base + domain.ModelsPath)
	if err != nil {
		c.warn("catalog fetch failed", map[string]interface{}{"address": address, "error": err.Error()})
		return []domain.ModelDescriptor{}
	}
	if !resp.IsSuccess() {
		c.warn("catalog fetch rejected", map[string]interface{}{"address": address, "status": resp.Status()})
		return []domain.ModelDescriptor{}
	}
	return parseCatalog(resp.Body())
}

type catalogResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func parseCatalog(body []byte) []domain.ModelDescriptor {
	models := []domain.ModelDescriptor{}
	var decoded catalogResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return models
	}
	for _, entry := range decoded.Data {
		if entry.ID == "" {
			continue
		}
		models = append(models, domain.ModelDescriptor{ID: entry.ID})
	}
	return models
}

func (c *Client) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) warn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

var (
	_ ports.HealthProber       = (*Client)(nil)
	_ ports.CatalogFetcher     = (*Client)(nil)
	_ ports.GenerationStreamer = (*Client)(nil)
)
