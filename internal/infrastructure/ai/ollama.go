package ai

import (
	"context"
	"fmt"
	"io"

	"github.com/doeshing/infernav/internal/domain"
)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// Generate posts {model, prompt} to {address}/api/generate and streams the
// newline-delimited JSON reply into out as it arrives.
func (c *Client) Generate(ctx context.Context, address, model, prompt string, out domain.StreamWriter) domain.GenerationOutcome {
	base := domain.NormalizeAddress(address)
	if base == "" {
		return domain.GenerationOutcome{Detail: "no server selected"}
	}
	if model == "" {
		return domain.GenerationOutcome{Detail: "no model selected"}
	}
	if c.opts.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.GenerationTimeout)
		defer cancel()
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/x-ndjson").
		SetBody(generateRequest{Model: model, Prompt: prompt}).
		SetDoNotParseResponse(true).
		Post(base + domain.GeneratePath)
	if err != nil {
		c.warn("generate request failed", map[string]interface{}{"address": address, "model": model, "error": err.Error()})
		return domain.GenerationOutcome{Detail: fmt.Sprintf("generation request failed: %v", err)}
	}
	body := resp.RawBody()
	if body == nil {
		return domain.GenerationOutcome{Detail: "generation returned no body"}
	}
	defer body.Close()

	if !resp.IsSuccess() {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, maxProbeDrain))
		return domain.GenerationOutcome{Detail: fmt.Sprintf("generation rejected: %s", resp.Status())}
	}

	outcome := DecodeStream(body, out)
	c.debug("generation finished", map[string]interface{}{
		"address":   address,
		"model":     model,
		"fragments": outcome.Fragments,
		"skipped":   outcome.Skipped,
		"completed": outcome.Completed,
	})
	return outcome
}
