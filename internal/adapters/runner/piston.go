// Package runner is the outbound client for the execution collaborator: a
// remote compile/run service invoked with {code, language, version} that
// answers {run:{output,...}}. It is treated as an untrusted black box; every
// failure mode maps to a distinct error so the caller can tell a broken
// collaborator from a run that printed nothing.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/app/orch"
)

var (
	ErrMalformedResponse = errors.New("runner: malformed collaborator response")
	ErrNoRunReport       = errors.New("runner: collaborator returned no run report")
)

type Client struct {
	url string
	hc  *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: timeout},
	}
}

type executePayload struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Version  string `json:"version"`
}

type executeResponse struct {
	Run *struct {
		Output string `json:"output"`
		Stderr string `json:"stderr"`
		Code   int    `json:"code"`
	} `json:"run"`
	Message string `json:"message"`
}

// Execute posts the buffer to the collaborator and decodes the run report.
// Unreachable host, timeout, non-2xx status and undecodable bodies all come
// back as errors; a run with nonzero exit code does not.
func (c *Client) Execute(ctx context.Context, req orch.ExecRequest) (*orch.ExecResult, error) {
	body, err := json.Marshal(executePayload{Code: req.Code, Language: req.Language, Version: req.Version})
	if err != nil {
		return nil, fmt.Errorf("runner: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("runner: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("runner: execute: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a little of the body for the log; clients only get the status.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Warn().Str("module", "runner").Str("status", resp.Status).Bytes("body", snippet).Msg("collaborator rejected request")
		return nil, fmt.Errorf("runner: collaborator returned %s", resp.Status)
	}

	var out executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Run == nil {
		if out.Message != "" {
			return nil, fmt.Errorf("runner: collaborator error: %s", out.Message)
		}
		return nil, ErrNoRunReport
	}
	return &orch.ExecResult{
		Output:   out.Run.Output,
		Stderr:   out.Run.Stderr,
		ExitCode: out.Run.Code,
	}, nil
}
