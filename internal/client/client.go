// Package client is a small Go client for the mtags HTTP API, used by
// the CLI's remote mode.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/dgallion1/mtags/internal/mtag"
	"github.com/dgallion1/mtags/internal/pipeline"
)

// Client communicates with the mtags HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// OutlineResponse is the body of POST /api/outline.
type OutlineResponse struct {
	Filename   string              `json:"filename"`
	Tags       []*mtag.FunctionTag `json:"tags"`
	Prototypes []string            `json:"prototypes"`
}

// Outline scans a single file synchronously. path, when non-empty, is
// forwarded so the server can apply its system-root builtin check.
func (c *Client) Outline(ctx context.Context, filename, path string, src []byte) (*OutlineResponse, error) {
	u := c.baseURL + "/api/outline?filename=" + url.QueryEscape(filename)
	if path != "" {
		u += "&path=" + url.QueryEscape(path)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/plain")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("outline %s: status %d: %s", filename, resp.StatusCode, string(respBody))
	}

	var out OutlineResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	return &out, nil
}

// BatchResponse is the body of POST /api/outline/batch.
type BatchResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Files   int    `json:"files"`
	PollURL string `json:"poll_url"`
}

// SubmitBatch uploads several files as one async job.
func (c *Client) SubmitBatch(ctx context.Context, files map[string][]byte) (*BatchResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, fmt.Errorf("write form file: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/outline/batch", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit batch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("submit batch: status %d: %s", resp.StatusCode, string(respBody))
	}

	var out BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}
	return &out, nil
}

// StatusResponse is the body of GET /api/outline/{id}/status.
type StatusResponse struct {
	JobID    string            `json:"job_id"`
	Status   string            `json:"status"`
	Phase    string            `json:"phase"`
	Progress pipeline.Progress `json:"progress"`
}

// JobStatus polls a job's progress.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.getJSON(ctx, "/api/outline/"+jobID+"/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResultResponse is the body of GET /api/outline/{id}/result.
type ResultResponse struct {
	JobID    string                 `json:"job_id"`
	Status   string                 `json:"status"`
	Outlines []pipeline.FileOutline `json:"outlines"`
}

// JobResult fetches the per-file outlines of a finished (or partially
// finished) job.
func (c *Client) JobResult(ctx context.Context, jobID string) (*ResultResponse, error) {
	var out ResultResponse
	if err := c.getJSON(ctx, "/api/outline/"+jobID+"/result", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
