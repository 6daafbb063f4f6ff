package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/schedkit/webhook-relay/call"
)

/* Thin HTTP clients for the external SaaS collaborators.
 * These carry no business logic: they serialize the boundary contract
 * (call.Provider, call.Mailer) onto the vendors' REST APIs.
 */

// CallProvider implements call.Provider against the calling API's REST surface.
type CallProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCallProvider(baseURL, apiKey string) *CallProvider {
	return &CallProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type scheduleCallRequest struct {
	Phone string `json:"phone_number"`
	At    string `json:"scheduled_at"`
}

type callResponse struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

func (p *CallProvider) Schedule(ctx context.Context, phone string, at time.Time) (string, error) {
	var resp callResponse
	err := p.do(ctx, http.MethodPost, "/v1/calls", scheduleCallRequest{
		Phone: phone,
		At:    at.UTC().Format(time.RFC3339),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.CallID, nil
}

func (p *CallProvider) Reschedule(ctx context.Context, providerCallID string, at time.Time) error {
	return p.do(ctx, http.MethodPatch, "/v1/calls/"+providerCallID, scheduleCallRequest{
		At: at.UTC().Format(time.RFC3339),
	}, nil)
}

func (p *CallProvider) Cancel(ctx context.Context, providerCallID string) error {
	return p.do(ctx, http.MethodDelete, "/v1/calls/"+providerCallID, nil, nil)
}

func (p *CallProvider) Status(ctx context.Context, providerCallID string) (call.Status, error) {
	var resp callResponse
	if err := p.do(ctx, http.MethodGet, "/v1/calls/"+providerCallID, nil, &resp); err != nil {
		return 0, err
	}
	return call.NewStatus(resp.Status), nil
}

func (p *CallProvider) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling provider API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return fmt.Errorf("provider API responded %d: %s", resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding provider response: %w", err)
		}
	}
	return nil
}
