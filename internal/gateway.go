package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	inquiryPath           = "/v2/inquiry"
	transactionStatusPath = "/transactionStatus"
)

// GatewayClient posts signed JSON payloads to the gateway. There are no
// retries; any failure is returned to the caller as *UpstreamError.
type GatewayClient struct {
	baseUrl    string
	httpClient *http.Client
	metrics    *Metrics
}

// NewGatewayClient creates a client with connection pooling and the given
// overall request timeout.
func NewGatewayClient(baseUrl string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (g *GatewayClient) SetMetrics(metrics *Metrics) {
	g.metrics = metrics
}

// Post sends payload to path and returns the response body of a 2xx reply.
func (g *GatewayClient) Post(ctx context.Context, operation, path string, payload interface{}) ([]byte, error) {
	requestData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseUrl+path, bytes.NewReader(requestData))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	response, err := g.httpClient.Do(req)
	if err != nil {
		g.metrics.RecordGatewayCall(operation, 0, time.Since(start))
		return nil, &UpstreamError{Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(response.Body)

	body, err := io.ReadAll(response.Body)
	g.metrics.RecordGatewayCall(operation, response.StatusCode, time.Since(start))
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: response.StatusCode, Body: body}
	}
	return body, nil
}

// rawJSON passes a gateway body through as JSON, quoting it when the gateway
// answered with something else.
func rawJSON(body []byte) json.RawMessage {
	if len(body) > 0 && json.Valid(body) {
		return body
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
