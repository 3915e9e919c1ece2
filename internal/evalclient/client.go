// Package evalclient talks to a remote evaluation service over HTTP.
package evalclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/cheese-review/internal/review"
	"github.com/park285/cheese-review/pkg/reviewdto"
)

var ErrEngineReported = errors.New("evaluation service reported an engine error")

// HeaderProvider allows injecting per-request headers.
type HeaderProvider func() map[string]string

// BearerToken sends key as an Authorization bearer token. An empty key sends nothing.
func BearerToken(key string) HeaderProvider {
	return func() map[string]string {
		if key == "" {
			return nil
		}
		return map[string]string{"Authorization": "Bearer " + key}
	}
}

// APIError is a non-2xx answer. Domain is filled when the body was a reviewdto.DomainError.
type APIError struct {
	Status int
	Domain reviewdto.DomainError
	Body   string
}

func (e *APIError) Error() string {
	if e.Domain.Code != "" || e.Domain.Message != "" {
		return fmt.Sprintf("evaluation api error: status=%d code=%s: %s", e.Status, e.Domain.Code, e.Domain.Error())
	}
	return fmt.Sprintf("evaluation api error: status=%d body=%s", e.Status, e.Body)
}

type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

var _ review.Evaluator = (*Client)(nil)

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.http.MaxConnsPerHost = n
		}
	}
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// WithRetry sets the total attempts per call, including the first one.
func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDialer swaps the transport dialer, e.g. for an in-memory listener in tests.
func WithDialer(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 60 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 60 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze calls POST /analyze.
func (c *Client) Analyze(ctx context.Context, fen string, depth int) (reviewdto.AnalysisResponse, error) {
	req := reviewdto.AnalysisRequest{FEN: fen, Depth: depth}
	var resp reviewdto.AnalysisResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/analyze", req, &resp, true); err != nil {
		return reviewdto.AnalysisResponse{}, err
	}
	return resp, nil
}

// AnalyzeBatch calls POST /analyze-batch.
func (c *Client) AnalyzeBatch(ctx context.Context, fens []string, depth int) ([]reviewdto.AnalysisResponse, error) {
	req := reviewdto.BatchRequest{FENs: fens, Depth: depth}
	var resp []reviewdto.AnalysisResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/analyze-batch", req, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// Evaluate implements review.Evaluator. An in-band error field is returned as an error.
func (c *Client) Evaluate(ctx context.Context, fen string, depth int) (review.EvaluationSample, error) {
	resp, err := c.Analyze(ctx, fen, depth)
	if err != nil {
		return review.EvaluationSample{}, err
	}
	return ToSample(resp)
}

// EvaluateBatch implements review.Evaluator. Any per-position error fails the whole batch.
func (c *Client) EvaluateBatch(ctx context.Context, fens []string, depth int) ([]review.EvaluationSample, error) {
	resp, err := c.AnalyzeBatch(ctx, fens, depth)
	if err != nil {
		return nil, err
	}
	out := make([]review.EvaluationSample, len(resp))
	for i, r := range resp {
		s, err := ToSample(r)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// ToSample converts a wire response, rounding fractional centipawns.
func ToSample(r reviewdto.AnalysisResponse) (review.EvaluationSample, error) {
	if r.Error != "" {
		return review.EvaluationSample{}, fmt.Errorf("%w: %s", ErrEngineReported, r.Error)
	}
	if math.IsNaN(r.Evaluation) || math.IsInf(r.Evaluation, 0) {
		return review.EvaluationSample{}, fmt.Errorf("%w: non-finite evaluation", ErrEngineReported)
	}
	return review.EvaluationSample{
		Evaluation:      int(math.Round(r.Evaluation)),
		IsMate:          r.Mate,
		RecommendedMove: r.Move(),
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	url := c.baseURL + path
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.SetContentType("application/json")

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			if attempt == attempts || !retry {
				return fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			err := decodeAPIError(status, resp.Body())
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Body: truncate(string(body), 512)}
	var de reviewdto.DomainError
	if json.Unmarshal(body, &de) == nil {
		apiErr.Domain = de
	}
	return apiErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
