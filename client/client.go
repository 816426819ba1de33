package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trip-memo/domain"
)

const (
	tracerName      = "trip-memo/client"
	maxResponseSize = 1 << 20 // 1 MiB
	defaultTimeout  = 30 * time.Second
	headerRequestID = "X-Request-ID"
	contentTypeJSON = "application/json"
	createMemoPath  = "/api/memo/create"
	deleteMemoPath  = "/api/memo/delete"
	deleteSpotPath  = "/api/spot/delete"
)

// Client wraps http.Client with helpers for the memo API's JSON requests.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a new Client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Forward issues a request with a raw body and returns the status and body as
// received. Only transport failures are returned as errors.
func (c *Client) Forward(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	ctx, span := c.tracer().Start(ctx, "http "+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.target", path),
	)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-type", contentTypeJSON)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(headerRequestID, uuid.NewString())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return resp.StatusCode, nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return resp.StatusCode, data, nil
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = sonic.Marshal(body); err != nil {
			return err
		}
	}
	status, data, err := c.Forward(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if !successful(status) {
		return &StatusError{StatusCode: status, Body: data}
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// GetJSON issues a GET request and decodes the JSON response.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST request with a JSON body and decodes the response.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

// Fetch returns the raw body stored under key, which is the request path
// relative to BaseURL. It satisfies the cache fetcher contract.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	status, data, err := c.Forward(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, err
	}
	if !successful(status) {
		return nil, &StatusError{StatusCode: status, Body: data}
	}
	return data, nil
}

// CreateMemo reports whether the memo was created. False means the password
// was rejected.
func (c *Client) CreateMemo(ctx context.Context, req domain.CreateMemoRequest) (bool, error) {
	var applied bool
	err := c.PostJSON(ctx, createMemoPath, req, &applied)
	return applied, err
}

// DeleteMemo reports whether the memo was deleted. False means the password
// was rejected.
func (c *Client) DeleteMemo(ctx context.Context, req domain.DeleteMemoRequest) (bool, error) {
	var applied bool
	err := c.PostJSON(ctx, deleteMemoPath, req, &applied)
	return applied, err
}

// DeleteSpot reports whether the spot was deleted. False means the password
// was rejected.
func (c *Client) DeleteSpot(ctx context.Context, req domain.DeleteSpotRequest) (bool, error) {
	var applied bool
	err := c.PostJSON(ctx, deleteSpotPath, req, &applied)
	return applied, err
}

func successful(status int) bool {
	return status >= 200 && status < 300
}
