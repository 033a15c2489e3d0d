package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/d60-Lab/delivery-admin/internal/client")

// envelope 写接口的通用返回 { message } 或 { error }
type envelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// backend 单个 REST 后端
type backend struct {
	baseURL string
	http    *http.Client
}

func newBackend(baseURL string, httpClient *http.Client) backend {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return backend{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (b backend) startSpan(ctx context.Context, name, method, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", b.baseURL+path),
		),
	)
}

// getJSON GET 并解码；非 2xx 直接返回 StatusError
func (b backend) getJSON(ctx context.Context, name, path string, out interface{}) (err error) {
	ctx, span := b.startSpan(ctx, name, http.MethodGet, path)
	defer func() { endSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", name, err)
	}
	return nil
}

// postJSON POST JSON 并解析 envelope；非 2xx 时返回 APIError（载荷不可解析时为 StatusError）
func (b backend) postJSON(ctx context.Context, name, path string, body interface{}) (env envelope, err error) {
	ctx, span := b.startSpan(ctx, name, http.MethodPost, path)
	defer func() { endSpan(span, err) }()

	payload, err := json.Marshal(body)
	if err != nil {
		return env, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return env, err
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := b.http.Do(req)
	if err != nil {
		return env, err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return env, err
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if decErr := json.Unmarshal(raw, &env); decErr != nil {
			if !ok {
				return env, &StatusError{Code: resp.StatusCode}
			}
			return env, fmt.Errorf("decode %s response: %w", name, decErr)
		}
	}
	if !ok {
		return env, &APIError{Code: resp.StatusCode, Message: env.Error}
	}
	return env, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
