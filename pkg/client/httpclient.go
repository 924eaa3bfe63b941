// Package client is the HTTP SDK for the scheduling services. It never
// applies optimistic local state: callers only ever see what the backend
// confirmed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "homeshow/pkg/errors"
)

// ActorHeader identifies the acting user. Authentication itself is owned by
// the surrounding platform; the scheduling services only need to know who
// is asking.
const ActorHeader = "X-Actor-ID"

type HTTPClient struct {
	baseURL    string
	actorID    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, actorID string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		actorID: actorID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *HTTPClient) put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

func (c *HTTPClient) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.actorID != "" {
		req.Header.Set(ActorHeader, c.actorID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable,
			"scheduling backend unreachable", http.StatusServiceUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable,
			"reading backend response", http.StatusServiceUnavailable)
	}

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(respBody, &envelope); err != nil {
			return fmt.Errorf("decoding response envelope: %w", err)
		}
		if len(envelope.Data) > 0 {
			if err := json.Unmarshal(envelope.Data, result); err != nil {
				return fmt.Errorf("decoding response data: %w", err)
			}
		}
	}
	return nil
}

// errorFromResponse rebuilds an AppError from the wire payload so callers
// can distinguish validation, conflict and auth failures without string
// matching. Auth status codes are preserved verbatim; the sync layer backs
// off on them.
func errorFromResponse(statusCode int, body []byte) error {
	var payload struct {
		Error   string         `json:"error"`
		Code    string         `json:"code"`
		Details map[string]any `json:"details,omitempty"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return apperrors.New(codeForStatus(statusCode),
			http.StatusText(statusCode), statusCode)
	}

	code := payload.Code
	if code == "" {
		code = codeForStatus(statusCode)
	}
	appErr := apperrors.New(code, payload.Error, statusCode)
	if len(payload.Details) > 0 {
		appErr = appErr.WithDetails(payload.Details)
	}
	return appErr
}

func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return apperrors.CodeInvalidInput
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusUnprocessableEntity:
		return apperrors.CodeValidation
	case http.StatusServiceUnavailable:
		return apperrors.CodeUnavailable
	case http.StatusGatewayTimeout:
		return apperrors.CodeTimeout
	default:
		return apperrors.CodeInternal
	}
}
