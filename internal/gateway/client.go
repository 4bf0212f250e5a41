package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/security"
)

const serviceName = "rental-mngt"

var (
	// ErrTokenExpired means the session must be renewed through the login page.
	ErrTokenExpired = errors.New("jwt expired")
	// ErrReauthRequired means the Google account link must be renewed.
	ErrReauthRequired = errors.New("re_auth_gg_required")
)

// APIError is a non-2xx answer of the rental-mngt API.
type APIError struct {
	Status     int
	StatusText string
	Message    string
	ErrorKey   string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	if e.Status != http.StatusForbidden {
		return nil
	}
	switch e.Message {
	case ErrTokenExpired.Error():
		return ErrTokenExpired
	case ErrReauthRequired.Error():
		return ErrReauthRequired
	}
	return nil
}

type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyText
	BodyBlob
)

// Response is a decoded API answer. The body kind follows the Content-Type header.
type Response struct {
	Status      int
	ContentType string
	Kind        BodyKind
	Body        []byte
	Filename    string
}

// Decode unmarshals a JSON body into v.
func (r *Response) Decode(v any) error {
	if r.Kind != BodyJSON {
		return fmt.Errorf("expected a JSON response, got %q", r.ContentType)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// File is an upload attached to a multipart request.
type File struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// Multipart is a form body. Fields are sent in order.
type Multipart struct {
	Fields [][2]string
	Files  map[string]File
}

// Add appends a plain form field.
func (m *Multipart) Add(key, value string) {
	m.Fields = append(m.Fields, [2]string{key, value})
}

// Client performs authenticated requests against the rental-mngt API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	inspector  security.TokenInspector
	log        *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, inspector security.TokenInspector) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		inspector:  inspector,
		log:        logger.WithService(serviceName),
	}
}

// Request sends one call to endpoint. A nil body sends nothing, a *Multipart
// body is sent as a form and anything else is JSON encoded.
func (c *Client) Request(ctx context.Context, endpoint, method, token string, body any) (*Response, error) {
	operation := method + " " + endpoint

	if c.inspector != nil {
		if _, err := c.inspector.Inspect(token); errors.Is(err, security.ErrExpiredToken) {
			c.log.WarnContext(ctx, "Token expired, request not sent", "operation", operation)
			return nil, &APIError{
				Status:     http.StatusForbidden,
				StatusText: http.StatusText(http.StatusForbidden),
				Message:    ErrTokenExpired.Error(),
			}
		}
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	logger.ExternalServiceCall(ctx, serviceName, operation)
	start := time.Now()

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult(ctx, serviceName, operation, time.Since(start), err)
		return nil, fmt.Errorf("%s failed: %w", operation, err)
	}
	defer httpResp.Body.Close()

	resp, err := readResponse(httpResp)
	if err != nil {
		logger.ExternalServiceResult(ctx, serviceName, operation, time.Since(start), err)
		return nil, err
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := newAPIError(httpResp, resp)
		logger.ExternalServiceResult(ctx, serviceName, operation, time.Since(start), apiErr, "status", resp.Status)
		return nil, apiErr
	}

	logger.ExternalServiceResult(ctx, serviceName, operation, time.Since(start), nil, "status", resp.Status)
	return resp, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, field := range b.Fields {
			if err := w.WriteField(field[0], field[1]); err != nil {
				return nil, "", err
			}
		}
		for name, file := range b.Files {
			part, err := w.CreateFormFile(name, file.Filename)
			if err != nil {
				return nil, "", err
			}
			if _, err := io.Copy(part, file.Content); err != nil {
				return nil, "", err
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func readResponse(httpResp *http.Response) (*Response, error) {
	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	contentType := httpResp.Header.Get("Content-Type")
	resp := &Response{
		Status:      httpResp.StatusCode,
		ContentType: contentType,
		Body:        data,
	}

	switch {
	case len(data) == 0:
		resp.Kind = BodyNone
	case strings.Contains(contentType, "application/json"):
		resp.Kind = BodyJSON
	case strings.Contains(contentType, "text/html"):
		resp.Kind = BodyText
	default:
		resp.Kind = BodyBlob
	}

	if disposition := httpResp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			resp.Filename = params["filename"]
		}
	}

	return resp, nil
}

func newAPIError(httpResp *http.Response, resp *Response) *APIError {
	statusText := http.StatusText(httpResp.StatusCode)
	apiErr := &APIError{
		Status:     httpResp.StatusCode,
		StatusText: statusText,
	}

	switch resp.Kind {
	case BodyJSON:
		var payload struct {
			Message  string `json:"message"`
			ErrorKey string `json:"errorKey"`
		}
		if json.Unmarshal(resp.Body, &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.ErrorKey = payload.ErrorKey
		}
	case BodyText:
		apiErr.Message = resp.Text()
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("%s %d", statusText, httpResp.StatusCode)
	}
	return apiErr
}
