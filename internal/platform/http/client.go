package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"fxconvert/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorMessage = 200 // characters, not bytes
	userAgent       = "fxconvert/1.0"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func (r *Response) DecodeJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Client performs GET requests and turns failures into domain errors.
type Client struct {
	http *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{http: httpClient}
}

// Get fetches url. Status codes >= 400 produce *domain.StatusError, network failures *domain.ConnectivityError.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %q: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.ConnectivityError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ConnectivityError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	logrus.WithFields(logrus.Fields{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(started),
	}).Debug("GET finished")

	if resp.StatusCode >= http.StatusBadRequest {
		msg := string(body)
		if runes := []rune(msg); len(runes) > maxErrorMessage {
			msg = string(runes[:maxErrorMessage])
		}
		return nil, &domain.StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
