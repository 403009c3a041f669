// Package client talks to the task board REST API. A *Client satisfies
// board.Persistence, so a session.Session can run against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"taskcanvas/logging"
	"taskcanvas/models"
)

const defaultTimeout = 10 * time.Second

// NewHTTPClient returns an http.Client with bounded dial, TLS and overall timeouts.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken starts the client with an existing bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithBreakerSettings replaces the default circuit breaker configuration.
func WithBreakerSettings(settings gobreaker.Settings) Option {
	return func(c *Client) { c.breaker = newBreaker(settings) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    NewHTTPClient(defaultTimeout),
		breaker: newBreaker(gobreaker.Settings{
			Name:        "TaskBoardAPI",
			MaxRequests: 1,
			Timeout:     5 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(settings gobreaker.Settings) *gobreaker.CircuitBreaker {
	if settings.OnStateChange == nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		}
	}
	// Only server and transport failures count against the breaker.
	settings.IsSuccessful = func(err error) bool {
		return err == nil || !errors.Is(err, models.ErrRemoteFailure)
	}
	return gobreaker.NewCircuitBreaker(settings)
}

// Token returns the bearer token currently attached to requests.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type errorBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.send(ctx, method, path, token, payload, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s: %w: %v", method, path, models.ErrRemoteFailure, err)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path, token string, payload []byte, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Logger.Warnf("Event ID: API_REQUEST_FAILED, Description: %s %s: %v", method, path, err)
		return fmt.Errorf("%s %s: %w: %v", method, path, models.ErrRemoteFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(method, path, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w: decode response: %v", method, path, models.ErrRemoteFailure, err)
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)
	msg := eb.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = models.ErrValidation
	case http.StatusUnauthorized:
		kind = models.ErrUnauthorized
	case http.StatusForbidden:
		kind = models.ErrForbidden
	case http.StatusNotFound:
		kind = models.ErrNotFound
	case http.StatusConflict:
		kind = models.ErrConflict
	default:
		kind = models.ErrRemoteFailure
		logging.Logger.Warnf("Event ID: API_REQUEST_FAILED, Description: %s %s returned %d: %s", method, path, resp.StatusCode, msg)
	}
	return models.NewError(kind, msg)
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
