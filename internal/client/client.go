// Package client talks to the tasks REST API. It attaches the stored access
// token to every request and, on a 401, exchanges the refresh token once and
// retries the request once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/adanyl0v/go-tasks/internal/models"
)

const refreshPath = "/api/auth/refresh"

type Client struct {
	logger     zerolog.Logger
	httpClient *http.Client
	baseURL    *url.URL
	tokens     TokenStore

	refreshes singleflight.Group

	mu        sync.RWMutex
	onExpired func()
}

func New(
	logger zerolog.Logger,
	httpClient *http.Client,
	baseURL string,
	tokens TokenStore,
) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tokens == nil {
		tokens = NewMemoryStore()
	}

	return &Client{
		logger:     logger,
		httpClient: httpClient,
		baseURL:    u,
		tokens:     tokens,
	}, nil
}

// OnSessionExpired registers fn to be called once per failed refresh, after
// the stored tokens have been cleared.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// Do sends an authenticated request and decodes a successful response body
// into out (nil discards it). Non-2xx responses are returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.do(ctx, method, path, query, func() any { return body }, out)
}

// do is Do with a body builder. The builder runs again before the retry, so
// a body that carries a token sees the pair stored by the refresh.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body func() any, out any) error {
	payload, err := encodeBody(body())
	if err != nil {
		return err
	}

	accessToken := c.tokens.Tokens().AccessToken
	resp, err := c.send(ctx, method, path, query, payload, accessToken)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		cause := newAPIError(resp)
		_ = resp.Body.Close()

		accessToken, err = c.renewAccessToken(ctx, accessToken, cause)
		if err != nil {
			return err
		}

		payload, err = encodeBody(body())
		if err != nil {
			return err
		}
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Msg("retrying request with renewed access token")
		resp, err = c.send(ctx, method, path, query, payload, accessToken)
		if err != nil {
			return err
		}
	}

	return decodeResponse(resp, out)
}

// doPublic sends a request without credentials and without the refresh flow.
func (c *Client) doPublic(ctx context.Context, method, path string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, method, path, nil, payload, "")
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

// renewAccessToken returns the access token to retry with after a 401 that
// was answered to a request carrying used.
func (c *Client) renewAccessToken(ctx context.Context, used string, cause *APIError) (string, error) {
	current := c.tokens.Tokens()
	if current.AccessToken != "" && current.AccessToken != used {
		return current.AccessToken, nil
	}
	if current.RefreshToken == "" {
		return "", cause
	}

	v, err, shared := c.refreshes.Do(current.RefreshToken, func() (any, error) {
		// A flight that finished just before this one may have rotated the
		// pair already.
		if latest := c.tokens.Tokens(); latest.AccessToken != "" && latest.RefreshToken != current.RefreshToken {
			return latest.AccessToken, nil
		}
		// The exchange outlives the caller that started it: other requests
		// may be waiting on the same result.
		tokens, err := c.exchangeRefreshToken(context.WithoutCancel(ctx), current.RefreshToken)
		if err != nil {
			c.expireSession(err)
			return "", err
		}
		return tokens.AccessToken, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	c.logger.Debug().
		Bool("shared", shared).
		Msg("renewed access token")
	return v.(string), nil
}

func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	var tokens models.AuthTokens
	err := c.doPublic(ctx, http.MethodPost, refreshPath, refreshRequest{RefreshToken: refreshToken}, &tokens)
	if err != nil {
		c.logger.Error().
			Err(err).
			Msg("failed to exchange refresh token")
		return nil, err
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		err = errors.New("refresh response is missing tokens")
		c.logger.Error().
			Err(err).
			Msg("failed to exchange refresh token")
		return nil, err
	}

	err = c.tokens.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	if err != nil {
		c.logger.Error().
			Err(err).
			Msg("failed to store tokens")
		return nil, err
	}

	c.logger.Info().Msg("refreshed session")
	return &tokens, nil
}

func (c *Client) expireSession(cause error) {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Error().
			Err(err).
			Msg("failed to clear tokens")
	}
	c.logger.Warn().
		Err(cause).
		Msg("session expired")

	c.mu.RLock()
	fn := c.onExpired
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (c *Client) send(
	ctx context.Context,
	method, path string,
	query url.Values,
	payload []byte,
	accessToken string,
) (*http.Response, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("failed to send request")
		return nil, err
	}
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("sent request")
	return resp, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}

func decodeResponse(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
