// Package authfetch issues HTTP requests that survive access-token expiry.
//
// The wrapper's sole added behavior is 401 handling: any other status passes
// through untouched, and transport-level errors propagate unmodified. On 401
// it funnels through the session refresh coordinator (so N concurrent expired
// requests cost one refresh), retries the original request once, and escalates
// to forced logout when the retry budget is exhausted or refresh fails.
package authfetch

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/solara-app/mediakit/internal/compression"
	"github.com/solara-app/mediakit/internal/config"
	"github.com/solara-app/mediakit/internal/session"
)

var fetchLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	fetchLogger = l
}

// Logout is the terminal escape hatch for an unrefreshable session.
type Logout interface {
	ForceLogout(ctx context.Context)
}

type Client struct {
	http     *http.Client
	sessions *session.Coordinator
	logout   Logout

	// maxRetries bounds re-sends after a successful refresh. Default 1.
	maxRetries int
}

func New(hc *http.Client, coordinator *session.Coordinator, logout Logout, maxRetries int) *Client {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &Client{
		http:       hc,
		sessions:   coordinator,
		logout:     logout,
		maxRetries: maxRetries,
	}
}

type requestOptions struct {
	noRefresh bool
}

type Option func(*requestOptions)

// WithoutRefresh disables 401 handling for this request; the 401 is returned
// as-is. Used by callers that handle auth failures themselves.
func WithoutRefresh() Option {
	return func(o *requestOptions) {
		o.noRefresh = true
	}
}

// Do sends the request. Requests with a body must be replayable (GetBody set,
// which http.NewRequest arranges for the usual buffer types); otherwise the
// retry is skipped and the 401 surfaces directly.
func (c *Client) Do(req *http.Request, opts ...Option) (*http.Response, error) {
	var options requestOptions
	for _, opt := range opts {
		opt(&options)
	}

	if req.Header.Get(config.HAcceptEncoding) == "" {
		req.Header.Set(config.HAcceptEncoding, compression.AcceptedEncodings)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return c.decompress(resp)
	}
	if options.noRefresh {
		return resp, nil
	}

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if !c.sessions.RequestRefresh(req.Context()) {
			fetchLogger.Warn().Str("url", req.URL.String()).Msg("Session refresh failed, logging out")
			c.logout.ForceLogout(req.Context())
			return resp, nil
		}

		retry, ok := c.replay(req)
		if !ok {
			fetchLogger.Warn().Str("url", req.URL.String()).Msg("Request body not replayable, returning 401")
			return resp, nil
		}

		next, err := c.http.Do(retry)
		if err != nil {
			drain(resp)
			return nil, err
		}
		if next.StatusCode != http.StatusUnauthorized {
			drain(resp)
			return c.decompress(next)
		}

		drain(resp)
		resp = next
	}

	fetchLogger.Warn().Str("url", req.URL.String()).Int("retries", c.maxRetries).Msg("Retry budget exhausted, logging out")
	c.logout.ForceLogout(req.Context())
	return resp, nil
}

// replay clones the request with a fresh body.
func (c *Client) replay(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	if req.Body == nil {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}

func (c *Client) decompress(resp *http.Response) (*http.Response, error) {
	encoding := resp.Header.Get(config.HContentEncoding)
	if encoding == "" {
		return resp, nil
	}

	body, err := compression.WrapReader(encoding, resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	resp.Body = body
	resp.Header.Del(config.HContentEncoding)
	resp.ContentLength = -1

	return resp, nil
}

// drain discards a superseded response so its connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10)) //nolint:errcheck
	resp.Body.Close()
}
