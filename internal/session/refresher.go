package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/solara-app/mediakit/internal/bridge"
	"github.com/solara-app/mediakit/internal/config"
)

// Session is the subset of the backend session payload we care about: its
// presence is what signals a successful refresh.
type Session struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

type refreshResponse struct {
	Session *Session `json:"session"`
	Error   string   `json:"error,omitempty"`
}

// APIRefresher calls the backend's own session-refresh primitive. Used when
// the session lives in this process (no embedding host).
type APIRefresher struct {
	client   *http.Client
	endpoint string
}

// NewAPIRefresher builds a refresher for the backend refresh endpoint. The
// http client must carry the session cookie jar.
func NewAPIRefresher(client *http.Client, endpoint string) *APIRefresher {
	return &APIRefresher{client: client, endpoint: endpoint}
}

func (r *APIRefresher) Refresh(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(nil))
	if err != nil {
		return false, err
	}
	req.Header.Set(config.HCType, config.CTypeJSON)

	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, err
	}

	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false, fmt.Errorf("malformed refresh response: %w", err)
	}

	if parsed.Error != "" {
		sessionLogger.Warn().Str("error", parsed.Error).Msg("Backend rejected session refresh")
	}

	// Success iff a non-null session came back.
	return parsed.Session != nil, nil
}

// BridgeRefresher delegates refresh to the embedding host application: it
// posts a refresh request over the bridge and waits, bounded, for the
// acknowledgment event. Timeout counts as failure.
type BridgeRefresher struct {
	bridge  bridge.Bridge
	timeout time.Duration
}

func NewBridgeRefresher(b bridge.Bridge, timeout time.Duration) *BridgeRefresher {
	return &BridgeRefresher{bridge: b, timeout: timeout}
}

func (r *BridgeRefresher) Refresh(ctx context.Context) (bool, error) {
	if err := r.bridge.Post(bridge.Message{Type: bridge.TypeRequestSessionRefresh}); err != nil {
		return false, fmt.Errorf("failed to signal host: %w", err)
	}

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-r.bridge.Events():
			if !ok {
				return false, fmt.Errorf("host bridge closed while awaiting refresh")
			}
			// Correlated by type alone; the coordinator keeps at most one
			// request outstanding.
			if msg.Type == bridge.TypeSessionRefreshed {
				return msg.Success, nil
			}
		case <-timer.C:
			sessionLogger.Warn().Dur("timeout", r.timeout).Msg("Host refresh acknowledgment timed out")
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
