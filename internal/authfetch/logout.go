package authfetch

import (
	"context"
	"net/http"

	"github.com/solara-app/mediakit/internal/bridge"
)

// LogoutHandler performs the forced logout path: best-effort remote session
// deletion, a host logout signal when embedded, then navigation to the login
// entry point. Nothing here can fail the caller - an expired, unrefreshable
// session has no local recovery anyway.
type LogoutHandler struct {
	http            *http.Client
	sessionEndpoint string

	// bridge is nil when not embedded in a host application.
	bridge bridge.Bridge

	// navigate performs the hard redirect to loginURL; supplied by the
	// embedding surface.
	navigate func(url string)
	loginURL string
}

func NewLogoutHandler(hc *http.Client, sessionEndpoint string, b bridge.Bridge, loginURL string, navigate func(string)) *LogoutHandler {
	return &LogoutHandler{
		http:            hc,
		sessionEndpoint: sessionEndpoint,
		bridge:          b,
		navigate:        navigate,
		loginURL:        loginURL,
	}
}

func (l *LogoutHandler) ForceLogout(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, l.sessionEndpoint, nil)
	if err == nil {
		if resp, err := l.http.Do(req); err != nil {
			fetchLogger.Warn().Err(err).Msg("Remote session deletion failed")
		} else {
			drain(resp)
		}
	}

	if l.bridge != nil {
		if err := l.bridge.Post(bridge.Message{Type: bridge.TypeLogout}); err != nil {
			fetchLogger.Warn().Err(err).Msg("Failed to signal host logout")
		}
	}

	if l.navigate != nil {
		l.navigate(l.loginURL)
	}
}
