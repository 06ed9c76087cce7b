package codenvy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

// storedTokenSource reads the token from its provider on every request, so
// a client built before a new login picks up the fresh token.
type storedTokenSource struct {
	remote   string
	provider domain.TokenProvider
}

func (s *storedTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.provider.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: reading token for %s: %w", domain.ErrAuthentication, s.remote, err)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: no token stored for %s", domain.ErrAuthentication, s.remote)
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// loginTokenSource exchanges username and password for a token.
type loginTokenSource struct {
	endpoint string
	username string
	password string
	sink     domain.TokenSink
	http     *http.Client
}

// TokenContext runs the login exchange bound to ctx.
func (s *loginTokenSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	body, err := json.Marshal(loginRequest{Username: s.username, Password: s.password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logger.Log("Codenvy: Logging in as %s on %s", s.username, s.endpoint)
	resp, err := s.http.Do(req)
	if err != nil {
		logger.LogError("CODENVY_LOGIN", s.endpoint, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(req, resp); err != nil {
		logger.LogError("CODENVY_LOGIN", s.endpoint, err)
		return nil, err
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%w: decoding login response: %w", domain.ErrTransport, err)
	}

	if token.Value != "" && s.sink != nil {
		s.sink.StoreToken(token.Value)
	}
	return &oauth2.Token{AccessToken: token.Value, TokenType: "Bearer"}, nil
}

// loginTransport authenticates requests like oauth2.Transport, but runs the
// login exchange with the context of the request that first needs a token,
// so cancelling that request aborts the exchange. A failed exchange is not
// cached and the next request tries again.
type loginTransport struct {
	source *loginTokenSource
	base   http.RoundTripper

	mu    sync.Mutex
	token *oauth2.Token
}

func (t *loginTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokenFor(req.Context())
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}

	transport := &oauth2.Transport{Source: oauth2.StaticTokenSource(token), Base: t.base}
	return transport.RoundTrip(req)
}

func (t *loginTransport) tokenFor(ctx context.Context) (*oauth2.Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token.Valid() {
		return t.token, nil
	}
	token, err := t.source.TokenContext(ctx)
	if err != nil {
		return nil, err
	}
	t.token = token
	return token, nil
}
