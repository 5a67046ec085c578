package isolarcloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/types"
)

const callbackPath = "/callback"

const callbackSuccessPage = `<html>
<head><title>Authentication Successful</title></head>
<body style="font-family: sans-serif; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0;">
	<div style="text-align: center;">
		<h1>Authentication Successful</h1>
		<p>You can close this window and return to the app.</p>
	</div>
</body>
</html>
`

// AuthResult is the outcome of Authenticate. Message explains why
// Authenticated is false.
type AuthResult struct {
	Authenticated bool   `json:"authenticated"`
	Message       string `json:"message,omitempty"`
	TokenExpiry   int64  `json:"tokenExpiry,omitempty"`
}

// Authenticate runs the browser authorization flow. It listens for the
// authorization code on a local /callback URL, opens creds.AuthURL with that
// redirect, exchanges the code at the gateway and stores the resulting tokens.
func (c *Client) Authenticate(ctx context.Context, creds types.Credentials) (AuthResult, error) {
	if creds.AppKey == "" || creds.SecretKey == "" || creds.AuthURL == "" {
		return AuthResult{}, errors.New("appKey, secretKey and authUrl are required")
	}
	authURL, err := url.Parse(creds.AuthURL)
	if err != nil {
		return AuthResult{}, fmt.Errorf("invalid auth URL: %w", err)
	}

	c.mu.Lock()
	pending := creds
	c.creds = &pending
	c.loaded = true
	c.mu.Unlock()

	listener, port, err := c.listenCallback()
	if err != nil {
		return AuthResult{}, err
	}
	redirectURL := fmt.Sprintf("http://localhost:%d%s", port, callbackPath)

	query := authURL.Query()
	query.Set("redirectUrl", redirectURL)
	authURL.RawQuery = query.Encode()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			select {
			case errCh <- errors.New("no authorization code received"):
			default:
			}
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Authentication failed: no code received"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(callbackSuccessPage))
		select {
		case codeCh <- code:
		default:
		}
	})
	server := &http.Server{Handler: mux}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Ctx(ctx).InfoContext(ctx, "opening isolarcloud authorization page", slog.String("url", authURL.String()))
	if err := c.openBrowser(authURL.String()); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to open browser, open the url manually", slog.Any("error", err), slog.String("url", authURL.String()))
	}

	timer := time.NewTimer(c.authTimeout)
	defer timer.Stop()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return AuthResult{}, err
	case <-timer.C:
		return AuthResult{Authenticated: false, Message: "authentication timeout"}, nil
	case <-ctx.Done():
		return AuthResult{}, ctx.Err()
	}

	return c.exchangeCode(ctx, code, creds, redirectURL)
}

// listenCallback listens on the first free port in the configured range. A
// range of 0-0 picks any free port.
func (c *Client) listenCallback() (net.Listener, int, error) {
	for p := c.callbackPortMin; p <= c.callbackPortMax; p++ {
		l, err := net.Listen("tcp", net.JoinHostPort(c.callbackHost, fmt.Sprint(p)))
		if err != nil {
			continue
		}
		return l, l.Addr().(*net.TCPAddr).Port, nil
	}
	return nil, 0, fmt.Errorf("no available ports found (tried %d-%d)", c.callbackPortMin, c.callbackPortMax)
}

func (c *Client) exchangeCode(ctx context.Context, code string, creds types.Credentials, redirectURL string) (AuthResult, error) {
	body := map[string]any{
		"appkey":       creds.AppKey,
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": redirectURL,
	}
	var res loginResult
	if err := c.postJSON(ctx, c.client, creds.Gateway()+tokenPath, creds.SecretKey, body, &res); err != nil {
		return AuthResult{}, fmt.Errorf("authentication failed: %w", err)
	}
	if res.AccessToken == "" {
		return AuthResult{}, errors.New("authentication failed: no access token returned")
	}

	creds = creds.WithToken(res.token(c.now()))
	if err := c.setCredentials(ctx, creds); err != nil {
		return AuthResult{}, err
	}
	log.Ctx(ctx).InfoContext(ctx, "authenticated with isolarcloud",
		slog.Int("plants", len(res.AuthPsList)),
		slog.Time("expiry", creds.Expiry()),
	)
	return AuthResult{Authenticated: true, TokenExpiry: creds.TokenExpiry}, nil
}
