package isolarcloud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/types"
	"golang.org/x/oauth2"
)

type loginResult struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	AuthPsList   []string `json:"auth_ps_list"`
	AuthUser     int      `json:"auth_user"`
}

// token converts a login or refresh result into an oauth2 token. The expiry is
// truncated to whole seconds.
func (r loginResult) token(now time.Time) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: r.RefreshToken,
		Expiry:       time.Unix(now.Add(time.Duration(r.ExpiresIn)*time.Second).Unix(), 0),
	}
}

type ctxTokenSource struct {
	ctx context.Context
	c   *Client
}

func (s ctxTokenSource) Token() (*oauth2.Token, error) {
	return s.c.token(s.ctx)
}

// TokenSource returns a token source that refreshes using ctx.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return ctxTokenSource{ctx: ctx, c: c}
}

// Token implements oauth2.TokenSource.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.token(context.Background())
}

// token returns the current access token, refreshing it first if it has
// expired and a refresh token is available.
func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	creds, err := c.current()
	if err != nil {
		return nil, err
	}
	if tok := creds.Token(); tok.Valid() {
		return tok, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	creds, err = c.current()
	if err != nil {
		return nil, err
	}
	if tok := creds.Token(); tok.Valid() {
		return tok, nil
	}
	if creds.RefreshToken == "" {
		return nil, ErrTokenExpired
	}

	tok, err := c.refresh(ctx, creds)
	if err != nil {
		tokenRefreshTotal.WithLabelValues("error").Inc()
		log.Ctx(ctx).WarnContext(ctx, "failed to refresh isolarcloud token", slog.Any("error", err))
		return nil, fmt.Errorf("%w: refresh failed: %w", ErrTokenExpired, err)
	}
	tokenRefreshTotal.WithLabelValues("ok").Inc()
	return tok, nil
}

func (c *Client) refresh(ctx context.Context, creds types.Credentials) (*oauth2.Token, error) {
	body := map[string]any{
		"appkey":        creds.AppKey,
		"refresh_token": creds.RefreshToken,
	}
	var res loginResult
	if err := c.postJSON(ctx, c.client, creds.Gateway()+refreshTokenPath, creds.SecretKey, body, &res); err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, fmt.Errorf("refresh response missing access_token")
	}

	tok := res.token(c.now())
	if err := c.setCredentials(ctx, creds.WithToken(tok)); err != nil {
		// the new token is usable even if persisting it failed
		log.Ctx(ctx).ErrorContext(ctx, "failed to persist refreshed token", slog.Any("error", err))
	}
	log.Ctx(ctx).DebugContext(ctx, "refreshed isolarcloud token", slog.Time("expiry", tok.Expiry))
	return tok, nil
}
