package types

import (
	"time"

	"golang.org/x/oauth2"
)

// Credentials is the iSolarCloud credential record persisted between runs.
// AppKey, SecretKey and AuthURL come from the login form, the token fields are
// filled in once the authorization code has been exchanged.
type Credentials struct {
	AppKey       string `json:"appKey"`
	SecretKey    string `json:"secretKey"`
	AuthURL      string `json:"authUrl"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenExpiry  int64  `json:"tokenExpiry,omitempty"` // ms since the unix epoch
	GatewayURL   string `json:"gatewayUrl,omitempty"`
}

// Resumable returns true if the stored session can be resumed without logging
// in again: an access token exists and it expires strictly after now.
func (c *Credentials) Resumable(now time.Time) bool {
	if c == nil {
		return false
	}
	return c.AccessToken != "" && c.TokenExpiry > now.UnixMilli()
}

// Expiry returns TokenExpiry as a time. Zero if unset.
func (c Credentials) Expiry() time.Time {
	if c.TokenExpiry == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.TokenExpiry)
}

// Gateway returns the gateway URL, defaulting to the Australian gateway.
func (c Credentials) Gateway() string {
	if c.GatewayURL == "" {
		return DefaultGatewayURL
	}
	return c.GatewayURL
}

// Token converts the token fields into an oauth2 token.
func (c Credentials) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry(),
	}
}

// WithToken returns a copy of the credentials carrying the given token.
func (c Credentials) WithToken(tok *oauth2.Token) Credentials {
	c.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		c.RefreshToken = tok.RefreshToken
	}
	if tok.Expiry.IsZero() {
		c.TokenExpiry = 0
	} else {
		c.TokenExpiry = tok.Expiry.UnixMilli()
	}
	return c
}
