package isolarcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jameshartig/sungrowmon/pkg/common"
	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/storage"
	"github.com/jameshartig/sungrowmon/pkg/types"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	tokenPath        = "/openapi/apiManage/token"
	refreshTokenPath = "/openapi/apiManage/refreshToken"
	plantListPath    = "/openapi/platform/queryPowerStationList"
	deviceListPath   = "/openapi/platform/getDeviceListByPsId"
	realTimeDataPath = "/openapi/platform/getDeviceRealTimeData"

	resultCodeOK = "1"
	pageSize     = 50
)

var (
	// ErrNotAuthenticated is returned when no access token is available.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrTokenExpired is returned when the access token expired and cannot be
	// refreshed.
	ErrTokenExpired = errors.New("access token expired")
)

// APIError is a non-success result_code returned by the OpenAPI.
type APIError struct {
	Code string
	Msg  string
}

func (e APIError) Error() string {
	return fmt.Sprintf("isolarcloud api error %s: %s", e.Code, e.Msg)
}

// Client talks to the iSolarCloud OpenAPI on behalf of the single local user.
// It owns the in-memory credential record and persists it through store
// whenever the tokens change.
type Client struct {
	mu     sync.Mutex
	creds  *types.Credentials
	loaded bool

	// refreshMu serializes token refreshes
	refreshMu sync.Mutex

	store       storage.CredentialStore
	client      *http.Client
	limiter     *rate.Limiter
	now         func() time.Time
	openBrowser func(url string) error

	callbackHost    string
	callbackPortMin int
	callbackPortMax int
	authTimeout     time.Duration
}

var _ oauth2.TokenSource = (*Client)(nil)

// New returns a Client persisting credentials in store.
func New(store storage.CredentialStore) *Client {
	return &Client{
		store:           store,
		client:          common.HTTPClient(30 * time.Second),
		limiter:         rate.NewLimiter(rate.Inf, 1),
		now:             time.Now,
		openBrowser:     browser.OpenURL,
		callbackHost:    "localhost",
		callbackPortMin: 8080,
		callbackPortMax: 8090,
		authTimeout:     5 * time.Minute,
	}
}

// GetStoredCredentials returns a copy of the current credential record, loading
// it from the store the first time. The record may be partial, or nil if
// nothing was ever stored.
func (c *Client) GetStoredCredentials(ctx context.Context) (*types.Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		creds, err := c.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.creds = creds
		c.loaded = true
	}
	if c.creds == nil {
		return nil, nil
	}
	creds := *c.creds
	return &creds, nil
}

// Logout forgets the credentials in memory and in the store.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.creds = nil
	c.loaded = true
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear stored credentials: %w", err)
	}
	log.Ctx(ctx).InfoContext(ctx, "logged out of isolarcloud")
	return nil
}

func (c *Client) current() (types.Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.creds == nil || c.creds.AccessToken == "" {
		return types.Credentials{}, ErrNotAuthenticated
	}
	return *c.creds, nil
}

// setCredentials replaces the in-memory record and persists it.
func (c *Client) setCredentials(ctx context.Context, creds types.Credentials) error {
	c.mu.Lock()
	c.creds = &creds
	c.loaded = true
	c.mu.Unlock()

	if err := c.store.Save(ctx, creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

type apiResponse struct {
	ReqSerialNum string          `json:"req_serial_num"`
	ResultCode   string          `json:"result_code"`
	ResultMsg    string          `json:"result_msg"`
	ResultData   json.RawMessage `json:"result_data"`
}

// call POSTs body to the gateway with the bearer token attached and decodes
// result_data into out.
func (c *Client) call(ctx context.Context, path string, body map[string]any, out any) error {
	creds, err := c.current()
	if err != nil {
		return err
	}
	body["appkey"] = creds.AppKey

	hc := &http.Client{
		Transport: &oauth2.Transport{
			Source: c.TokenSource(ctx),
			Base:   c.client.Transport,
		},
		Timeout: c.client.Timeout,
	}
	return c.postJSON(ctx, hc, creds.Gateway()+path, creds.SecretKey, body, out)
}

// postJSON performs one OpenAPI request. It is also used for the token
// endpoints, which are called without a bearer token.
func (c *Client) postJSON(ctx context.Context, hc *http.Client, url, secretKey string, body any, out any) (err error) {
	endpoint := endpointName(url)
	start := time.Now()
	defer func() {
		result := "ok"
		var apiErr APIError
		switch {
		case errors.As(err, &apiErr):
			result = "api_error"
		case err != nil:
			result = "error"
		}
		requestsTotal.WithLabelValues(endpoint, result).Inc()
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-access-key", secretKey)

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("isolarcloud http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var ar apiResponse
	if err := json.Unmarshal(respBody, &ar); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to decode isolarcloud response", slog.Any("error", err), slog.String("endpoint", endpoint))
		return fmt.Errorf("decode response: %w", err)
	}
	if ar.ResultCode != resultCodeOK {
		log.Ctx(ctx).WarnContext(ctx, "isolarcloud api error",
			slog.String("endpoint", endpoint),
			slog.String("code", ar.ResultCode),
			slog.String("message", ar.ResultMsg),
			slog.String("serial", ar.ReqSerialNum),
		)
		return APIError{Code: ar.ResultCode, Msg: ar.ResultMsg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(ar.ResultData, out); err != nil {
		return fmt.Errorf("decode result_data: %w", err)
	}
	return nil
}

func endpointName(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
