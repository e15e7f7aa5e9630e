package deviceflow

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitforge-dev/gitforge/pkg/domain/interfaces"
	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
	"github.com/gitforge-dev/gitforge/pkg/utils/safe"
)

// minPollInterval is the GitHub-documented floor for token polling.
const minPollInterval = 5

// slowDownStep is added to the interval when the endpoint answers
// slow_down, per GitHub's device-flow guidance.
const slowDownStep = 5

// Client implements the OAuth Device Flow against GitHub's login
// endpoints (or a CORS relay in front of them). Only the public client
// ID is needed; device flow has no client secret.
type Client struct {
	clientID   types.ClientID
	baseURL    string
	scope      string
	httpClient *http.Client
	wait       func(ctx context.Context, d time.Duration) error
}

var _ interfaces.DeviceAuthorizer = (*Client)(nil)

type Option func(*Client)

// WithBaseURL points the flow at a relay or a test server. The default
// is GitHub's own login host.
func WithBaseURL(u string) Option {
	return func(x *Client) {
		x.baseURL = strings.TrimSuffix(u, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(x *Client) {
		x.httpClient = hc
	}
}

// WithWaitFunc replaces the inter-poll sleep, so tests can observe the
// requested delays without waiting them out.
func WithWaitFunc(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(x *Client) {
		x.wait = wait
	}
}

func New(clientID types.ClientID, options ...Option) (*Client, error) {
	if clientID == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "OAuth client ID is empty")
	}

	client := &Client{
		clientID:   clientID,
		baseURL:    "https://github.com/login",
		scope:      "repo read:user",
		httpClient: http.DefaultClient,
		wait:       sleepWait,
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

func sleepWait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (x *Client) postForm(ctx context.Context, endpoint string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build device flow request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return x.httpClient.Do(req)
}

// RequestDeviceCode starts the flow: POST /device/code.
func (x *Client) RequestDeviceCode(ctx context.Context) (*model.DeviceAuthorization, error) {
	form := url.Values{}
	form.Set("client_id", string(x.clientID))
	form.Set("scope", x.scope)

	resp, err := x.postForm(ctx, "/device/code", form)
	if err != nil {
		return nil, goerr.Wrap(err, "device code request failed")
	}
	defer safe.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, goerr.New("failed to start device flow",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(raw)),
		)
	}

	var auth model.DeviceAuthorization
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return nil, goerr.Wrap(err, "failed to decode device code response")
	}
	return &auth, nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// PollForToken polls POST /oauth/access_token until a token is granted
// or a terminal error occurs. Polls run strictly one at a time; the
// loop has no iteration cap and terminates via ctx cancellation, first
// success, or first terminal error code.
func (x *Client) PollForToken(ctx context.Context, deviceCode string, intervalSec int) (types.AccessToken, error) {
	form := url.Values{}
	form.Set("client_id", string(x.clientID))
	form.Set("device_code", deviceCode)
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:device_code")

	interval := intervalSec
	if interval < minPollInterval {
		interval = minPollInterval
	}

	for {
		if err := x.wait(ctx, time.Duration(interval)*time.Second); err != nil {
			return "", goerr.Wrap(err, "device flow cancelled")
		}

		token, retry, err := x.pollOnce(ctx, form, &interval)
		if err != nil {
			return "", err
		}
		if retry {
			continue
		}
		return token, nil
	}
}

func (x *Client) pollOnce(ctx context.Context, form url.Values, interval *int) (types.AccessToken, bool, error) {
	resp, err := x.postForm(ctx, "/oauth/access_token", form)
	if err != nil {
		return "", false, goerr.Wrap(err, "token poll request failed")
	}
	defer safe.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", false, goerr.New("failed to obtain access token",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(raw)),
		)
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", false, goerr.Wrap(err, "failed to decode token response")
	}

	if parsed.AccessToken != "" {
		return types.AccessToken(parsed.AccessToken), false, nil
	}

	switch parsed.Error {
	case "authorization_pending":
		return "", true, nil
	case "slow_down":
		*interval += slowDownStep
		logging.From(ctx).Debug("device flow slow_down, backing off",
			"interval_sec", *interval)
		return "", true, nil
	case "access_denied":
		return "", false, goerr.Wrap(types.ErrAccessDenied, "device flow denied")
	case "expired_token":
		return "", false, goerr.Wrap(types.ErrDeviceCodeExpired, "device flow expired")
	default:
		if parsed.ErrorDescription != "" {
			return "", false, goerr.New(parsed.ErrorDescription, goerr.V("code", parsed.Error))
		}
		return "", false, goerr.New("OAuth error", goerr.V("code", parsed.Error))
	}
}
