package deviceflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/infra/deviceflow"
)

func noWait(ctx context.Context, d time.Duration) error {
	return nil
}

func TestNew(t *testing.T) {
	t.Run("empty client ID is rejected", func(t *testing.T) {
		_, err := deviceflow.New("")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrInvalidOption))
	})
}

func TestRequestDeviceCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.V(t, r.Method).Equal(http.MethodPost)
		gt.V(t, r.URL.Path).Equal("/login/device/code")
		gt.NoError(t, r.ParseForm())
		gt.V(t, r.PostForm.Get("client_id")).Equal("Iv1.testclient")
		gt.V(t, r.PostForm.Get("scope")).Equal("repo read:user")

		w.Header().Set("Content-Type", "application/json")
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "dc-1",
			"user_code":        "ABCD-1234",
			"verification_uri": "https://github.com/login/device",
			"expires_in":       900,
			"interval":         5,
		}))
	}))
	defer srv.Close()

	client := gt.R1(deviceflow.New("Iv1.testclient", deviceflow.WithBaseURL(srv.URL+"/login"))).NoError(t)
	auth := gt.R1(client.RequestDeviceCode(context.Background())).NoError(t)

	gt.V(t, auth.DeviceCode).Equal("dc-1")
	gt.V(t, auth.UserCode).Equal("ABCD-1234")
	gt.V(t, auth.VerificationURL()).Equal("https://github.com/login/device")
	gt.V(t, auth.Interval).Equal(5)
}

func pollServer(t *testing.T, responses []map[string]any) *httptest.Server {
	t.Helper()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.V(t, r.URL.Path).Equal("/login/oauth/access_token")
		gt.NoError(t, r.ParseForm())
		gt.V(t, r.PostForm.Get("device_code")).Equal("dc-1")
		gt.V(t, r.PostForm.Get("grant_type")).Equal("urn:ietf:params:oauth:grant-type:device_code")

		body := responses[calls]
		if calls < len(responses)-1 {
			calls++
		}
		w.Header().Set("Content-Type", "application/json")
		gt.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPollForToken(t *testing.T) {
	t.Run("pending then granted", func(t *testing.T) {
		srv := pollServer(t, []map[string]any{
			{"error": "authorization_pending"},
			{"access_token": "gho_token"},
		})

		var waits []time.Duration
		client := gt.R1(deviceflow.New("Iv1.testclient",
			deviceflow.WithBaseURL(srv.URL+"/login"),
			deviceflow.WithWaitFunc(func(ctx context.Context, d time.Duration) error {
				waits = append(waits, d)
				return nil
			}),
		)).NoError(t)

		token := gt.R1(client.PollForToken(context.Background(), "dc-1", 5)).NoError(t)
		gt.V(t, token).Equal(types.AccessToken("gho_token"))
		gt.V(t, waits).Equal([]time.Duration{5 * time.Second, 5 * time.Second})
	})

	t.Run("slow_down grows the interval", func(t *testing.T) {
		srv := pollServer(t, []map[string]any{
			{"error": "slow_down"},
			{"access_token": "gho_token"},
		})

		var waits []time.Duration
		client := gt.R1(deviceflow.New("Iv1.testclient",
			deviceflow.WithBaseURL(srv.URL+"/login"),
			deviceflow.WithWaitFunc(func(ctx context.Context, d time.Duration) error {
				waits = append(waits, d)
				return nil
			}),
		)).NoError(t)

		gt.R1(client.PollForToken(context.Background(), "dc-1", 5)).NoError(t)
		gt.V(t, waits).Equal([]time.Duration{5 * time.Second, 10 * time.Second})
	})

	t.Run("interval below the floor is raised", func(t *testing.T) {
		srv := pollServer(t, []map[string]any{
			{"access_token": "gho_token"},
		})

		var waits []time.Duration
		client := gt.R1(deviceflow.New("Iv1.testclient",
			deviceflow.WithBaseURL(srv.URL+"/login"),
			deviceflow.WithWaitFunc(func(ctx context.Context, d time.Duration) error {
				waits = append(waits, d)
				return nil
			}),
		)).NoError(t)

		gt.R1(client.PollForToken(context.Background(), "dc-1", 1)).NoError(t)
		gt.V(t, waits).Equal([]time.Duration{5 * time.Second})
	})

	t.Run("access denied is terminal", func(t *testing.T) {
		srv := pollServer(t, []map[string]any{
			{"error": "access_denied"},
		})

		client := gt.R1(deviceflow.New("Iv1.testclient",
			deviceflow.WithBaseURL(srv.URL+"/login"),
			deviceflow.WithWaitFunc(noWait),
		)).NoError(t)

		_, err := client.PollForToken(context.Background(), "dc-1", 5)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrAccessDenied))
	})

	t.Run("expired device code is terminal", func(t *testing.T) {
		srv := pollServer(t, []map[string]any{
			{"error": "expired_token"},
		})

		client := gt.R1(deviceflow.New("Iv1.testclient",
			deviceflow.WithBaseURL(srv.URL+"/login"),
			deviceflow.WithWaitFunc(noWait),
		)).NoError(t)

		_, err := client.PollForToken(context.Background(), "dc-1", 5)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrDeviceCodeExpired))
	})

	t.Run("cancellation stops the loop", func(t *testing.T) {
		srv := pollServer(t, []map[string]any{
			{"error": "authorization_pending"},
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := gt.R1(deviceflow.New("Iv1.testclient",
			deviceflow.WithBaseURL(srv.URL+"/login"),
		)).NoError(t)

		_, err := client.PollForToken(ctx, "dc-1", 5)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, context.Canceled))
	})
}
