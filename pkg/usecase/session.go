package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/infra"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

const (
	configPath          = "gitforge.config.json"
	configCommitMessage = "Update gitfolio config via admin panel"
)

// SessionController owns the admin session state machine. All state
// transitions happen under the mutex; long-running calls (device flow
// polling, GitHub requests) run unlocked so Snapshot stays responsive.
type SessionController struct {
	clients *infra.Clients
	owner   string
	repo    string

	mu        sync.Mutex
	session   model.AuthSession
	lastError string
	notice    string
	config    *model.GitforgeConfig
	configSHA types.FileSHA
}

// NewSessionController starts in checkingAuth; Bootstrap resolves the
// real initial state from the (possibly empty) pre-configured token.
func NewSessionController(clients *infra.Clients, owner, repo string, token types.AccessToken) *SessionController {
	return &SessionController{
		clients: clients,
		owner:   owner,
		repo:    repo,
		session: model.AuthSession{
			Token:        token,
			State:        types.StateCheckingAuth,
			RepoFullName: owner + "/" + repo,
		},
	}
}

// Snapshot returns the externally visible session state.
func (x *SessionController) Snapshot() *model.SessionSnapshot {
	x.mu.Lock()
	defer x.mu.Unlock()

	return &model.SessionSnapshot{
		State:        x.session.State,
		RepoFullName: x.session.RepoFullName,
		Error:        x.lastError,
		Notice:       x.notice,
	}
}

// Bootstrap resolves the initial state: no token means unauthenticated,
// otherwise the token is verified against the target repository.
func (x *SessionController) Bootstrap(ctx context.Context) {
	x.mu.Lock()
	token := x.session.Token
	x.mu.Unlock()

	if token == "" {
		x.setState(types.StateUnauthenticated)
		return
	}
	x.verifyAndLoad(ctx, token)
}

// StartLogin begins the device flow and returns the verification details
// the operator needs. The caller is expected to run CompleteLogin on a
// detached context to finish the handshake.
func (x *SessionController) StartLogin(ctx context.Context) (*model.DeviceAuthorization, error) {
	x.mu.Lock()
	x.lastError = ""
	x.notice = ""
	x.session.State = types.StateAuthenticating
	x.mu.Unlock()

	auth, err := x.clients.Device().RequestDeviceCode(ctx)
	if err != nil {
		x.fail(types.StateUnauthenticated, "GitHub login failed.")
		return nil, goerr.Wrap(err, "failed to request device code")
	}

	logging.From(ctx).Info("Device flow started",
		slog.String("user_code", auth.UserCode),
		slog.String("verification_uri", auth.VerificationURL()),
	)
	return auth, nil
}

// CompleteLogin polls for the access token and, once granted, walks the
// permission and config-loading states. Terminal poll errors drop the
// session back to unauthenticated.
func (x *SessionController) CompleteLogin(ctx context.Context, deviceCode string, intervalSec int) {
	token, err := x.clients.Device().PollForToken(ctx, deviceCode, intervalSec)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrAccessDenied):
			x.fail(types.StateUnauthenticated, "GitHub login was denied.")
		case errors.Is(err, types.ErrDeviceCodeExpired):
			x.fail(types.StateUnauthenticated, "The device code expired. Start the login again.")
		default:
			x.fail(types.StateUnauthenticated, "GitHub login failed.")
		}
		logging.From(ctx).Warn("Device flow did not complete", slog.String("error", err.Error()))
		return
	}

	x.mu.Lock()
	x.session.Token = token
	x.mu.Unlock()

	x.verifyAndLoad(ctx, token)
}

// Logout clears the session from any state.
func (x *SessionController) Logout() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.session = model.AuthSession{
		State:        types.StateUnauthenticated,
		RepoFullName: x.owner + "/" + x.repo,
	}
	x.config = nil
	x.configSHA = ""
	x.lastError = ""
	x.notice = ""
}

// Config returns the loaded configuration and its version token.
func (x *SessionController) Config() (*model.GitforgeConfig, types.FileSHA) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.config, x.configSHA
}

// SaveConfig cleans and writes the configuration back through the
// Contents API. Failure keeps the session ready with the error surfaced
// in the snapshot.
func (x *SessionController) SaveConfig(ctx context.Context, cfg *model.GitforgeConfig) error {
	x.mu.Lock()
	if x.session.State != types.StateReady {
		x.mu.Unlock()
		return goerr.Wrap(types.ErrUnauthorized, "session is not ready to save",
			goerr.V("state", x.session.State))
	}
	token := x.session.Token
	sha := x.configSHA
	x.lastError = ""
	x.notice = ""
	x.session.State = types.StateSaving
	x.mu.Unlock()

	cleaned := cfg.CleanForSave()
	data, err := prettyJSON(cleaned)
	if err != nil {
		x.fail(types.StateReady, "Failed to save configuration.")
		return goerr.Wrap(err, "failed to serialize config")
	}

	newSHA, err := x.clients.Contents().Put(ctx, token, configPath, data, sha, configCommitMessage)
	if err != nil {
		x.fail(types.StateReady, "Failed to save configuration.")
		return goerr.Wrap(err, "failed to save config")
	}

	x.mu.Lock()
	x.config = cleaned
	x.configSHA = newSHA
	x.notice = "Config saved. GitHub Actions will rebuild the site shortly."
	x.session.State = types.StateReady
	x.mu.Unlock()
	return nil
}

// verifyAndLoad runs checkingPermissions and loadingConfig. Any failure
// clears the token and returns to unauthenticated, except a valid token
// without admin rights, which lands in unauthorized.
func (x *SessionController) verifyAndLoad(ctx context.Context, token types.AccessToken) {
	logger := logging.From(ctx)
	x.setState(types.StateCheckingPermissions)

	access, err := x.clients.GitHub().GetRepoAccess(ctx, x.owner, x.repo, token)
	if err != nil {
		logger.Warn("Permission check failed", slog.String("error", err.Error()))
		x.clearToken("Failed to verify permissions.")
		return
	}

	x.mu.Lock()
	x.session.RepoFullName = access.FullName
	x.session.AdminAccess = access.Admin
	x.mu.Unlock()

	if !access.Admin {
		x.setState(types.StateUnauthorized)
		return
	}

	x.setState(types.StateLoadingConfig)

	raw, sha, err := x.clients.Contents().Get(ctx, token, configPath)
	if err != nil {
		logger.Warn("Config load failed", slog.String("error", err.Error()))
		x.clearToken("Failed to load configuration.")
		return
	}

	cfg := model.DefaultConfig(x.owner)
	if raw != nil {
		cfg = &model.GitforgeConfig{}
		if err := json.Unmarshal(raw, cfg); err != nil {
			logger.Warn("Config file is not valid JSON", slog.String("error", err.Error()))
			x.clearToken("Config JSON is invalid. Please fix gitforge.config.json in GitHub.")
			return
		}
	}

	x.mu.Lock()
	x.config = cfg
	x.configSHA = sha
	x.session.State = types.StateReady
	x.mu.Unlock()
}

func (x *SessionController) setState(state types.SessionState) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.session.State = state
}

func (x *SessionController) fail(state types.SessionState, message string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.session.State = state
	x.lastError = message
}

func (x *SessionController) clearToken(message string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.session.Token = ""
	x.session.AdminAccess = false
	x.session.State = types.StateUnauthenticated
	x.lastError = message
}

// authedToken returns the session token for content operations.
func (x *SessionController) authedToken() (types.AccessToken, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.session.Authenticated() {
		return "", goerr.Wrap(types.ErrUnauthorized, "not signed in")
	}
	return x.session.Token, nil
}
