package githubcontents

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/gitforge-dev/gitforge/pkg/domain/interfaces"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

// Store is a ContentRepository backed by the GitHub Contents API. The
// API is a versioned KV store keyed by path: every read returns the
// blob SHA, every overwrite must present the SHA it read.
type Store struct {
	owner      string
	repo       string
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.ContentRepository = (*Store)(nil)

type Option func(*Store)

// WithBaseURL redirects API calls, used by tests against httptest.
func WithBaseURL(u string) Option {
	return func(x *Store) {
		x.baseURL = u
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(x *Store) {
		x.httpClient = hc
	}
}

func New(owner, repo string, options ...Option) (*Store, error) {
	if owner == "" || repo == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "content store requires owner and repo",
			goerr.V("owner", owner), goerr.V("repo", repo))
	}

	store := &Store{
		owner:      owner,
		repo:       repo,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

func (x *Store) rest(ctx context.Context, token types.AccessToken) (*github.Client, error) {
	hc := x.httpClient
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: string(token)})
		hc = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, x.httpClient), ts)
	}

	gh := github.NewClient(hc)
	if x.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(x.baseURL, "/") + "/")
		if err != nil {
			return nil, goerr.Wrap(err, "invalid API base URL", goerr.V("url", x.baseURL))
		}
		gh.BaseURL = u
	}
	return gh, nil
}

func statusOf(err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}

// Get reads a file. A missing file is not an error: it returns nil
// content and an empty SHA, modeling "no content yet".
func (x *Store) Get(ctx context.Context, token types.AccessToken, path string) ([]byte, types.FileSHA, error) {
	gh, err := x.rest(ctx, token)
	if err != nil {
		return nil, "", err
	}

	file, _, _, err := gh.Repositories.GetContents(ctx, x.owner, x.repo, path, nil)
	if err != nil {
		switch statusOf(err) {
		case http.StatusNotFound:
			return nil, "", nil
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, "", goerr.Wrap(types.ErrUnauthorized, "failed to load "+path)
		}
		return nil, "", goerr.Wrap(err, "failed to load "+path, goerr.V("status", statusOf(err)))
	}
	if file == nil {
		return nil, "", goerr.New("path is a directory, not a file", goerr.V("path", path))
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to decode "+path)
	}

	return []byte(content), types.FileSHA(file.GetSHA()), nil
}

// Put writes a file. The SHA is included only when non-empty; the first
// write of a brand-new file carries none. On a version conflict the
// write refreshes the SHA and retries the identical payload exactly
// once; a second conflict is terminal. Unbounded retries are disallowed
// to avoid livelock, so this is a bounded loop, not recursion.
func (x *Store) Put(ctx context.Context, token types.AccessToken, path string, content []byte, sha types.FileSHA, message string) (types.FileSHA, error) {
	const maxAttempts = 2

	for attempt := 1; ; attempt++ {
		newSHA, err := x.putOnce(ctx, token, path, content, sha, message)
		if err == nil {
			return newSHA, nil
		}
		if !errors.Is(err, types.ErrConflict) || attempt >= maxAttempts {
			return "", err
		}

		logging.From(ctx).Warn("content write conflict, refreshing version token",
			"path", path)

		_, latest, err := x.Get(ctx, token, path)
		if err != nil {
			return "", goerr.Wrap(err, "failed to refresh version token after conflict",
				goerr.V("path", path))
		}
		sha = latest
	}
}

func (x *Store) putOnce(ctx context.Context, token types.AccessToken, path string, content []byte, sha types.FileSHA, message string) (types.FileSHA, error) {
	gh, err := x.rest(ctx, token)
	if err != nil {
		return "", err
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
	}
	if sha != "" {
		opts.SHA = github.String(string(sha))
	}

	resp, _, err := gh.Repositories.UpdateFile(ctx, x.owner, x.repo, path, opts)
	if err != nil {
		switch statusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", goerr.Wrap(types.ErrUnauthorized, "token does not permit writing to repo",
				goerr.V("path", path))
		case http.StatusConflict:
			return "", goerr.Wrap(types.ErrConflict, "failed to update "+path)
		}
		return "", goerr.Wrap(err, "failed to update "+path, goerr.V("status", statusOf(err)))
	}

	if resp.Content != nil && resp.Content.SHA != nil {
		return types.FileSHA(resp.Content.GetSHA()), nil
	}
	return sha, nil
}
