package githubapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/gitforge-dev/gitforge/pkg/domain/interfaces"
	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// Client implements interfaces.GitHub over the GitHub REST and GraphQL
// APIs. A fresh go-github client is built per call so each request can
// carry its own token (or none).
type Client struct {
	baseURL    string
	graphqlURL string
	httpClient *http.Client
}

var _ interfaces.GitHub = (*Client)(nil)

type Option func(*Client)

// WithBaseURL redirects REST calls, used by tests against httptest.
func WithBaseURL(u string) Option {
	return func(x *Client) {
		x.baseURL = u
	}
}

// WithGraphQLURL redirects the GraphQL endpoint, used by tests.
func WithGraphQLURL(u string) Option {
	return func(x *Client) {
		x.graphqlURL = u
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(x *Client) {
		x.httpClient = hc
	}
}

func New(options ...Option) *Client {
	client := &Client{
		graphqlURL: "https://api.github.com/graphql",
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

func (x *Client) rest(ctx context.Context, token types.AccessToken) (*github.Client, error) {
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

// wrapAPIError attaches the caller-supplied label and, when available,
// the HTTP status so callers can produce actionable messages.
func wrapAPIError(err error, label string) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		status := ghErr.Response.StatusCode
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return goerr.Wrap(types.ErrUnauthorized, label+" request failed",
				goerr.V("status", status))
		}
		return goerr.Wrap(err, label+" request failed", goerr.V("status", status))
	}
	return goerr.Wrap(err, label+" request failed")
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

func (x *Client) GetProfile(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error) {
	gh, err := x.rest(ctx, token)
	if err != nil {
		return nil, err
	}

	if profileType == types.ProfileTypeOrg {
		org, _, err := gh.Organizations.Get(ctx, owner)
		if err != nil {
			return nil, wrapAPIError(err, "Profile")
		}
		return orgProfile(org, owner), nil
	}

	user, _, err := gh.Users.Get(ctx, owner)
	if err != nil {
		return nil, wrapAPIError(err, "Profile")
	}
	return userProfile(user, owner), nil
}

func (x *Client) ListRepos(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error) {
	gh, err := x.rest(ctx, token)
	if err != nil {
		return nil, err
	}

	// Only the first page is fetched. Accounts with more repositories
	// than perPage are aggregated incompletely; callers log this as a
	// known limitation.
	var raw []*github.Repository
	if profileType == types.ProfileTypeOrg {
		opts := &github.RepositoryListByOrgOptions{
			Sort:        "updated",
			ListOptions: github.ListOptions{PerPage: perPage},
		}
		if token != "" {
			opts.Type = "all"
		}
		raw, _, err = gh.Repositories.ListByOrg(ctx, owner, opts)
	} else {
		opts := &github.RepositoryListOptions{
			Sort:        "updated",
			ListOptions: github.ListOptions{PerPage: perPage},
		}
		if token != "" {
			opts.Type = "all"
		}
		raw, _, err = gh.Repositories.List(ctx, owner, opts)
	}
	if err != nil {
		return nil, wrapAPIError(err, "Repos")
	}

	repos := make([]*model.Repository, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, toRepository(r))
	}
	return repos, nil
}

func (x *Client) GetRepo(ctx context.Context, fullName string, token types.AccessToken) (*model.Repository, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok {
		return nil, goerr.Wrap(types.ErrInvalidOption, "repository reference must be owner/name",
			goerr.V("ref", fullName))
	}

	gh, err := x.rest(ctx, token)
	if err != nil {
		return nil, err
	}

	repo, _, err := gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, wrapAPIError(err, "Featured repo "+fullName)
	}
	return toRepository(repo), nil
}

func (x *Client) GetRepoAccess(ctx context.Context, owner, repo string, token types.AccessToken) (*model.RepoAccess, error) {
	gh, err := x.rest(ctx, token)
	if err != nil {
		return nil, err
	}

	r, _, err := gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, wrapAPIError(err, "Repo info")
	}

	return &model.RepoAccess{
		FullName: r.GetFullName(),
		Private:  r.GetPrivate(),
		Admin:    r.GetPermissions()["admin"],
	}, nil
}

func (x *Client) SocialAccounts(ctx context.Context, token types.AccessToken) ([]model.SocialAccount, error) {
	gh, err := x.rest(ctx, token)
	if err != nil {
		return nil, err
	}

	req, err := gh.NewRequest(http.MethodGet, "user/social_accounts", nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build social accounts request")
	}

	var raw []model.SocialAccount
	if _, err := gh.Do(ctx, req, &raw); err != nil {
		return nil, wrapAPIError(err, "Social accounts")
	}

	accounts := make([]model.SocialAccount, 0, len(raw))
	for _, acc := range raw {
		if acc.Provider == "" || acc.URL == "" {
			continue
		}
		acc.Provider = strings.ToLower(acc.Provider)
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func userProfile(u *github.User, owner string) *model.Profile {
	profile := &model.Profile{
		Login:           u.GetLogin(),
		Name:            u.Name,
		AvatarURL:       u.AvatarURL,
		HTMLURL:         u.GetHTMLURL(),
		Description:     u.Bio,
		Email:           u.Email,
		Location:        u.Location,
		Company:         u.Company,
		Blog:            u.Blog,
		TwitterUsername: u.TwitterUsername,
		PublicRepos:     u.GetPublicRepos(),
		Followers:       u.GetFollowers(),
		Following:       u.GetFollowing(),
		Type:            u.GetType(),
	}
	fillProfileFallbacks(profile, owner, "User", u.UpdatedAt)
	return profile
}

func orgProfile(o *github.Organization, owner string) *model.Profile {
	profile := &model.Profile{
		Login:           o.GetLogin(),
		Name:            o.Name,
		AvatarURL:       o.AvatarURL,
		HTMLURL:         o.GetHTMLURL(),
		Description:     o.Description,
		Email:           o.Email,
		Location:        o.Location,
		Company:         o.Company,
		Blog:            o.Blog,
		TwitterUsername: o.TwitterUsername,
		PublicRepos:     o.GetPublicRepos(),
		Followers:       o.GetFollowers(),
		Following:       o.GetFollowing(),
		Type:            o.GetType(),
	}
	fillProfileFallbacks(profile, owner, "Organization", o.UpdatedAt)
	return profile
}

func fillProfileFallbacks(profile *model.Profile, owner, defaultType string, updatedAt *github.Timestamp) {
	if profile.Login == "" {
		profile.Login = owner
	}
	if profile.HTMLURL == "" {
		profile.HTMLURL = model.FallbackHTMLURL(owner)
	}
	if profile.Type == "" {
		profile.Type = defaultType
	}
	if updatedAt != nil {
		stamp := updatedAt.UTC().Format(time.RFC3339)
		profile.UpdatedAt = &stamp
	}
}

func toRepository(r *github.Repository) *model.Repository {
	repo := &model.Repository{
		ID:              types.RepoID(r.GetID()),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		HTMLURL:         r.GetHTMLURL(),
		Description:     r.Description,
		StargazersCount: r.GetStargazersCount(),
		Language:        r.Language,
		OpenIssuesCount: r.GetOpenIssuesCount(),
		Topics:          r.Topics,
		Archived:        r.GetArchived(),
		Disabled:        r.GetDisabled(),
		Fork:            r.GetFork(),
		Private:         r.GetPrivate(),
	}
	if repo.Topics == nil {
		repo.Topics = []string{}
	}
	if r.PushedAt != nil {
		stamp := r.PushedAt.UTC().Format(time.RFC3339)
		repo.PushedAt = &stamp
	}
	if r.UpdatedAt != nil {
		stamp := r.UpdatedAt.UTC().Format(time.RFC3339)
		repo.UpdatedAt = &stamp
	}
	return repo
}
