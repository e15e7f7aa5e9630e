package interfaces

import (
	"context"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// GitHub covers the REST and GraphQL reads the aggregator and the admin
// session need. An empty token means anonymous, rate-limited access;
// that is a supported mode, not an error.
type GitHub interface {
	GetProfile(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error)
	ListRepos(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error)
	GetRepo(ctx context.Context, fullName string, token types.AccessToken) (*model.Repository, error)
	GetRepoAccess(ctx context.Context, owner, repo string, token types.AccessToken) (*model.RepoAccess, error)

	// YearContributions runs the contribution-calendar GraphQL query for
	// a single calendar year. The upstream query cannot span years.
	YearContributions(ctx context.Context, login string, year int, token types.AccessToken) (int, error)

	// SocialAccounts returns the token owner's social links.
	SocialAccounts(ctx context.Context, token types.AccessToken) ([]model.SocialAccount, error)
}

// DeviceAuthorizer implements the OAuth Device Flow handshake.
type DeviceAuthorizer interface {
	RequestDeviceCode(ctx context.Context) (*model.DeviceAuthorization, error)

	// PollForToken polls the token endpoint until a token is granted or a
	// terminal error occurs. Cancellation happens through ctx.
	PollForToken(ctx context.Context, deviceCode string, intervalSec int) (types.AccessToken, error)
}
