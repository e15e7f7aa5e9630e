package usecase_test

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

type githubMock struct {
	getProfile        func(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error)
	listRepos         func(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error)
	getRepo           func(ctx context.Context, fullName string, token types.AccessToken) (*model.Repository, error)
	getRepoAccess     func(ctx context.Context, owner, repo string, token types.AccessToken) (*model.RepoAccess, error)
	yearContributions func(ctx context.Context, login string, year int, token types.AccessToken) (int, error)
	socialAccounts    func(ctx context.Context, token types.AccessToken) ([]model.SocialAccount, error)
}

func (x *githubMock) GetProfile(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error) {
	if x.getProfile == nil {
		return nil, goerr.New("getProfile is not stubbed")
	}
	return x.getProfile(ctx, owner, profileType, token)
}

func (x *githubMock) ListRepos(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error) {
	if x.listRepos == nil {
		return nil, goerr.New("listRepos is not stubbed")
	}
	return x.listRepos(ctx, owner, profileType, perPage, token)
}

func (x *githubMock) GetRepo(ctx context.Context, fullName string, token types.AccessToken) (*model.Repository, error) {
	if x.getRepo == nil {
		return nil, goerr.New("getRepo is not stubbed")
	}
	return x.getRepo(ctx, fullName, token)
}

func (x *githubMock) GetRepoAccess(ctx context.Context, owner, repo string, token types.AccessToken) (*model.RepoAccess, error) {
	if x.getRepoAccess == nil {
		return nil, goerr.New("getRepoAccess is not stubbed")
	}
	return x.getRepoAccess(ctx, owner, repo, token)
}

func (x *githubMock) YearContributions(ctx context.Context, login string, year int, token types.AccessToken) (int, error) {
	if x.yearContributions == nil {
		return 0, goerr.New("yearContributions is not stubbed")
	}
	return x.yearContributions(ctx, login, year, token)
}

func (x *githubMock) SocialAccounts(ctx context.Context, token types.AccessToken) ([]model.SocialAccount, error) {
	if x.socialAccounts == nil {
		return nil, goerr.New("socialAccounts is not stubbed")
	}
	return x.socialAccounts(ctx, token)
}

type deviceMock struct {
	requestDeviceCode func(ctx context.Context) (*model.DeviceAuthorization, error)
	pollForToken      func(ctx context.Context, deviceCode string, intervalSec int) (types.AccessToken, error)
}

func (x *deviceMock) RequestDeviceCode(ctx context.Context) (*model.DeviceAuthorization, error) {
	if x.requestDeviceCode == nil {
		return nil, goerr.New("requestDeviceCode is not stubbed")
	}
	return x.requestDeviceCode(ctx)
}

func (x *deviceMock) PollForToken(ctx context.Context, deviceCode string, intervalSec int) (types.AccessToken, error) {
	if x.pollForToken == nil {
		return "", goerr.New("pollForToken is not stubbed")
	}
	return x.pollForToken(ctx, deviceCode, intervalSec)
}

func ptr[T any](v T) *T {
	return &v
}
