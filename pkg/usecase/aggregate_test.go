package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/infra"
	"github.com/gitforge-dev/gitforge/pkg/usecase"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

func testProfile() *model.Profile {
	return &model.Profile{
		Login:       "octocat",
		Name:        ptr("The Octocat"),
		AvatarURL:   ptr("https://avatars.example.com/octocat"),
		HTMLURL:     "https://github.com/octocat",
		Location:    ptr("Tokyo"),
		Blog:        ptr("example.com"),
		PublicRepos: 3,
		Followers:   10,
		Following:   5,
		UpdatedAt:   ptr("2025-03-01T00:00:00Z"),
		Type:        "User",
	}
}

func testOwnRepos() []*model.Repository {
	return []*model.Repository{
		{
			ID: 1, Name: "alpha", FullName: "octocat/alpha",
			HTMLURL:         "https://github.com/octocat/alpha",
			StargazersCount: 5, Language: ptr("Go"),
			Topics:   []string{"cli"},
			PushedAt: ptr("2025-01-02T00:00:00Z"), UpdatedAt: ptr("2025-01-02T00:00:00Z"),
		},
		{
			ID: 2, Name: "beta", FullName: "octocat/beta",
			HTMLURL:         "https://github.com/octocat/beta",
			StargazersCount: 10, Language: ptr("Go"),
			Topics:   []string{"web"},
			PushedAt: ptr("2025-02-02T00:00:00Z"), UpdatedAt: ptr("2025-02-02T00:00:00Z"),
		},
		{
			ID: 3, Name: "secret", FullName: "octocat/secret",
			HTMLURL:         "https://github.com/octocat/secret",
			StargazersCount: 0, Language: ptr("Rust"),
			Private:  true,
			PushedAt: ptr("2024-06-01T00:00:00Z"), UpdatedAt: ptr("2024-06-01T00:00:00Z"),
		},
	}
}

func externalRepo() *model.Repository {
	return &model.Repository{
		ID: 99, Name: "tool", FullName: "other/tool",
		HTMLURL:         "https://github.com/other/tool",
		StargazersCount: 50, Language: ptr("Rust"),
		Topics:   []string{"cli", "infra"},
		PushedAt: ptr("2023-05-01T00:00:00Z"), UpdatedAt: ptr("2023-05-01T00:00:00Z"),
	}
}

func fixedTimeCtx(year int) context.Context {
	return logging.CtxWithTime(context.Background(), func() time.Time {
		return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC)
	})
}

func TestBuildSiteData(t *testing.T) {
	gh := &githubMock{
		getProfile: func(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error) {
			return testProfile(), nil
		},
		listRepos: func(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error) {
			return testOwnRepos(), nil
		},
		getRepo: func(ctx context.Context, fullName string, token types.AccessToken) (*model.Repository, error) {
			gt.V(t, fullName).Equal("other/tool")
			return externalRepo(), nil
		},
		yearContributions: func(ctx context.Context, login string, year int, token types.AccessToken) (int, error) {
			switch year {
			case 2024:
				return 100, nil
			case 2023:
				return 0, goerr.New("rate limited")
			default:
				return 0, nil
			}
		},
		socialAccounts: func(ctx context.Context, token types.AccessToken) ([]model.SocialAccount, error) {
			return []model.SocialAccount{{Provider: "linkedin", URL: "https://linkedin.com/in/octocat"}}, nil
		},
	}

	uc := usecase.New(infra.New(infra.WithGitHub(gh)))
	cfg := (&model.GitforgeConfig{
		GitHubOwner:   "octocat",
		ProfileType:   "user",
		GitHubToken:   "test-token",
		FeaturedRepos: []string{"other/tool", "alpha"},
	}).Resolve()

	ctx := fixedTimeCtx(2025)
	data := gt.R1(uc.BuildSiteData(ctx, cfg)).NoError(t)

	t.Run("data module inputs carry own repos only", func(t *testing.T) {
		gt.V(t, data.Owner).Equal("octocat")
		gt.V(t, data.ProfileType).Equal("user")
		gt.A(t, data.Repos).Length(3)
		gt.V(t, data.ClientConfig.FeaturedRepos).Equal([]string{"other/tool", "alpha"})
		gt.V(t, data.ClientConfig.ListedRepo.Count).Equal(4)
		gt.V(t, data.ClientConfig.ListedRepo.Sort).Equal("date")
	})

	t.Run("featured repos come first, private repos never shown", func(t *testing.T) {
		repos := data.Content.Projects.Repos
		gt.A(t, repos).Length(3)
		gt.V(t, repos[0].Name).Equal("tool")
		gt.True(t, repos[0].Featured)
		gt.V(t, repos[1].Name).Equal("alpha")
		gt.True(t, repos[1].Featured)
		gt.V(t, repos[2].Name).Equal("beta")
		gt.False(t, repos[2].Featured)
		for _, repo := range repos {
			gt.V(t, repo.Name).NotEqual("secret")
		}
	})

	t.Run("stats use all repos including private and external", func(t *testing.T) {
		stats := data.Content.Stats
		gt.True(t, stats != nil)
		gt.V(t, stats.Metrics.TotalRepos).Equal(4)
		gt.V(t, stats.Metrics.PublicRepos).Equal(3)
		gt.V(t, stats.Metrics.TotalStars).Equal(65)
		gt.V(t, stats.Metrics.LanguagesUsed).Equal(2)
	})

	t.Run("language percentages sum over repos with a language", func(t *testing.T) {
		dist := data.Content.Stats.LanguageDistribution
		gt.A(t, dist).Length(2)
		gt.V(t, dist[0].Language).Equal("Go")
		gt.V(t, dist[0].Percentage).Equal(50)
		gt.V(t, dist[1].Language).Equal("Rust")
		gt.V(t, dist[1].Percentage).Equal(50)
	})

	t.Run("top repos by stars come from the display set", func(t *testing.T) {
		top := data.Content.Stats.TopReposByStars
		gt.A(t, top).Length(3)
		gt.V(t, top[0].Name).Equal("tool")
		gt.V(t, top[0].Stars).Equal(50)
		gt.V(t, top[1].Name).Equal("beta")
		gt.V(t, top[2].Name).Equal("alpha")
	})

	t.Run("failed calendar years are skipped", func(t *testing.T) {
		commits := data.Content.Stats.CommitActivityByYear
		gt.A(t, commits).Length(1)
		gt.V(t, commits[0]).Equal(model.YearCommits{Year: 2024, Commits: 100})
	})

	t.Run("hero is synthesized when the profile has no bio", func(t *testing.T) {
		hero := data.Content.Hero
		gt.V(t, hero.Title).Equal("The Octocat")
		gt.True(t, strings.Contains(hero.Description, "The Octocat maintains 3 public repositories"))
		gt.True(t, strings.Contains(hero.Description, "65 stars"))
		gt.True(t, strings.Contains(hero.Description, "Go"))
	})

	t.Run("website URL gets a scheme, social links pass through", func(t *testing.T) {
		contact := data.Content.Hero.Contact
		gt.True(t, contact.Website != nil)
		gt.V(t, *contact.Website).Equal("https://example.com")
		gt.A(t, contact.Social).Length(1)
		gt.V(t, contact.Social[0].Provider).Equal("linkedin")
	})

	t.Run("snapshot leads with location", func(t *testing.T) {
		snapshot := data.Content.Snapshot
		gt.V(t, snapshot.Title).Equal("Top skills")
		gt.V(t, snapshot.Items[0]).Equal("Based in Tokyo")
		gt.V(t, snapshot.Items[1]).Equal("3 public repositories")
		gt.True(t, snapshot.Subtitle != nil)
	})
}

func TestBuildSiteDataAnonymous(t *testing.T) {
	var contributionCalls int
	gh := &githubMock{
		getProfile: func(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error) {
			return testProfile(), nil
		},
		listRepos: func(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error) {
			return testOwnRepos(), nil
		},
		yearContributions: func(ctx context.Context, login string, year int, token types.AccessToken) (int, error) {
			contributionCalls++
			return 0, nil
		},
	}

	uc := usecase.New(infra.New(infra.WithGitHub(gh)))
	cfg := (&model.GitforgeConfig{GitHubOwner: "octocat", ProfileType: "user"}).Resolve()

	data := gt.R1(uc.BuildSiteData(fixedTimeCtx(2025), cfg)).NoError(t)

	gt.V(t, contributionCalls).Equal(0)
	gt.A(t, data.Content.Stats.CommitActivityByYear).Length(0)
	gt.A(t, data.Content.Hero.Contact.Social).Length(0)
}

func TestBuildSiteDataStatsDisabled(t *testing.T) {
	gh := &githubMock{
		getProfile: func(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error) {
			return testProfile(), nil
		},
		listRepos: func(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error) {
			return testOwnRepos(), nil
		},
	}

	uc := usecase.New(infra.New(infra.WithGitHub(gh)))
	cfg := (&model.GitforgeConfig{
		GitHubOwner: "octocat",
		ProfileType: "user",
		ShowStats:   ptr(false),
	}).Resolve()

	data := gt.R1(uc.BuildSiteData(fixedTimeCtx(2025), cfg)).NoError(t)
	gt.True(t, data.Content.Stats == nil)
}

func TestBuildSiteDataFeaturedFetchFailure(t *testing.T) {
	gh := &githubMock{
		getProfile: func(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error) {
			return testProfile(), nil
		},
		listRepos: func(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error) {
			return testOwnRepos(), nil
		},
		getRepo: func(ctx context.Context, fullName string, token types.AccessToken) (*model.Repository, error) {
			return nil, goerr.New("not found")
		},
	}

	uc := usecase.New(infra.New(infra.WithGitHub(gh)))
	cfg := (&model.GitforgeConfig{
		GitHubOwner:   "octocat",
		ProfileType:   "user",
		FeaturedRepos: []string{"other/tool", "beta"},
	}).Resolve()

	data := gt.R1(uc.BuildSiteData(fixedTimeCtx(2025), cfg)).NoError(t)

	// The unreachable external repo is dropped; beta still resolves.
	repos := data.Content.Projects.Repos
	gt.V(t, repos[0].Name).Equal("beta")
	gt.True(t, repos[0].Featured)
	gt.V(t, data.Content.Stats.Metrics.TotalRepos).Equal(3)
}

func TestBuildSiteDataProfileFailure(t *testing.T) {
	gh := &githubMock{
		getProfile: func(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error) {
			return nil, goerr.New("boom")
		},
		listRepos: func(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error) {
			return testOwnRepos(), nil
		},
	}

	uc := usecase.New(infra.New(infra.WithGitHub(gh)))
	cfg := (&model.GitforgeConfig{GitHubOwner: "octocat", ProfileType: "user"}).Resolve()

	_, err := uc.BuildSiteData(fixedTimeCtx(2025), cfg)
	gt.Error(t, err)
}

func TestBuildSiteDataListedSortStar(t *testing.T) {
	gh := &githubMock{
		getProfile: func(ctx context.Context, owner string, profileType types.ProfileType, token types.AccessToken) (*model.Profile, error) {
			return testProfile(), nil
		},
		listRepos: func(ctx context.Context, owner string, profileType types.ProfileType, perPage int, token types.AccessToken) ([]*model.Repository, error) {
			return testOwnRepos(), nil
		},
	}

	uc := usecase.New(infra.New(infra.WithGitHub(gh)))
	cfg := (&model.GitforgeConfig{
		GitHubOwner: "octocat",
		ProfileType: "user",
		ListedRepo:  &model.ListedRepoConfig{Count: 1, Sort: "stars"},
	}).Resolve()

	data := gt.R1(uc.BuildSiteData(fixedTimeCtx(2025), cfg)).NoError(t)

	repos := data.Content.Projects.Repos
	gt.A(t, repos).Length(1)
	gt.V(t, repos[0].Name).Equal("beta")
}
