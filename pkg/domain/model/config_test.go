package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

func boolPtr(v bool) *bool { return &v }

func TestResolve(t *testing.T) {
	t.Run("nil config enables everything", func(t *testing.T) {
		var raw *model.GitforgeConfig
		cfg := raw.Resolve()
		gt.V(t, cfg.ListedCount).Equal(4)
		gt.V(t, cfg.ListedSort).Equal(types.SortByDate)
		gt.V(t, cfg.HeroEyebrow).Equal(model.DefaultHeroEyebrow)
		gt.True(t, cfg.ShowStats)
		gt.True(t, cfg.ShowLanguageChart)
		gt.True(t, cfg.ShowEmail)
	})

	t.Run("featured repos are trimmed and de-blanked", func(t *testing.T) {
		raw := &model.GitforgeConfig{
			GitHubOwner:   " octocat ",
			FeaturedRepos: []string{" alpha ", "", "other/tool"},
		}
		cfg := raw.Resolve()
		gt.V(t, cfg.Owner).Equal("octocat")
		gt.V(t, cfg.FeaturedRepos).Equal([]string{"alpha", "other/tool"})
	})

	t.Run("legacy maxFeaturedRepos backs listed count", func(t *testing.T) {
		raw := &model.GitforgeConfig{MaxFeaturedRepos: 7}
		gt.V(t, raw.Resolve().ListedCount).Equal(7)

		raw = &model.GitforgeConfig{
			MaxFeaturedRepos: 7,
			ListedRepo:       &model.ListedRepoConfig{Count: 2},
		}
		gt.V(t, raw.Resolve().ListedCount).Equal(2)
	})

	t.Run("sort aliases", func(t *testing.T) {
		for input, want := range map[string]types.SortPolicy{
			"stars":     types.SortByStar,
			"date_star": types.SortByDateThenStar,
			"star_date": types.SortByStarThenDate,
			"bogus":     types.SortByDate,
		} {
			raw := &model.GitforgeConfig{ListedRepo: &model.ListedRepoConfig{Sort: input}}
			gt.V(t, raw.Resolve().ListedSort).Equal(want)
		}
	})

	t.Run("toggles only opt out", func(t *testing.T) {
		raw := &model.GitforgeConfig{
			ShowStats: boolPtr(false),
			Stats:     &model.StatsToggles{ShowLanguageChart: boolPtr(false)},
			Contact:   &model.ContactToggles{ShowEmail: boolPtr(false)},
		}
		cfg := raw.Resolve()
		gt.False(t, cfg.ShowStats)
		gt.False(t, cfg.ShowLanguageChart)
		gt.True(t, cfg.ShowRepoActivityChart)
		gt.False(t, cfg.ShowEmail)
		gt.True(t, cfg.ShowCompany)
	})

	t.Run("profile type normalization", func(t *testing.T) {
		raw := &model.GitforgeConfig{ProfileType: " User "}
		gt.V(t, raw.Resolve().ProfileType).Equal(types.ProfileTypeUser)

		raw = &model.GitforgeConfig{ProfileType: "organization"}
		gt.V(t, raw.Resolve().ProfileType).Equal(types.ProfileTypeOrg)
	})
}

func TestCleanForSave(t *testing.T) {
	raw := &model.GitforgeConfig{
		GitHubOwner:   "octocat",
		FeaturedRepos: []string{" alpha ", "  ", "beta"},
		CustomLinks: []model.CustomLink{
			{Title: " Docs ", URL: " https://docs.example "},
			{Title: "No URL", URL: "  "},
			{Title: "", URL: "https://untitled.example"},
		},
	}

	cleaned := raw.CleanForSave()
	gt.V(t, cleaned.FeaturedRepos).Equal([]string{"alpha", "beta"})
	gt.A(t, cleaned.CustomLinks).Length(1)
	gt.V(t, cleaned.CustomLinks[0].Title).Equal("Docs")
	gt.V(t, cleaned.CustomLinks[0].URL).Equal("https://docs.example")

	// The input is left alone.
	gt.A(t, raw.CustomLinks).Length(3)
}
