package model

import (
	"strings"

	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// HeroConfig overrides the hero copy of the generated site.
type HeroConfig struct {
	Eyebrow   string `json:"eyebrow,omitempty"`
	MinorInfo string `json:"minorInfo,omitempty"`
	Title     string `json:"title,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// CustomLink is a maintainer-supplied external link.
type CustomLink struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// ListedRepoConfig controls how many non-featured repositories are shown
// and in which order.
type ListedRepoConfig struct {
	Count int    `json:"count"`
	Sort  string `json:"sort"`
}

// StatsToggles enables or disables individual stats charts. Nil means
// enabled; the toggles only ever opt out.
type StatsToggles struct {
	ShowLanguageChart       *bool `json:"showLanguageChart,omitempty"`
	ShowRepoActivityChart   *bool `json:"showRepoActivityChart,omitempty"`
	ShowCommitActivityChart *bool `json:"showCommitActivityChart,omitempty"`
	ShowTopReposChart       *bool `json:"showTopReposChart,omitempty"`
}

// ContactToggles hides individual contact fields. Nil means shown.
type ContactToggles struct {
	ShowCompany *bool `json:"showCompany,omitempty"`
	ShowEmail   *bool `json:"showEmail,omitempty"`
	ShowWebsite *bool `json:"showWebsite,omitempty"`
	ShowTwitter *bool `json:"showTwitter,omitempty"`
}

// GitforgeConfig is the durable, maintainer-editable configuration file
// (gitforge.config.json). Nearly every field is optional in the file;
// consumers never read this form directly, they read the resolved form
// produced by Resolve.
type GitforgeConfig struct {
	GitHubOwner string `json:"githubOwner"`
	ProfileType string `json:"profileType"`
	GitHubToken string `json:"githubToken,omitempty"`

	FeaturedRepos []string          `json:"featuredRepos,omitempty"`
	ListedRepo    *ListedRepoConfig `json:"listedRepo,omitempty"`
	Hero          *HeroConfig       `json:"hero,omitempty"`
	CustomLinks   []CustomLink      `json:"customLinks,omitempty"`

	ShowVideosSection   *bool           `json:"showVideosSection,omitempty"`
	ShowBlogsSection    *bool           `json:"showBlogsSection,omitempty"`
	ShowProjectsSection *bool           `json:"showProjectsSection,omitempty"`
	ShowStats           *bool           `json:"showStats,omitempty"`
	Stats               *StatsToggles   `json:"stats,omitempty"`
	Contact             *ContactToggles `json:"contact,omitempty"`

	// Legacy knob kept for configs written before listedRepo existed.
	MaxFeaturedRepos int `json:"maxFeaturedRepos,omitempty"`
}

const DefaultHeroEyebrow = "Open-source, developer-first profile"

// DefaultConfig is what a brand-new repository gets when no config file
// exists yet (the Contents API 404 case).
func DefaultConfig(owner string) *GitforgeConfig {
	return &GitforgeConfig{
		GitHubOwner:   owner,
		ProfileType:   string(types.ProfileTypeUser),
		FeaturedRepos: []string{},
		ListedRepo:    &ListedRepoConfig{Count: 4, Sort: string(types.SortByDate)},
		Hero:          &HeroConfig{Eyebrow: DefaultHeroEyebrow},
		CustomLinks:   []CustomLink{},
	}
}

// ResolvedConfig is the fully populated configuration. Default
// resolution happens in exactly one place (Resolve); everything
// downstream reads only this form.
type ResolvedConfig struct {
	Owner         string
	ProfileType   types.ProfileType
	Token         types.AccessToken
	FeaturedRepos []string
	ListedCount   int
	ListedSort    types.SortPolicy
	HeroEyebrow   string
	HeroMinorInfo string
	CustomLinks   []CustomLink

	ShowVideosSection   bool
	ShowBlogsSection    bool
	ShowProjectsSection bool

	ShowStats               bool
	ShowLanguageChart       bool
	ShowRepoActivityChart   bool
	ShowCommitActivityChart bool
	ShowTopReposChart       bool

	ShowCompany bool
	ShowEmail   bool
	ShowWebsite bool
	ShowTwitter bool
}

func enabled(v *bool) bool {
	return v == nil || *v
}

// Resolve turns a raw (possibly nil or partial) config into a fully
// populated value. All visibility toggles default to on.
func (x *GitforgeConfig) Resolve() *ResolvedConfig {
	cfg := &ResolvedConfig{
		ListedCount: 4,
		ListedSort:  types.SortByDate,
		HeroEyebrow: DefaultHeroEyebrow,
	}

	if x == nil {
		cfg.ShowVideosSection = true
		cfg.ShowBlogsSection = true
		cfg.ShowProjectsSection = true
		cfg.ShowStats = true
		cfg.ShowLanguageChart = true
		cfg.ShowRepoActivityChart = true
		cfg.ShowCommitActivityChart = true
		cfg.ShowTopReposChart = true
		cfg.ShowCompany = true
		cfg.ShowEmail = true
		cfg.ShowWebsite = true
		cfg.ShowTwitter = true
		return cfg
	}

	cfg.Owner = strings.TrimSpace(x.GitHubOwner)
	cfg.ProfileType = types.NormalizeProfileType(x.ProfileType)
	cfg.Token = types.AccessToken(strings.TrimSpace(x.GitHubToken))

	for _, ref := range x.FeaturedRepos {
		if trimmed := strings.TrimSpace(ref); trimmed != "" {
			cfg.FeaturedRepos = append(cfg.FeaturedRepos, trimmed)
		}
	}

	if x.ListedRepo != nil && x.ListedRepo.Count > 0 {
		cfg.ListedCount = x.ListedRepo.Count
	} else if x.MaxFeaturedRepos > 0 {
		cfg.ListedCount = x.MaxFeaturedRepos
	}
	if x.ListedRepo != nil {
		cfg.ListedSort = types.ParseSortPolicy(x.ListedRepo.Sort)
	}

	if x.Hero != nil {
		if eyebrow := strings.TrimSpace(x.Hero.Eyebrow); eyebrow != "" {
			cfg.HeroEyebrow = eyebrow
		}
		cfg.HeroMinorInfo = strings.TrimSpace(x.Hero.MinorInfo)
	}
	cfg.CustomLinks = x.CustomLinks

	cfg.ShowVideosSection = enabled(x.ShowVideosSection)
	cfg.ShowBlogsSection = enabled(x.ShowBlogsSection)
	cfg.ShowProjectsSection = enabled(x.ShowProjectsSection)

	cfg.ShowStats = enabled(x.ShowStats)
	if x.Stats != nil {
		cfg.ShowLanguageChart = enabled(x.Stats.ShowLanguageChart)
		cfg.ShowRepoActivityChart = enabled(x.Stats.ShowRepoActivityChart)
		cfg.ShowCommitActivityChart = enabled(x.Stats.ShowCommitActivityChart)
		cfg.ShowTopReposChart = enabled(x.Stats.ShowTopReposChart)
	} else {
		cfg.ShowLanguageChart = true
		cfg.ShowRepoActivityChart = true
		cfg.ShowCommitActivityChart = true
		cfg.ShowTopReposChart = true
	}

	if x.Contact != nil {
		cfg.ShowCompany = enabled(x.Contact.ShowCompany)
		cfg.ShowEmail = enabled(x.Contact.ShowEmail)
		cfg.ShowWebsite = enabled(x.Contact.ShowWebsite)
		cfg.ShowTwitter = enabled(x.Contact.ShowTwitter)
	} else {
		cfg.ShowCompany = true
		cfg.ShowEmail = true
		cfg.ShowWebsite = true
		cfg.ShowTwitter = true
	}

	return cfg
}

// CleanForSave normalizes a config before it is written back through the
// admin surface: featured repo references are trimmed and de-blanked,
// custom links without a title or URL are dropped.
func (x *GitforgeConfig) CleanForSave() *GitforgeConfig {
	cleaned := *x

	cleaned.FeaturedRepos = make([]string, 0, len(x.FeaturedRepos))
	for _, ref := range x.FeaturedRepos {
		if trimmed := strings.TrimSpace(ref); trimmed != "" {
			cleaned.FeaturedRepos = append(cleaned.FeaturedRepos, trimmed)
		}
	}

	cleaned.CustomLinks = make([]CustomLink, 0, len(x.CustomLinks))
	for _, link := range x.CustomLinks {
		link.Title = strings.TrimSpace(link.Title)
		link.URL = strings.TrimSpace(link.URL)
		link.Description = strings.TrimSpace(link.Description)
		if link.Title == "" || link.URL == "" {
			continue
		}
		cleaned.CustomLinks = append(cleaned.CustomLinks, link)
	}

	return &cleaned
}

// ClientConfig is the config subset embedded into the generated data
// module for the front end.
type ClientConfig struct {
	FeaturedRepos []string         `json:"featuredRepos"`
	ListedRepo    ListedRepoConfig `json:"listedRepo"`
}
