package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

const (
	// GitHub paginates at 100; only the first page is fetched.
	repoPageSize = 100

	commitActivityYears = 5
	languageChartTopN   = 8
	activityChartYears  = 5
	topReposChartTopN   = 5

	defaultRepoDescription = "Repository on GitHub. Edit siteContent.json to customise this copy."
)

// BuildSiteData runs the full aggregation pipeline: fetch profile and
// repositories, resolve featured repos, derive statistics, and compose
// the renderable site content. Profile and repository list are required;
// everything else (commit calendar, social accounts, individual featured
// repos) degrades to absence on failure.
func (x *UseCase) BuildSiteData(ctx context.Context, cfg *model.ResolvedConfig) (*model.SiteData, error) {
	logger := logging.From(ctx)
	gh := x.clients.GitHub()

	logger.Info("Fetching GitHub data",
		slog.String("owner", cfg.Owner),
		slog.String("type", string(cfg.ProfileType)),
		slog.Bool("authenticated", cfg.Token != ""),
	)
	if cfg.Token != "" {
		logger.Info("Using GitHub token, private repositories are included in stats")
	}

	var profile *model.Profile
	var ownRepos []*model.Repository

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		p, err := gh.GetProfile(egCtx, cfg.Owner, cfg.ProfileType, cfg.Token)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch profile", goerr.V("owner", cfg.Owner))
		}
		profile = p
		return nil
	})
	eg.Go(func() error {
		repos, err := gh.ListRepos(egCtx, cfg.Owner, cfg.ProfileType, repoPageSize, cfg.Token)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch repositories", goerr.V("owner", cfg.Owner))
		}
		ownRepos = repos
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if len(ownRepos) == repoPageSize {
		logger.Warn("Repository listing is capped at one page, repositories beyond it are not collected",
			slog.Int("per_page", repoPageSize),
		)
	}

	commitActivity := x.fetchCommitActivity(ctx, cfg)
	social := x.fetchSocialAccounts(ctx, cfg)
	external := x.fetchExternalFeatured(ctx, cfg)

	// Public repos only for display, newest push first. External featured
	// repos join both sets, de-duplicated by numeric ID.
	display := model.SortRepositories(model.PublicOnly(ownRepos), types.SortByDate)
	display = model.MergeByID(display, external)
	statsSet := model.MergeByID(ownRepos, external)

	logger.Info("Collected repositories",
		slog.Int("own", len(ownRepos)),
		slog.Int("display", len(display)),
		slog.Int("stats", len(statsSet)),
	)

	clientConfig := model.ClientConfig{
		FeaturedRepos: cfg.FeaturedRepos,
		ListedRepo: model.ListedRepoConfig{
			Count: cfg.ListedCount,
			Sort:  string(cfg.ListedSort),
		},
	}

	content := composeSiteContent(cfg, profile, display, statsSet, commitActivity, social)

	return &model.SiteData{
		Owner:        cfg.Owner,
		ProfileType:  string(cfg.ProfileType),
		Profile:      profile,
		Repos:        ownRepos,
		ClientConfig: clientConfig,
		Content:      content,
	}, nil
}

// fetchCommitActivity collects the contribution calendar for the last
// five calendar years. Each year is an independent GraphQL query; a
// failed year is logged and skipped without affecting its siblings.
func (x *UseCase) fetchCommitActivity(ctx context.Context, cfg *model.ResolvedConfig) []model.YearCommits {
	logger := logging.From(ctx)

	if cfg.ProfileType != types.ProfileTypeUser || !cfg.ShowStats || !cfg.ShowCommitActivityChart {
		return nil
	}
	if cfg.Token == "" {
		logger.Info("Skipping commit activity, a GitHub token is required")
		return nil
	}

	currentYear := logging.CtxTime(ctx).Year()

	var mu sync.Mutex
	commitsByYear := map[int]int{}

	var wg sync.WaitGroup
	for year := currentYear - (commitActivityYears - 1); year <= currentYear; year++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			commits, err := x.clients.GitHub().YearContributions(ctx, cfg.Owner, year, cfg.Token)
			if err != nil {
				logger.Warn("Could not fetch commit activity for year",
					slog.Int("year", year),
					slog.String("error", err.Error()),
				)
				return
			}
			if commits > 0 {
				mu.Lock()
				commitsByYear[year] = commits
				mu.Unlock()
			}
		}(year)
	}
	wg.Wait()

	years := make([]int, 0, len(commitsByYear))
	for year := range commitsByYear {
		years = append(years, year)
	}
	sort.Ints(years)

	activity := make([]model.YearCommits, 0, len(years))
	for _, year := range years {
		activity = append(activity, model.YearCommits{Year: year, Commits: commitsByYear[year]})
	}
	if len(activity) > 0 {
		logger.Info("Fetched commit activity", slog.Int("years", len(activity)))
	}
	return activity
}

// fetchSocialAccounts reads the token owner's social links. Only useful
// for user profiles with a token; failure is tolerated.
func (x *UseCase) fetchSocialAccounts(ctx context.Context, cfg *model.ResolvedConfig) []model.SocialAccount {
	if cfg.ProfileType != types.ProfileTypeUser || cfg.Token == "" || !cfg.ShowWebsite {
		return nil
	}

	accounts, err := x.clients.GitHub().SocialAccounts(ctx, cfg.Token)
	if err != nil {
		logging.From(ctx).Info("Could not fetch social accounts, continuing without social links",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return accounts
}

// fetchExternalFeatured fetches featured repos referenced by full name
// ("owner/repo"), which may live outside the profile. Each fetch settles
// independently; a failed repo is skipped.
func (x *UseCase) fetchExternalFeatured(ctx context.Context, cfg *model.ResolvedConfig) []*model.Repository {
	logger := logging.From(ctx)

	var fullNames []string
	for _, ref := range cfg.FeaturedRepos {
		if strings.Contains(ref, "/") {
			fullNames = append(fullNames, ref)
		}
	}
	if len(fullNames) == 0 {
		return nil
	}

	results := make([]*model.Repository, len(fullNames))
	var wg sync.WaitGroup
	for i, fullName := range fullNames {
		wg.Add(1)
		go func(i int, fullName string) {
			defer wg.Done()
			repo, err := x.clients.GitHub().GetRepo(ctx, fullName, cfg.Token)
			if err != nil {
				logger.Warn("Could not fetch featured repository",
					slog.String("repo", fullName),
					slog.String("error", err.Error()),
				)
				return
			}
			results[i] = repo
		}(i, fullName)
	}
	wg.Wait()

	var fetched []*model.Repository
	for _, repo := range results {
		if repo != nil {
			fetched = append(fetched, repo)
		}
	}
	return fetched
}

// composeSiteContent assembles the denormalized document the front end
// renders. All derivations are pure over the collected sets.
func composeSiteContent(cfg *model.ResolvedConfig, profile *model.Profile, display, statsSet []*model.Repository, commitActivity []model.YearCommits, social []model.SocialAccount) *model.SiteContent {
	totalStars := model.TotalStars(statsSet)
	languageCounts := model.CountLanguages(statsSet)
	languages := model.LanguagesByCount(languageCounts)

	var topLanguage string
	if len(languages) > 0 {
		topLanguage = languages[0]
	}

	allTopics := model.UniqueTopics(statsSet)
	topTopics := allTopics
	if len(topTopics) > 5 {
		topTopics = topTopics[:5]
	}

	return &model.SiteContent{
		Hero:       composeHero(cfg, profile, totalStars, topLanguage, topTopics, social),
		Snapshot:   composeSnapshot(profile, languages, topTopics),
		Philosophy: composePhilosophy(profile, totalStars, topLanguage, languageCounts, allTopics, topTopics, statsSet),
		Projects: model.ProjectsSection{
			Title: "Projects",
			Body:  "A selection of repositories from this GitHub profile, captured at build time. Links take you directly to the source on GitHub.",
			Repos: selectSiteRepos(cfg, display),
		},
		Stats: composeStats(cfg, profile, display, statsSet, languageCounts, commitActivity),
		Footer: model.FooterSection{
			Text:        "This page is generated from GitHub profile data and can be deployed as a fully static site.",
			SubtleText:  "Deterministic by default. Explainability over magic. Built for developers first.",
			GitHubLabel: "GitHub",
			GitHubURL:   profile.HTMLURL,
		},
	}
}

func composeHero(cfg *model.ResolvedConfig, profile *model.Profile, totalStars int, topLanguage string, topTopics []string, social []model.SocialAccount) model.HeroSection {
	description := ""
	if profile.Description != nil {
		description = strings.TrimSpace(*profile.Description)
	}
	if description == "" {
		description = synthesizeHeroDescription(profile, totalStars, topLanguage, topTopics)
	}

	var minorInfo *string
	if cfg.HeroMinorInfo != "" {
		minorInfo = &cfg.HeroMinorInfo
	}

	contact := model.HeroContact{
		Location: profile.Location,
		Social:   []model.SocialAccount{},
	}
	if cfg.ShowEmail {
		contact.Email = profile.Email
	}
	if cfg.ShowCompany {
		contact.Company = profile.Company
	}
	if cfg.ShowWebsite {
		contact.Website = normalizeWebsiteURL(profile.Blog)
		if len(social) > 0 {
			contact.Social = social
		}
	}
	if cfg.ShowTwitter {
		contact.Twitter = profile.TwitterUsername
	}

	return model.HeroSection{
		Eyebrow:         cfg.HeroEyebrow,
		Title:           profile.DisplayName(),
		Description:     description,
		MinorInfo:       minorInfo,
		AvatarURL:       profile.AvatarURL,
		PrimaryCtaLabel: "View on GitHub",
		PrimaryCtaHref:  profile.HTMLURL,
		Caption:         "",
		Contact:         contact,
	}
}

// synthesizeHeroDescription writes a short bio from activity data when
// the profile itself has none.
func synthesizeHeroDescription(profile *model.Profile, totalStars int, topLanguage string, topTopics []string) string {
	var sentences []string

	starsPart := ""
	if totalStars > 0 {
		starsPart = fmt.Sprintf(" with %d stars across these projects", totalStars)
	}
	sentences = append(sentences, fmt.Sprintf(
		"%s maintains %d public repositories on GitHub%s.",
		profile.DisplayName(), profile.PublicRepos, starsPart,
	))

	topicsPreview := topTopics
	if len(topicsPreview) > 3 {
		topicsPreview = topicsPreview[:3]
	}

	switch {
	case topLanguage != "" && len(topicsPreview) > 0:
		sentences = append(sentences, fmt.Sprintf(
			"Most of the work centers around %s, with repositories touching topics like %s.",
			topLanguage, strings.Join(topicsPreview, ", "),
		))
	case topLanguage != "":
		sentences = append(sentences, fmt.Sprintf("Most of the work centers around %s.", topLanguage))
	case len(topicsPreview) > 0:
		sentences = append(sentences, fmt.Sprintf(
			"Repositories explore topics such as %s and related tooling.",
			strings.Join(topicsPreview, ", "),
		))
	}

	return strings.Join(sentences, " ")
}

func composeSnapshot(profile *model.Profile, languages, topTopics []string) model.SnapshotSection {
	items := []string{
		fmt.Sprintf("%d public repositories", profile.PublicRepos),
		fmt.Sprintf("%d followers · %d following", profile.Followers, profile.Following),
	}
	if profile.UpdatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *profile.UpdatedAt); err == nil {
			items = append(items, "Profile updated on "+t.Format("Jan 2, 2006"))
		}
	}
	if profile.Location != nil && *profile.Location != "" {
		items = append([]string{"Based in " + *profile.Location}, items...)
	}

	topLanguages := languages
	if len(topLanguages) > 3 {
		topLanguages = topLanguages[:3]
	}
	topicNames := topTopics
	if len(topicNames) > 3 {
		topicNames = topicNames[:3]
	}

	var subtitle *string
	if len(topLanguages) > 0 || len(topicNames) > 0 {
		var parts []string
		if len(topLanguages) > 0 {
			parts = append(parts, strings.Join(topLanguages, ", "))
		}
		if len(topicNames) > 0 {
			parts = append(parts, strings.Join(topicNames, ", "))
		}
		s := strings.Join(parts, " · ")
		subtitle = &s
	}

	return model.SnapshotSection{
		Title:    "Top skills",
		Items:    items,
		Subtitle: subtitle,
	}
}

func composePhilosophy(profile *model.Profile, totalStars int, topLanguage string, languageCounts map[string]int, allTopics, topTopics []string, statsSet []*model.Repository) model.PhilosophySection {
	cards := []model.PhilosophyCard{
		{
			Title: "Repositories & activity",
			Body: fmt.Sprintf("%s has %d public repositories with a total of %d stars across this profile.",
				profile.DisplayName(), profile.PublicRepos, totalStars),
		},
	}

	languageBody := "GitHub does not report primary languages for these repositories yet."
	if topLanguage != "" {
		languageBody = fmt.Sprintf("The most common language across these repositories is %s, alongside %d other languages.",
			topLanguage, len(languageCounts)-1)
	}
	cards = append(cards, model.PhilosophyCard{Title: "Languages in use", Body: languageBody})

	if top := model.TopReposByStars(statsSet, 1); len(top) > 0 {
		cards = append(cards, model.PhilosophyCard{
			Title: "Most starred repository",
			Body:  fmt.Sprintf("%s is the most starred repository with %d stars.", top[0].Name, top[0].Stars),
		})
	}

	topicsBody := "No GitHub topics are configured yet for these repositories."
	if len(topTopics) > 0 {
		suffix := "."
		if len(allTopics) > len(topTopics) {
			suffix = fmt.Sprintf(" and %d more.", len(allTopics)-len(topTopics))
		}
		topicsBody = fmt.Sprintf("Repositories in this profile are tagged with topics like %s%s",
			strings.Join(topTopics, ", "), suffix)
	}
	cards = append(cards, model.PhilosophyCard{Title: "Topics & domains", Body: topicsBody})

	return model.PhilosophySection{
		Title: "Philosophy",
		Body:  "Guardrails over guesswork. The goal is to keep infrastructure and developer tooling deterministic, explainable, and easy to inspect, even when AI is part of the workflow.",
		Cards: cards,
	}
}

// selectSiteRepos resolves featured references against the display set
// and fills the remainder according to the listed-repo policy.
func selectSiteRepos(cfg *model.ResolvedConfig, display []*model.Repository) []model.SiteRepo {
	var featured []*model.Repository
	featuredIDs := map[types.RepoID]struct{}{}
	for _, ref := range cfg.FeaturedRepos {
		repo := model.FindByReference(display, ref)
		if repo == nil {
			continue
		}
		featured = append(featured, repo)
		featuredIDs[repo.ID] = struct{}{}
	}

	var remaining []*model.Repository
	for _, repo := range display {
		if _, ok := featuredIDs[repo.ID]; !ok {
			remaining = append(remaining, repo)
		}
	}

	additional := model.SortRepositories(remaining, cfg.ListedSort)
	if len(additional) > cfg.ListedCount {
		additional = additional[:cfg.ListedCount]
	}

	repos := make([]model.SiteRepo, 0, len(featured)+len(additional))
	for _, repo := range featured {
		repos = append(repos, toSiteRepo(repo, true))
	}
	for _, repo := range additional {
		repos = append(repos, toSiteRepo(repo, false))
	}
	return repos
}

func toSiteRepo(repo *model.Repository, featured bool) model.SiteRepo {
	description := defaultRepoDescription
	if repo.Description != nil && *repo.Description != "" {
		description = *repo.Description
	}
	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}
	return model.SiteRepo{
		Name:        repo.Name,
		Description: description,
		URL:         repo.HTMLURL,
		Stars:       repo.StargazersCount,
		Language:    repo.Language,
		Topics:      topics,
		LastUpdated: repo.UpdatedAt,
		Featured:    featured,
	}
}

func composeStats(cfg *model.ResolvedConfig, profile *model.Profile, display, statsSet []*model.Repository, languageCounts map[string]int, commitActivity []model.YearCommits) *model.AggregatedStats {
	if !cfg.ShowStats {
		return nil
	}

	stats := &model.AggregatedStats{
		Metrics: model.StatsMetrics{
			TotalRepos:      len(statsSet),
			PublicRepos:     profile.PublicRepos,
			TotalStars:      model.TotalStars(statsSet),
			TotalForks:      model.TotalForks(statsSet),
			TotalOpenIssues: model.TotalOpenIssues(statsSet),
			LanguagesUsed:   len(languageCounts),
			Followers:       profile.Followers,
			Following:       profile.Following,
		},
		LanguageDistribution: []model.LanguageShare{},
		ActivityByYear:       []model.YearActivity{},
		CommitActivityByYear: []model.YearCommits{},
		TopReposByStars:      []model.TopRepo{},
	}

	if cfg.ShowLanguageChart {
		stats.LanguageDistribution = model.LanguageDistribution(languageCounts, languageChartTopN)
	}
	if cfg.ShowRepoActivityChart {
		stats.ActivityByYear = model.ActivityByYear(statsSet, activityChartYears)
	}
	if cfg.ShowCommitActivityChart && commitActivity != nil {
		stats.CommitActivityByYear = commitActivity
	}
	if cfg.ShowTopReposChart {
		stats.TopReposByStars = model.TopReposByStars(display, topReposChartTopN)
	}

	return stats
}

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// normalizeWebsiteURL trims the profile blog URL and prepends https://
// when the scheme is missing. Empty input stays nil.
func normalizeWebsiteURL(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	if !schemePattern.MatchString(trimmed) {
		trimmed = "https://" + trimmed
	}
	return &trimmed
}
