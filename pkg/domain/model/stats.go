package model

import (
	"math"
	"sort"
)

// LanguageShare is one entry of the language distribution chart.
// Percentage is computed over repositories that report a language, not
// the total repository count, so the displayed shares sum to ~100%.
type LanguageShare struct {
	Language   string `json:"language"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// YearActivity counts repositories by their last-push year.
type YearActivity struct {
	Year  int `json:"year"`
	Repos int `json:"repos"`
}

// YearCommits is one year of the contribution calendar.
type YearCommits struct {
	Year    int `json:"year"`
	Commits int `json:"commits"`
}

// TopRepo is one entry of the top-repositories-by-stars chart.
type TopRepo struct {
	Name     string `json:"name"`
	Stars    int    `json:"stars"`
	Language string `json:"language"`
}

// StatsMetrics are the headline counters of the stats panel.
type StatsMetrics struct {
	TotalRepos      int `json:"totalRepos"`
	PublicRepos     int `json:"publicRepos"`
	TotalStars      int `json:"totalStars"`
	TotalForks      int `json:"totalForks"`
	TotalOpenIssues int `json:"totalOpenIssues"`
	LanguagesUsed   int `json:"languagesUsed"`
	Followers       int `json:"followers"`
	Following       int `json:"following"`
}

// AggregatedStats is derived state only: every field must be
// recomputable from the repository sets plus the commit calendar.
type AggregatedStats struct {
	Metrics              StatsMetrics    `json:"metrics"`
	LanguageDistribution []LanguageShare `json:"languageDistribution"`
	ActivityByYear       []YearActivity  `json:"activityByYear"`
	CommitActivityByYear []YearCommits   `json:"commitActivityByYear"`
	TopReposByStars      []TopRepo       `json:"topReposByStars"`
}

// TotalStars sums stargazers over a repository set.
func TotalStars(repos []*Repository) int {
	var total int
	for _, repo := range repos {
		total += repo.StargazersCount
	}
	return total
}

// TotalForks counts repositories that are forks, matching the reference
// metric (fork flags, not upstream fork counters).
func TotalForks(repos []*Repository) int {
	var total int
	for _, repo := range repos {
		if repo.Fork {
			total++
		}
	}
	return total
}

// TotalOpenIssues sums open issue counters over a repository set.
func TotalOpenIssues(repos []*Repository) int {
	var total int
	for _, repo := range repos {
		total += repo.OpenIssuesCount
	}
	return total
}

// CountLanguages tallies primary languages over a repository set.
// Repositories without a language are excluded.
func CountLanguages(repos []*Repository) map[string]int {
	counts := map[string]int{}
	for _, repo := range repos {
		if repo.Language != nil && *repo.Language != "" {
			counts[*repo.Language]++
		}
	}
	return counts
}

// LanguagesByCount returns language names ordered by descending count,
// ties broken alphabetically so the output is deterministic.
func LanguagesByCount(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// LanguageDistribution builds the top-N language shares. Percentages use
// the count of repositories with a known language as the denominator;
// when that is zero the result is empty.
func LanguageDistribution(counts map[string]int, topN int) []LanguageShare {
	var denominator int
	for _, count := range counts {
		denominator += count
	}
	if denominator == 0 {
		return []LanguageShare{}
	}

	shares := make([]LanguageShare, 0, topN)
	for _, name := range LanguagesByCount(counts) {
		if len(shares) == topN {
			break
		}
		shares = append(shares, LanguageShare{
			Language:   name,
			Count:      counts[name],
			Percentage: int(math.Round(float64(counts[name]) / float64(denominator) * 100)),
		})
	}
	return shares
}

// ActivityByYear buckets repositories by last-push year and keeps the
// most recent maxYears buckets in ascending year order.
func ActivityByYear(repos []*Repository, maxYears int) []YearActivity {
	byYear := map[int]int{}
	for _, repo := range repos {
		if year := repo.PushedYear(); year > 0 {
			byYear[year]++
		}
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	activity := make([]YearActivity, 0, len(years))
	for _, year := range years {
		activity = append(activity, YearActivity{Year: year, Repos: byYear[year]})
	}
	if len(activity) > maxYears {
		activity = activity[len(activity)-maxYears:]
	}
	return activity
}

// TopReposByStars picks the N most starred repositories for display.
// Language falls back to "Other" when the repo reports none.
func TopReposByStars(repos []*Repository, topN int) []TopRepo {
	sorted := SortRepositories(repos, "star")

	top := make([]TopRepo, 0, topN)
	for _, repo := range sorted {
		if len(top) == topN {
			break
		}
		language := "Other"
		if repo.Language != nil && *repo.Language != "" {
			language = *repo.Language
		}
		top = append(top, TopRepo{
			Name:     repo.Name,
			Stars:    repo.StargazersCount,
			Language: language,
		})
	}
	return top
}

// UniqueTopics collects topics across a repository set, first-seen order.
func UniqueTopics(repos []*Repository) []string {
	seen := map[string]struct{}{}
	var topics []string
	for _, repo := range repos {
		for _, topic := range repo.Topics {
			if topic == "" {
				continue
			}
			if _, ok := seen[topic]; ok {
				continue
			}
			seen[topic] = struct{}{}
			topics = append(topics, topic)
		}
	}
	return topics
}
