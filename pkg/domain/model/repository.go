package model

import (
	"sort"
	"strings"
	"time"

	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// Repository is the normalized subset of a GitHub repository used by the
// generated site. ID is the de-duplication key across own repos and
// externally referenced featured repos.
type Repository struct {
	ID              types.RepoID `json:"id"`
	Name            string       `json:"name"`
	FullName        string       `json:"full_name"`
	HTMLURL         string       `json:"html_url"`
	Description     *string      `json:"description"`
	StargazersCount int          `json:"stargazers_count"`
	Language        *string      `json:"language"`
	OpenIssuesCount int          `json:"open_issues_count"`
	Topics          []string     `json:"topics"`
	Archived        bool         `json:"archived"`
	Disabled        bool         `json:"disabled"`
	Fork            bool         `json:"fork"`
	Private         bool         `json:"private"`
	PushedAt        *string      `json:"pushed_at"`
	UpdatedAt       *string      `json:"updated_at"`
}

// pushedUnixMilli parses the push timestamp for sorting. Missing or
// unparsable dates sort as 0 (epoch), the documented tie-break rule.
func (x *Repository) pushedUnixMilli() int64 {
	if x.PushedAt == nil {
		return 0
	}
	t, err := time.Parse(time.RFC3339, *x.PushedAt)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// PushedYear returns the year of the last push, or 0 when unknown.
func (x *Repository) PushedYear() int {
	if x.PushedAt == nil {
		return 0
	}
	t, err := time.Parse(time.RFC3339, *x.PushedAt)
	if err != nil {
		return 0
	}
	return t.Year()
}

// SortRepositories orders repos according to the listed-repo policy.
// The input slice is not modified. Sorting is stable so that equal
// elements keep their upstream order.
func SortRepositories(repos []*Repository, policy types.SortPolicy) []*Repository {
	sorted := make([]*Repository, len(repos))
	copy(sorted, repos)

	less := func(a, b *Repository) bool {
		switch policy {
		case types.SortByStar:
			return a.StargazersCount > b.StargazersCount
		case types.SortByDateThenStar:
			at, bt := a.pushedUnixMilli(), b.pushedUnixMilli()
			if at != bt {
				return at > bt
			}
			return a.StargazersCount > b.StargazersCount
		case types.SortByStarThenDate:
			if a.StargazersCount != b.StargazersCount {
				return a.StargazersCount > b.StargazersCount
			}
			return a.pushedUnixMilli() > b.pushedUnixMilli()
		default: // types.SortByDate
			return a.pushedUnixMilli() > b.pushedUnixMilli()
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	return sorted
}

// MergeByID appends extras to base, skipping any repository whose ID is
// already present. The base slice order is preserved.
func MergeByID(base, extras []*Repository) []*Repository {
	seen := make(map[types.RepoID]struct{}, len(base))
	for _, repo := range base {
		seen[repo.ID] = struct{}{}
	}

	merged := make([]*Repository, 0, len(base)+len(extras))
	merged = append(merged, base...)
	for _, repo := range extras {
		if repo == nil {
			continue
		}
		if _, ok := seen[repo.ID]; ok {
			continue
		}
		seen[repo.ID] = struct{}{}
		merged = append(merged, repo)
	}

	return merged
}

// PublicOnly filters out private repositories for the display set.
func PublicOnly(repos []*Repository) []*Repository {
	public := make([]*Repository, 0, len(repos))
	for _, repo := range repos {
		if !repo.Private {
			public = append(public, repo)
		}
	}
	return public
}

// FindByReference resolves a featured-repo reference, which may be a
// plain name or "owner/name", against a repository set.
func FindByReference(repos []*Repository, ref string) *Repository {
	qualified := strings.Contains(ref, "/")
	for _, repo := range repos {
		if qualified {
			if repo.FullName == ref {
				return repo
			}
		} else if repo.Name == ref {
			return repo
		}
	}
	return nil
}
