package types

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

type (
	// AccessToken is a GitHub OAuth bearer token. Empty means anonymous access.
	AccessToken string

	// ClientID is the public OAuth app client ID used for Device Flow.
	ClientID string

	// RepoID is GitHub's stable numeric repository ID. It is the
	// de-duplication key across all collected repository sources.
	RepoID int64

	// FileSHA is the blob SHA of a file served by the Contents API.
	// It acts as the version token for optimistic-concurrency writes.
	FileSHA string

	RequestID string
)

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

func (x AccessToken) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x AccessToken) String() string {
	return "***********"
}

// ProfileType distinguishes GitHub user and organization profiles.
type ProfileType string

const (
	ProfileTypeUser ProfileType = "user"
	ProfileTypeOrg  ProfileType = "org"
)

// NormalizeProfileType maps any input to a valid profile type. Anything
// other than "user" becomes "org", matching the build script behavior.
func NormalizeProfileType(s string) ProfileType {
	if strings.ToLower(strings.TrimSpace(s)) == string(ProfileTypeUser) {
		return ProfileTypeUser
	}
	return ProfileTypeOrg
}

// SortPolicy selects how listed (non-featured) repositories are ordered.
type SortPolicy string

const (
	SortByDate         SortPolicy = "date"
	SortByStar         SortPolicy = "star"
	SortByDateThenStar SortPolicy = "date-then-star"
	SortByStarThenDate SortPolicy = "star-then-date"
)

// ParseSortPolicy normalizes a raw config value, accepting the legacy
// aliases ("stars", "date_star", "star_date"). Unknown values fall back
// to date ordering.
func ParseSortPolicy(s string) SortPolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "star", "stars":
		return SortByStar
	case "date-then-star", "date_star":
		return SortByDateThenStar
	case "star-then-date", "star_date":
		return SortByStarThenDate
	default:
		return SortByDate
	}
}

// ContentKind identifies one of the admin-editable content collections.
type ContentKind string

const (
	ContentProjects ContentKind = "projects"
	ContentBlogs    ContentKind = "blogs"
	ContentPosts    ContentKind = "posts"
	ContentVideos   ContentKind = "videos"
)

// ContentKinds lists all collections in their canonical order.
func ContentKinds() []ContentKind {
	return []ContentKind{ContentProjects, ContentBlogs, ContentPosts, ContentVideos}
}

// Path returns the repository-side file path for the collection.
func (x ContentKind) Path() string {
	return "data/" + string(x) + ".json"
}

func (x ContentKind) IsValid() bool {
	switch x {
	case ContentProjects, ContentBlogs, ContentPosts, ContentVideos:
		return true
	}
	return false
}

// SessionState is the admin session controller state. The states are
// mutually exclusive; UI gating depends on exhaustive checks over them.
type SessionState string

const (
	StateCheckingAuth        SessionState = "checkingAuth"
	StateUnauthenticated     SessionState = "unauthenticated"
	StateAuthenticating      SessionState = "authenticating"
	StateCheckingPermissions SessionState = "checkingPermissions"
	StateUnauthorized        SessionState = "unauthorized"
	StateLoadingConfig       SessionState = "loadingConfig"
	StateReady               SessionState = "ready"
	StateSaving              SessionState = "saving"
)
