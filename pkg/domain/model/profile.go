package model

import (
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// Profile is the normalized subset of a GitHub user or organization.
// The JSON field names follow the GitHub REST response so the generated
// artifacts stay compatible with the front end. Fields are intentionally
// narrow to keep the generated data module small and stable.
type Profile struct {
	Login           string  `json:"login"`
	Name            *string `json:"name"`
	AvatarURL       *string `json:"avatar_url"`
	HTMLURL         string  `json:"html_url"`
	Description     *string `json:"description"`
	Email           *string `json:"email"`
	Location        *string `json:"location"`
	Company         *string `json:"company"`
	Blog            *string `json:"blog"`
	TwitterUsername *string `json:"twitter_username"`
	PublicRepos     int     `json:"public_repos"`
	Followers       int     `json:"followers"`
	Following       int     `json:"following"`
	UpdatedAt       *string `json:"updated_at"`
	Type            string  `json:"type"`
}

// DisplayName prefers the profile's display name over the login.
func (x *Profile) DisplayName() string {
	if x.Name != nil && *x.Name != "" {
		return *x.Name
	}
	return x.Login
}

// FallbackHTMLURL fills the profile URL when the API response omits it.
func FallbackHTMLURL(owner string) string {
	return "https://github.com/" + owner
}

// SocialAccount is a social link from GET /user/social_accounts.
type SocialAccount struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// AuthSession carries the ephemeral admin session. It is passed
// explicitly through every repository call instead of living in a
// package-level slot, so tests can substitute it.
type AuthSession struct {
	Token        types.AccessToken
	State        types.SessionState
	RepoFullName string
	AdminAccess  bool
}

// Authenticated reports whether the session holds a token.
func (x *AuthSession) Authenticated() bool {
	return x.Token != ""
}

// DeviceAuthorization is the response of POST /login/device/code.
type DeviceAuthorization struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

// VerificationURL prefers the complete URI when the endpoint provides one.
func (x *DeviceAuthorization) VerificationURL() string {
	if x.VerificationURIComplete != "" {
		return x.VerificationURIComplete
	}
	return x.VerificationURI
}
