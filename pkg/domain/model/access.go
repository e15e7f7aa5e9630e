package model

// RepoAccess is the slice of GET /repos/{owner}/{repo} the admin session
// controller needs: identity plus whether the caller holds admin rights.
type RepoAccess struct {
	FullName string
	Private  bool
	Admin    bool
}
