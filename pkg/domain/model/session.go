package model

import (
	"encoding/json"

	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// SessionSnapshot is the externally visible admin session state,
// rendered by the admin UI to decide which screen to show.
type SessionSnapshot struct {
	State        types.SessionState `json:"state"`
	RepoFullName string             `json:"repoFullName,omitempty"`
	Error        string             `json:"error,omitempty"`
	Notice       string             `json:"notice,omitempty"`
}

// ContentFile is a content collection plus its version token. An empty
// SHA means the remote file does not exist yet.
type ContentFile struct {
	Items json.RawMessage `json:"items"`
	SHA   types.FileSHA   `json:"sha"`
}
