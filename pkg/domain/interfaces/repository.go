package interfaces

import (
	"context"

	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// ContentRepository is a versioned KV store keyed by file path, backed
// by the GitHub Contents API in production and by memory in tests.
//
// Get treats a missing file as a first-class state: it returns nil
// content with an empty SHA and no error.
//
// Put must include the SHA only when non-empty (a brand-new file is
// written without one). On a version conflict the implementation
// refreshes the SHA and retries the identical payload exactly once; a
// second conflict surfaces types.ErrConflict.
type ContentRepository interface {
	Get(ctx context.Context, token types.AccessToken, path string) ([]byte, types.FileSHA, error)
	Put(ctx context.Context, token types.AccessToken, path string, content []byte, sha types.FileSHA, message string) (types.FileSHA, error)
}
