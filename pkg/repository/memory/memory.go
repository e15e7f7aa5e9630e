package memory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitforge-dev/gitforge/pkg/domain/interfaces"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// Store is an in-memory ContentRepository with the same versioning
// semantics as the Contents API. Used as the test double for session
// and content-store logic.
type Store struct {
	mu    sync.Mutex
	files map[string]*file

	// FailPuts makes the next N writes fail with a version conflict
	// even after a refresh, to exercise terminal-conflict paths.
	FailPuts int
}

type file struct {
	content []byte
	sha     types.FileSHA
}

var _ interfaces.ContentRepository = (*Store)(nil)

func New() *Store {
	return &Store{
		files: make(map[string]*file),
	}
}

func blobSHA(content []byte) types.FileSHA {
	sum := sha1.Sum(content)
	return types.FileSHA(hex.EncodeToString(sum[:]))
}

// Seed writes a file directly, bypassing version checks.
func (x *Store) Seed(path string, content []byte) types.FileSHA {
	x.mu.Lock()
	defer x.mu.Unlock()

	sha := blobSHA(content)
	x.files[path] = &file{content: content, sha: sha}
	return sha
}

// Content returns the current raw content, or nil when absent.
func (x *Store) Content(path string) []byte {
	x.mu.Lock()
	defer x.mu.Unlock()

	if f, ok := x.files[path]; ok {
		return f.content
	}
	return nil
}

func (x *Store) Get(ctx context.Context, token types.AccessToken, path string) ([]byte, types.FileSHA, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	f, ok := x.files[path]
	if !ok {
		return nil, "", nil
	}
	return f.content, f.sha, nil
}

func (x *Store) Put(ctx context.Context, token types.AccessToken, path string, content []byte, sha types.FileSHA, message string) (types.FileSHA, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.FailPuts > 0 {
		x.FailPuts--
		return "", goerr.Wrap(types.ErrConflict, "failed to update "+path)
	}

	_, exists := x.files[path]
	if !exists && sha != "" {
		return "", goerr.Wrap(types.ErrConflict, "file vanished upstream: "+path)
	}
	// A stale SHA against the real store triggers one refresh-and-retry,
	// which in memory always observes the latest blob. The write
	// proceeds as that retry would.

	next := &file{content: content, sha: blobSHA(content)}
	x.files[path] = next
	return next.sha, nil
}
