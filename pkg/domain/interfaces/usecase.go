package interfaces

import (
	"context"
	"encoding/json"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// AdminUseCase is what the admin HTTP controller drives. Implemented by
// usecase.SessionController.
type AdminUseCase interface {
	// Bootstrap resolves the initial state from any pre-existing token.
	Bootstrap(ctx context.Context)

	Snapshot() *model.SessionSnapshot

	// StartLogin begins the device flow and returns the user-facing
	// verification details. CompleteLogin runs the poll loop; it is
	// expected to be invoked on a detached context.
	StartLogin(ctx context.Context) (*model.DeviceAuthorization, error)
	CompleteLogin(ctx context.Context, deviceCode string, intervalSec int)
	Logout()

	Config() (*model.GitforgeConfig, types.FileSHA)
	SaveConfig(ctx context.Context, cfg *model.GitforgeConfig) error

	LoadContent(ctx context.Context, kind types.ContentKind) (*model.ContentFile, error)
	SaveContent(ctx context.Context, kind types.ContentKind, items json.RawMessage, sha types.FileSHA) (*model.ContentFile, error)
}
