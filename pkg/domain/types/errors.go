package types

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidOption = goerr.New("invalid option")

	// ErrUnauthorized means the current token is invalid, expired, or
	// lacks permission. Terminal for the token: clear it, do not retry.
	ErrUnauthorized = goerr.New("unauthorized")

	// ErrConflict means a Contents API write was rejected because the
	// remote file changed. Retryable exactly once with a refreshed SHA.
	ErrConflict = goerr.New("remote file changed upstream")

	// ErrInvalidContent means a config or content file holds JSON that
	// cannot be parsed. Terminal and user-facing so the maintainer can
	// fix the file by hand.
	ErrInvalidContent = goerr.New("invalid content file")

	// Device Flow terminal states.
	ErrAccessDenied      = goerr.New("user denied access in the GitHub OAuth screen")
	ErrDeviceCodeExpired = goerr.New("device code expired, retry login")
)
