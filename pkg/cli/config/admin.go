package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

// Admin configures the admin console backend: the OAuth app used for
// Device Flow and the repository whose contents are managed.
type Admin struct {
	clientID types.ClientID
	token    types.AccessToken `masq:"secret"`
	owner    string
	repo     string
}

func (x *Admin) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "client-id",
			Usage:       "GitHub OAuth app client ID for Device Flow",
			Category:    "Admin",
			Destination: (*string)(&x.clientID),
			Sources:     cli.EnvVars("GITFORGE_GITHUB_CLIENT_ID"),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "admin-token",
			Usage:       "Pre-authorized access token, skips the device flow when valid",
			Category:    "Admin",
			Destination: (*string)(&x.token),
			Sources:     cli.EnvVars("GITFORGE_ADMIN_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-owner",
			Usage:       "Owner of the portfolio repository",
			Category:    "Admin",
			Destination: &x.owner,
			Sources:     cli.EnvVars("GITFORGE_GITHUB_OWNER"),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "Name of the portfolio repository",
			Category:    "Admin",
			Destination: &x.repo,
			Sources:     cli.EnvVars("GITFORGE_GITHUB_REPO"),
			Required:    true,
		},
	}
}

func (x *Admin) ClientID() types.ClientID {
	return x.clientID
}

func (x *Admin) Token() types.AccessToken {
	return x.token
}

func (x *Admin) Owner() string {
	return x.owner
}

func (x *Admin) Repo() string {
	return x.repo
}

func (x *Admin) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("ClientID", string(x.clientID)),
		slog.Int("Token.len", len(x.token)),
		slog.String("Owner", x.owner),
		slog.String("Repo", x.repo),
	)
}
