package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/gitforge-dev/gitforge/pkg/cli/config"
	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/infra"
	"github.com/gitforge-dev/gitforge/pkg/infra/githubapi"
	"github.com/gitforge-dev/gitforge/pkg/usecase"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

func generateCommand() *cli.Command {
	var (
		site config.Site

		owner          string
		profileType    string
		envToken       string
		dataModuleOut  string
		siteContentOut string
	)

	defaults := usecase.DefaultEmitPaths()

	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"g"},
		Usage:     "Fetch GitHub data and write the static site artifacts",
		ArgsUsage: "[owner]",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "owner",
				Usage:       "GitHub user or organization to build the site for",
				Sources:     cli.EnvVars("GITHUB_OWNER", "GITFORGE_OWNER"),
				Destination: &owner,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "Profile type [user|org]",
				Sources:     cli.EnvVars("GITHUB_PROFILE_TYPE"),
				Destination: &profileType,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "GitHub access token for private repos and higher rate limits",
				Sources:     cli.EnvVars("GITHUB_TOKEN"),
				Destination: &envToken,
			},
			&cli.StringFlag{
				Name:        "data-module-out",
				Usage:       "Output path of the TypeScript data module",
				Value:       defaults.DataModule,
				Sources:     cli.EnvVars("GITFORGE_DATA_MODULE_OUT"),
				Destination: &dataModuleOut,
			},
			&cli.StringFlag{
				Name:        "site-content-out",
				Usage:       "Output path of the site content document",
				Value:       defaults.SiteContent,
				Sources:     cli.EnvVars("GITFORGE_SITE_CONTENT_OUT"),
				Destination: &siteContentOut,
			},
		}, site.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			ctx = logging.With(ctx, logger)

			loaded, err := site.Load(ctx)
			if err != nil {
				return err
			}

			raw := loaded.Config
			if raw == nil {
				raw = &model.GitforgeConfig{}
			}

			// Precedence: positional argument, then flag/environment,
			// then the config file.
			if arg := strings.TrimSpace(c.Args().First()); arg != "" {
				raw.GitHubOwner = arg
			} else if owner != "" {
				raw.GitHubOwner = owner
			}
			if raw.GitHubOwner == "" {
				return goerr.Wrap(types.ErrInvalidOption,
					"owner is required: pass it as an argument, GITHUB_OWNER, or githubOwner in the config file")
			}

			if profileType != "" {
				raw.ProfileType = profileType
			}

			// Config file token wins over the environment, which wins
			// over the dotenv file.
			if raw.GitHubToken == "" {
				if envToken != "" {
					raw.GitHubToken = envToken
				} else {
					raw.GitHubToken = string(loaded.EnvToken)
				}
			}

			cfg := raw.Resolve()
			logger.Info("starting generate",
				slog.String("owner", cfg.Owner),
				slog.String("type", string(cfg.ProfileType)),
				slog.Any("site", &site),
				slog.String("data_module_out", dataModuleOut),
				slog.String("site_content_out", siteContentOut),
			)

			clients := infra.New(infra.WithGitHub(githubapi.New()))
			uc := usecase.New(clients)

			data, err := uc.BuildSiteData(ctx, cfg)
			if err != nil {
				return err
			}

			return uc.EmitArtifacts(ctx, data, usecase.EmitPaths{
				DataModule:  dataModuleOut,
				SiteContent: siteContentOut,
			})
		},
	}
}
