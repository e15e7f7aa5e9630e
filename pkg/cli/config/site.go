package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v3"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

const (
	defaultConfigPath = "gitforge.config.json"

	// Pre-rename installations still carry this file.
	legacyConfigPath = "gitfolio.config.json"
)

// Site locates and reads the durable site configuration file plus the
// optional .env token file next to it.
type Site struct {
	configPath string
	envPath    string
}

func (x *Site) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the site configuration file",
			Category:    "Site",
			Value:       defaultConfigPath,
			Sources:     cli.EnvVars("GITFORGE_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "Path to a dotenv file providing GITHUB_TOKEN",
			Category:    "Site",
			Value:       ".env",
			Sources:     cli.EnvVars("GITFORGE_ENV_FILE"),
			Destination: &x.envPath,
		},
	}
}

// SiteFile is the loaded result: the raw configuration (nil when no file
// exists) and the token found in the dotenv file, if any.
type SiteFile struct {
	Config   *model.GitforgeConfig
	EnvToken types.AccessToken
}

// Load reads the config file, falling back to the legacy file name, and
// the dotenv file. Both are optional; a missing file is not an error.
func (x *Site) Load(ctx context.Context) (*SiteFile, error) {
	logger := logging.From(ctx)
	loaded := &SiteFile{}

	path := x.configPath
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if _, err := os.Stat(legacyConfigPath); err == nil {
				logger.Info("Using legacy config file", slog.String("path", legacyConfigPath))
				path = legacyConfigPath
			}
		}
	}

	if _, err := os.Stat(path); err == nil {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
		}

		var cfg model.GitforgeConfig
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
		}
		loaded.Config = &cfg
	}

	if _, err := os.Stat(x.envPath); err == nil {
		env := viper.New()
		env.SetConfigFile(x.envPath)
		env.SetConfigType("env")
		if err := env.ReadInConfig(); err != nil {
			logger.Warn("Could not read env file", slog.String("path", x.envPath), slog.String("error", err.Error()))
		} else {
			loaded.EnvToken = types.AccessToken(env.GetString("GITHUB_TOKEN"))
		}
	}

	return loaded, nil
}

func (x *Site) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("ConfigPath", x.configPath),
		slog.String("EnvPath", x.envPath),
	)
}
