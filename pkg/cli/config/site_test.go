package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"

	"github.com/gitforge-dev/gitforge/pkg/cli/config"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
)

func loadSite(t *testing.T, args ...string) *config.SiteFile {
	t.Helper()

	var site config.Site
	var loaded *config.SiteFile
	cmd := &cli.Command{
		Name:  "test",
		Flags: site.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := site.Load(ctx)
			if err != nil {
				return err
			}
			loaded = result
			return nil
		},
	}

	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return loaded
}

func TestSiteLoad(t *testing.T) {
	t.Run("missing files yield empty result", func(t *testing.T) {
		dir := t.TempDir()
		loaded := loadSite(t,
			"--config", filepath.Join(dir, "gitforge.config.json"),
			"--env-file", filepath.Join(dir, ".env"),
		)
		gt.True(t, loaded.Config == nil)
		gt.V(t, loaded.EnvToken).Equal(types.AccessToken(""))
	})

	t.Run("config file is parsed", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "gitforge.config.json")
		gt.NoError(t, os.WriteFile(path, []byte(`{
			"githubOwner": "octocat",
			"profileType": "user",
			"featuredRepos": ["alpha", "other/tool"],
			"listedRepo": {"count": 6, "sort": "star"},
			"showStats": false
		}`), 0o644))

		loaded := loadSite(t, "--config", path, "--env-file", filepath.Join(dir, ".env"))
		gt.True(t, loaded.Config != nil)
		gt.V(t, loaded.Config.GitHubOwner).Equal("octocat")
		gt.V(t, loaded.Config.FeaturedRepos).Equal([]string{"alpha", "other/tool"})
		gt.V(t, loaded.Config.ListedRepo.Count).Equal(6)
		gt.True(t, loaded.Config.ShowStats != nil)
		gt.V(t, *loaded.Config.ShowStats).Equal(false)
	})

	t.Run("legacy file name is picked up", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		gt.NoError(t, os.WriteFile("gitfolio.config.json", []byte(`{"githubOwner": "legacy"}`), 0o644))

		loaded := loadSite(t)
		gt.True(t, loaded.Config != nil)
		gt.V(t, loaded.Config.GitHubOwner).Equal("legacy")
	})

	t.Run("dotenv token is read", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		gt.NoError(t, os.WriteFile(envPath, []byte("GITHUB_TOKEN=ghp_dotenv\n"), 0o644))

		loaded := loadSite(t,
			"--config", filepath.Join(dir, "gitforge.config.json"),
			"--env-file", envPath,
		)
		gt.V(t, loaded.EnvToken).Equal(types.AccessToken("ghp_dotenv"))
	})
}
