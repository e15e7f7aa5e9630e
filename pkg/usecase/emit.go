package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

// EmitPaths are the output locations of the generated artifacts.
type EmitPaths struct {
	DataModule  string
	SiteContent string
}

// DefaultEmitPaths mirrors the front end's import locations.
func DefaultEmitPaths() EmitPaths {
	return EmitPaths{
		DataModule:  filepath.Join("src", "generated", "githubData.ts"),
		SiteContent: filepath.Join("src", "siteContent.json"),
	}
}

// EmitArtifacts serializes the aggregated data into the typed data
// module and the site content document. Serialization is deterministic:
// identical input produces byte-identical files.
func (x *UseCase) EmitArtifacts(ctx context.Context, data *model.SiteData, paths EmitPaths) error {
	logger := logging.From(ctx)

	module, err := renderDataModule(data)
	if err != nil {
		return err
	}
	content, err := prettyJSON(data.Content)
	if err != nil {
		return goerr.Wrap(err, "failed to serialize site content")
	}

	for _, path := range []string{paths.DataModule, paths.SiteContent} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
			}
		}
	}

	if err := os.WriteFile(paths.DataModule, module, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write data module", goerr.V("path", paths.DataModule))
	}
	if err := os.WriteFile(paths.SiteContent, content, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write site content", goerr.V("path", paths.SiteContent))
	}

	logger.Info("Wrote static artifacts",
		slog.String("data_module", paths.DataModule),
		slog.String("site_content", paths.SiteContent),
	)
	return nil
}

// renderDataModule produces the TypeScript module the front end imports
// at build time.
func renderDataModule(data *model.SiteData) ([]byte, error) {
	owner, err := prettyJSON(data.Owner)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to serialize owner")
	}
	profileType, err := prettyJSON(data.ProfileType)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to serialize profile type")
	}
	profile, err := prettyJSON(data.Profile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to serialize profile")
	}
	repos := data.Repos
	if repos == nil {
		repos = []*model.Repository{}
	}
	repoJSON, err := prettyJSON(repos)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to serialize repositories")
	}
	clientConfig, err := prettyJSON(data.ClientConfig)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to serialize client config")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `// This file is auto-generated by gitforge.
// Do not edit by hand. Run "gitforge generate" again to refresh data.
//
// Source:
//   owner: %s
//   type: %s

export const githubOwner = %s as const;
export const githubProfileType = %s as const;

export const githubProfile = %s as const;

export const githubRepos = %s as const;

export const githubConfig = %s as const;

export type GitHubProfile = typeof githubProfile;
export type GitHubRepo = (typeof githubRepos)[number];
export type GitHubConfig = typeof githubConfig;
`, data.Owner, data.ProfileType, owner, profileType, profile, repoJSON, clientConfig)

	return buf.Bytes(), nil
}

// prettyJSON renders two-space indented JSON without HTML escaping, the
// same shape the front end's tooling produces.
func prettyJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
