package usecase

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gitforge-dev/gitforge/pkg/domain/model"
	"github.com/gitforge-dev/gitforge/pkg/domain/types"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

func contentCommitMessage(kind types.ContentKind) string {
	return "Update " + string(kind) + " via admin panel"
}

// LoadContent reads one content collection from the target repository.
// An absent file is an empty collection with no version token. Legacy
// video items are migrated on read.
func (x *SessionController) LoadContent(ctx context.Context, kind types.ContentKind) (*model.ContentFile, error) {
	if !kind.IsValid() {
		return nil, goerr.Wrap(types.ErrInvalidContent, "unknown content kind", goerr.V("kind", kind))
	}
	token, err := x.authedToken()
	if err != nil {
		return nil, err
	}

	raw, sha, err := x.clients.Contents().Get(ctx, token, kind.Path())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load content", goerr.V("kind", kind))
	}
	if raw == nil {
		return &model.ContentFile{Items: json.RawMessage("[]"), SHA: ""}, nil
	}

	items, err := normalizeItems(kind, raw)
	if err != nil {
		return nil, err
	}
	return &model.ContentFile{Items: items, SHA: sha}, nil
}

// SaveContent stamps and writes one content collection. Items without an
// ID get a generated one with creation and update timestamps; existing
// stamps are left alone. The returned file carries the new version token.
func (x *SessionController) SaveContent(ctx context.Context, kind types.ContentKind, items json.RawMessage, sha types.FileSHA) (*model.ContentFile, error) {
	if !kind.IsValid() {
		return nil, goerr.Wrap(types.ErrInvalidContent, "unknown content kind", goerr.V("kind", kind))
	}
	token, err := x.authedToken()
	if err != nil {
		return nil, err
	}

	now := model.NowStamp(logging.CtxTime(ctx))
	stamped, err := stampItems(kind, items, now)
	if err != nil {
		return nil, err
	}

	newSHA, err := x.clients.Contents().Put(ctx, token, kind.Path(), stamped, sha, contentCommitMessage(kind))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save content", goerr.V("kind", kind))
	}
	return &model.ContentFile{Items: stamped, SHA: newSHA}, nil
}

// normalizeItems validates the stored payload is a JSON array and applies
// per-kind migrations.
func normalizeItems(kind types.ContentKind, raw []byte) (json.RawMessage, error) {
	if kind == types.ContentVideos {
		var videos []model.Video
		if err := json.Unmarshal(raw, &videos); err != nil {
			return nil, goerr.Wrap(types.ErrInvalidContent, "stored videos are not valid JSON", goerr.V("cause", err.Error()))
		}
		for i := range videos {
			videos[i].Normalize()
		}
		return prettyJSON(videos)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, goerr.Wrap(types.ErrInvalidContent, "stored content is not a JSON array",
			goerr.V("kind", kind), goerr.V("cause", err.Error()))
	}
	return raw, nil
}

// stampItems fills missing IDs and timestamps per content kind and
// renders the canonical pretty form that gets committed.
func stampItems(kind types.ContentKind, items json.RawMessage, now string) (json.RawMessage, error) {
	switch kind {
	case types.ContentProjects:
		return stampSlice(items, now, func(p *model.Project, now string) {
			stampMeta(&p.ID, &p.CreatedAt, &p.UpdatedAt, now)
		})
	case types.ContentBlogs:
		return stampSlice(items, now, func(b *model.Blog, now string) {
			stampMeta(&b.ID, &b.CreatedAt, &b.UpdatedAt, now)
		})
	case types.ContentPosts:
		return stampSlice(items, now, func(p *model.Post, now string) {
			stampMeta(&p.ID, &p.CreatedAt, &p.UpdatedAt, now)
		})
	case types.ContentVideos:
		return stampSlice(items, now, func(v *model.Video, now string) {
			stampMeta(&v.ID, &v.CreatedAt, &v.UpdatedAt, now)
			v.Normalize()
		})
	default:
		return nil, goerr.Wrap(types.ErrInvalidContent, "unknown content kind", goerr.V("kind", kind))
	}
}

func stampSlice[T any](items json.RawMessage, now string, fill func(*T, string)) (json.RawMessage, error) {
	var list []T
	if err := json.Unmarshal(items, &list); err != nil {
		return nil, goerr.Wrap(types.ErrInvalidContent, "content payload is not a valid array", goerr.V("cause", err.Error()))
	}
	if list == nil {
		list = []T{}
	}
	for i := range list {
		fill(&list[i], now)
	}
	return prettyJSON(list)
}

func stampMeta(id, createdAt, updatedAt *string, now string) {
	if *id == "" {
		*id = model.NewContentID()
	}
	if *createdAt == "" {
		*createdAt = now
	}
	if *updatedAt == "" {
		*updatedAt = now
	}
}
