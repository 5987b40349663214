package resolver

import (
	"context"

	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
	"github.com/konflux-ci/pipeline-migration-tool/internal/registry"
)

// SimpleIteration is the linear-scan strategy: every tag in the range is
// inspected for a has-migration annotation.
type SimpleIteration struct{}

func (SimpleIteration) ResolveMigrations(ctx context.Context, client RegistryClient, repo registry.Container, tagsNewestFirst []model.QuayTagInfo) ([]model.TaskBundleMigration, error) {
	var out []model.TaskBundleMigration

	for _, tag := range tagsNewestFirst {
		_, has, err := hasMigrationAnnotation(ctx, client, repo, tag.ManifestDigest)
		if err != nil {
			return nil, err
		}
		if !has {
			continue
		}
		m, ok, err := migrationFor(ctx, client, repo, tag)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}

	return out, nil
}
