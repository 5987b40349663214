// Package resolver implements the two migration-discovery strategies
// (SimpleIteration, LinkedMigrations) and the concurrent outer loop that
// dispatches resolution across a batch of upgrades.
package resolver

import (
	"context"

	"github.com/konflux-ci/pipeline-migration-tool/internal/migration"
	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
	"github.com/konflux-ci/pipeline-migration-tool/internal/rangeresolver"
	"github.com/konflux-ci/pipeline-migration-tool/internal/registry"
)

// RegistryClient is the subset of *registry.Client the resolver package
// needs: manifest/annotation access, migration fetching, and tag listing.
type RegistryClient interface {
	GetManifest(ctx context.Context, ct registry.Container) ([]byte, error)
	migration.Client
	rangeresolver.TagLister
}

// Strategy produces the migration sequence for one upgrade's range, in
// newest-first order (the outer Resolve loop reverses it).
type Strategy interface {
	ResolveMigrations(ctx context.Context, client RegistryClient, repo registry.Container, tagsNewestFirst []model.QuayTagInfo) ([]model.TaskBundleMigration, error)
}

func hasMigrationAnnotation(ctx context.Context, client RegistryClient, repo registry.Container, digest string) (map[string]string, bool, error) {
	data, err := client.GetManifest(ctx, repo.WithDigest(digest))
	if err != nil {
		return nil, false, err
	}
	anns, err := registry.ManifestAnnotations(data)
	if err != nil {
		return nil, false, err
	}
	return anns, model.IsTruthy(anns[model.AnnotationHasMigration]), nil
}

func migrationFor(ctx context.Context, client RegistryClient, repo registry.Container, tag model.QuayTagInfo) (model.TaskBundleMigration, bool, error) {
	script, ok, err := migration.FetchMigrationScript(ctx, client, repo, tag.ManifestDigest)
	if err != nil || !ok {
		return model.TaskBundleMigration{}, false, err
	}
	ref := repo.WithDigest(tag.ManifestDigest).WithTag(tag.Name).URIWithTag()
	return model.TaskBundleMigration{TaskBundleRef: ref, ScriptText: script}, true, nil
}
