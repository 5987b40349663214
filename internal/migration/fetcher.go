// Package migration fetches the migration script (if any) attached to a
// task bundle via the registry's referrers API.
package migration

import (
	"context"

	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
	"github.com/konflux-ci/pipeline-migration-tool/internal/registry"
)

// Client is the subset of *registry.Client this fetcher needs; narrowed
// to an interface so tests can fake it.
type Client interface {
	ListReferrersFiltered(ctx context.Context, ct registry.Container, artifactType string, annotation string) ([]registry.ReferrerDescriptor, error)
	GetManifestLayerDigests(ctx context.Context, ct registry.Container) ([]string, error)
	GetArtifact(ctx context.Context, ct registry.Container, blobDigest string) (string, error)
}

// FetchMigrationScript returns the migration script text attached to the
// bundle identified by repo+digest, or ("", false) if none is attached.
// Fails with IncorrectMigrationAttachment if more than one referrer is
// annotated as the migration.
func FetchMigrationScript(ctx context.Context, client Client, repo registry.Container, digest string) (string, bool, error) {
	if repo.Digest != "" {
		return "", false, errs.BadReference("repo reference already carries digest %s, cannot fetch for %s", repo.Digest, digest)
	}

	ct := repo.WithDigest(digest)
	referrers, err := client.ListReferrersFiltered(ctx, ct, model.MigrationArtifactType, model.AnnotationIsMigration)
	if err != nil {
		return "", false, err
	}

	if len(referrers) == 0 {
		return "", false, nil
	}
	if len(referrers) > 1 {
		return "", false, errs.IncorrectMigrationAttachment("bundle %s has %d migration referrers, expected at most 1", ct.URIWithTag(), len(referrers))
	}

	layerDigests, err := client.GetManifestLayerDigests(ctx, repo.WithDigest(referrers[0].Digest))
	if err != nil {
		return "", false, err
	}
	if len(layerDigests) == 0 {
		return "", false, errs.IncorrectMigrationAttachment("migration manifest %s has no layers", referrers[0].Digest)
	}

	script, err := client.GetArtifact(ctx, repo, layerDigests[0])
	if err != nil {
		return "", false, err
	}
	return script, true, nil
}
