package resolver

import (
	"context"

	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
	"github.com/konflux-ci/pipeline-migration-tool/internal/registry"
)

// LinkedMigrations walks the range as a linked list via each manifest's
// previous-migration-bundle annotation, rather than scanning every tag.
type LinkedMigrations struct{}

func (LinkedMigrations) ResolveMigrations(ctx context.Context, client RegistryClient, repo registry.Container, tagsNewestFirst []model.QuayTagInfo) ([]model.TaskBundleMigration, error) {
	if len(tagsNewestFirst) == 0 {
		return nil, nil
	}

	digests := make([]string, len(tagsNewestFirst))
	for i, t := range tagsNewestFirst {
		digests[i] = t.ManifestDigest
	}

	var out []model.TaskBundleMigration
	i := 0

	for {
		tag := tagsNewestFirst[i]
		anns, has, err := hasMigrationAnnotation(ctx, client, repo, tag.ManifestDigest)
		if err != nil {
			return nil, err
		}
		if has {
			m, ok, err := migrationFor(ctx, client, repo, tag)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, m)
			}
		}

		previous := anns[model.AnnotationPreviousMigrationBundle]
		if previous == "" {
			break
		}

		next := indexOf(digests, previous)
		if next == -1 {
			// Link points outside the range: normal termination.
			break
		}
		i = next
	}

	return out, nil
}

func indexOf(haystack []string, needle string) int {
	for i, v := range haystack {
		if v == needle {
			return i
		}
	}
	return -1
}
