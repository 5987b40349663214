package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
	"github.com/konflux-ci/pipeline-migration-tool/internal/rangeresolver"
	"github.com/konflux-ci/pipeline-migration-tool/internal/registry"
)

// Resolve resolves migrations for every upgrade concurrently, bounded by
// maxConcurrency workers. Each upgrade's range is computed via
// rangeresolver.DetermineRange, then handed to strategy; the resulting
// newest-first migration sequence is reversed to oldest-first and stored
// on the upgrade. The first worker error cancels the remaining workers
// (errgroup semantics) and is returned.
func Resolve(ctx context.Context, client RegistryClient, strategy Strategy, upgrades []*model.TaskBundleUpgrade, maxConcurrency int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for _, upgrade := range upgrades {
		upgrade := upgrade
		g.Go(func() error {
			repo, err := registry.ParseContainer(upgrade.DepName)
			if err != nil {
				return err
			}

			tags, err := rangeresolver.DetermineRange(ctx, client, repo, upgrade)
			if err != nil {
				return err
			}

			migrations, err := strategy.ResolveMigrations(ctx, client, repo, tags)
			if err != nil {
				return err
			}

			upgrade.Migrations = reverse(migrations)
			return nil
		})
	}

	return g.Wait()
}

func reverse(in []model.TaskBundleMigration) []model.TaskBundleMigration {
	out := make([]model.TaskBundleMigration, len(in))
	for i, m := range in {
		out[len(in)-1-i] = m
	}
	return out
}
