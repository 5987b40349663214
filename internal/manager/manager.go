// Package manager implements the Upgrades Manager: deduplicating input
// upgrades, grouping them by target pipeline file, and dispatching
// resolution and application.
package manager

import (
	"context"
	"os"

	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
	"github.com/konflux-ci/pipeline-migration-tool/internal/logging"
	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
	"github.com/konflux-ci/pipeline-migration-tool/internal/resolver"
)

// Applier applies every migration attached to a package file's upgrades.
type Applier interface {
	Apply(ctx context.Context, pkg *model.PackageFile) error
}

// Manager deduplicates upgrades by CurrentBundleRef and groups them into
// PackageFiles, then drives resolution and application over that set.
type Manager struct {
	client         resolver.RegistryClient
	strategy       resolver.Strategy
	maxConcurrency int

	upgrades     map[string]*model.TaskBundleUpgrade
	packageFiles map[string]*model.PackageFile
	order        []string // packageFile keys in first-seen order, for deterministic application
}

// New builds a Manager from validated upgrade inputs.
func New(inputs []model.UpgradeInput, client resolver.RegistryClient, strategy resolver.Strategy, maxConcurrency int) *Manager {
	m := &Manager{
		client:         client,
		strategy:       strategy,
		maxConcurrency: maxConcurrency,
		upgrades:       make(map[string]*model.TaskBundleUpgrade),
		packageFiles:   make(map[string]*model.PackageFile),
	}

	for _, in := range inputs {
		upgrade := model.NewTaskBundleUpgrade(in)
		key := upgrade.CurrentBundleRef()

		existing, ok := m.upgrades[key]
		if ok {
			upgrade = existing
		} else {
			m.upgrades[key] = upgrade
		}

		pf, ok := m.packageFiles[in.PackageFile]
		if !ok {
			pf = &model.PackageFile{FilePath: in.PackageFile, ParentDir: in.ParentDir}
			m.packageFiles[in.PackageFile] = pf
			m.order = append(m.order, in.PackageFile)
		}
		pf.Upgrades = append(pf.Upgrades, upgrade)
	}

	return m
}

// Upgrades returns the deduplicated upgrade set, for resolution.
func (m *Manager) Upgrades() []*model.TaskBundleUpgrade {
	out := make([]*model.TaskBundleUpgrade, 0, len(m.upgrades))
	for _, u := range m.upgrades {
		out = append(out, u)
	}
	return out
}

// ResolveMigrations resolves migrations for every deduplicated upgrade
// concurrently via the configured strategy.
func (m *Manager) ResolveMigrations(ctx context.Context) error {
	return resolver.Resolve(ctx, m.client, m.strategy, m.Upgrades(), m.maxConcurrency)
}

// ApplyMigrations applies migrations to every package file in turn,
// sequentially. Fails with MissingPipelineFile if a file path does not
// exist.
func (m *Manager) ApplyMigrations(ctx context.Context, applier Applier) error {
	for _, key := range m.order {
		pf := m.packageFiles[key]

		if _, err := os.Stat(pf.FilePath); err != nil {
			return errs.MissingPipelineFile("package file %s: %v", pf.FilePath, err)
		}

		logging.InfoContext(ctx, "applying migrations to %s", pf.FilePath)
		if err := applier.Apply(ctx, pf); err != nil {
			return err
		}
	}
	return nil
}
