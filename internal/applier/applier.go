// Package applier implements the Migration Applier: it runs a package
// file's ordered migration scripts against its pipeline YAML, handling both
// plain Pipeline documents and PipelineRun documents whose pipeline is
// embedded under spec.pipelineSpec.
package applier

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
	"github.com/konflux-ci/pipeline-migration-tool/internal/logging"
	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
	"github.com/konflux-ci/pipeline-migration-tool/internal/pipelinefile"
	"github.com/konflux-ci/pipeline-migration-tool/internal/yamlstyle"
)

// Recorder logs a migration application attempt, independent of how it is
// persisted. *storage.Store satisfies this interface.
type Recorder interface {
	RecordApplication(ctx context.Context, taskBundleRef, packageFile string, succeeded bool, output string) error
}

// Applier applies every migration attached to a package file's upgrades, in
// order, to the target pipeline YAML. Satisfies manager.Applier.
type Applier struct {
	Recorder Recorder // optional; nil disables audit logging
}

// New builds an Applier. recorder may be nil to disable audit logging.
func New(recorder Recorder) *Applier {
	return &Applier{Recorder: recorder}
}

// Apply applies all migrations for pkg, dispatching on the document's
// Pipeline vs PipelineRun shape.
func (a *Applier) Apply(ctx context.Context, pkg *model.PackageFile) error {
	op := pipelinefile.Operation{Handler: &handler{ctx: ctx, pkg: pkg, recorder: a.Recorder}}
	return op.Run(pkg.FilePath)
}

// handler implements pipelinefile.Handler, closing over the migrations to
// apply and the request context.
type handler struct {
	ctx      context.Context
	pkg      *model.PackageFile
	recorder Recorder
}

func (h *handler) HandlePipelineFile(filePath string, _ map[string]any, style yamlstyle.Style) error {
	origChecksum, err := yamlstyle.FileChecksum(filePath)
	if err != nil {
		return err
	}

	if err := applyMigrations(h.ctx, h.pkg, filePath, h.recorder); err != nil {
		return err
	}

	newChecksum, err := yamlstyle.FileChecksum(filePath)
	if err != nil {
		return err
	}
	if newChecksum == origChecksum {
		return nil
	}

	// The migration scripts invoke yq, which re-indents block sequences to
	// its own taste; this round trip restores the original style.
	doc, _, err := yamlstyle.LoadFile(filePath)
	if err != nil {
		return err
	}
	return yamlstyle.DumpFile(filePath, doc, style)
}

func (h *handler) HandlePipelineRunFile(filePath string, doc map[string]any, style yamlstyle.Style) error {
	spec, ok := doc["spec"].(map[string]any)
	if !ok {
		return errs.MissingPipelineFile("pipeline-run file %s has no spec", filePath)
	}
	pipelineSpec, ok := spec["pipelineSpec"]
	if !ok {
		return errs.MissingPipelineFile("pipeline-run file %s has no spec.pipelineSpec", filePath)
	}

	scratch, err := os.CreateTemp("", "*-pipeline.yaml")
	if err != nil {
		return err
	}
	scratchPath := scratch.Name()
	scratch.Close()
	defer os.Remove(scratchPath)

	if err := yamlstyle.DumpFile(scratchPath, map[string]any{"spec": pipelineSpec}, style); err != nil {
		return err
	}

	origChecksum, err := yamlstyle.FileChecksum(scratchPath)
	if err != nil {
		return err
	}

	if err := applyMigrations(h.ctx, h.pkg, scratchPath, h.recorder); err != nil {
		return err
	}

	newChecksum, err := yamlstyle.FileChecksum(scratchPath)
	if err != nil {
		return err
	}
	if newChecksum == origChecksum {
		return nil
	}

	modified, _, err := yamlstyle.LoadFile(scratchPath)
	if err != nil {
		return err
	}
	modifiedSpec, ok := modified["spec"]
	if !ok {
		return errs.MigrationFailed("migration of %s produced a scratch file without a spec", filePath)
	}
	spec["pipelineSpec"] = modifiedSpec
	return yamlstyle.DumpFile(filePath, doc, style)
}

// applyMigrations runs every migration script for pkg's upgrades, in
// order, against targetPath. A single scratch file is reused across
// iterations, truncated before each rewrite so stale bytes never leak.
func applyMigrations(ctx context.Context, pkg *model.PackageFile, targetPath string, recorder Recorder) error {
	scratch, err := os.CreateTemp("", "*-migration-script")
	if err != nil {
		return err
	}
	scratchPath := scratch.Name()
	defer func() {
		scratch.Close()
		os.Remove(scratchPath)
	}()

	for _, upgrade := range pkg.Upgrades {
		for _, migration := range upgrade.Migrations {
			logging.InfoContext(ctx, "applying migration of task bundle %s in %s", migration.TaskBundleRef, targetPath)

			content := []byte(migration.ScriptText)
			if err := scratch.Truncate(0); err != nil {
				return err
			}
			if _, err := scratch.WriteAt(content, 0); err != nil {
				return err
			}

			cmd := exec.CommandContext(ctx, "bash", scratchPath, targetPath)
			output, err := cmd.CombinedOutput()
			if err != nil {
				recordIfSet(ctx, recorder, migration.TaskBundleRef, pkg.FilePath, false, string(output))
				if exitErr, ok := err.(*exec.ExitError); ok {
					return errs.MigrationFailed("migration of %s exited with code %d: %s",
						migration.TaskBundleRef, exitErr.ExitCode(), string(output))
				}
				return fmt.Errorf("running migration script for %s: %w", migration.TaskBundleRef, err)
			}
			recordIfSet(ctx, recorder, migration.TaskBundleRef, pkg.FilePath, true, string(output))
		}
	}

	return nil
}

// recordIfSet logs an application attempt if a recorder is configured,
// swallowing its own errors — audit logging must never fail a migration.
func recordIfSet(ctx context.Context, recorder Recorder, taskBundleRef, packageFile string, succeeded bool, output string) {
	if recorder == nil {
		return
	}
	if err := recorder.RecordApplication(ctx, taskBundleRef, packageFile, succeeded, output); err != nil {
		logging.WarnContext(ctx, "failed to record migration application history: %v", err)
	}
}
