package applier

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
)

type fakeRecorder struct {
	calls []string
}

func (f *fakeRecorder) RecordApplication(_ context.Context, taskBundleRef, packageFile string, succeeded bool, _ string) error {
	f.calls = append(f.calls, taskBundleRef+"|"+packageFile+"|"+boolStr(succeeded))
	return nil
}

func boolStr(b bool) string {
	if b {
		return "ok"
	}
	return "fail"
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}
	return path
}

func TestApplyPipelineFileRunsScriptAndNormalizesStyle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pipeline.yaml", "apiVersion: tekton.dev/v1\nkind: Pipeline\nspec:\n  params:\n  - name: git-url\n")

	script := `#!/bin/bash
sed -i 's/git-url/git-url-v2/' "$1"
`
	pkg := &model.PackageFile{
		FilePath: path,
		Upgrades: []*model.TaskBundleUpgrade{
			{Migrations: []model.TaskBundleMigration{{TaskBundleRef: "quay.io/konflux-ci/foo:0.2@sha256:bbbb", ScriptText: script}}},
		},
	}

	if err := New(nil).Apply(context.Background(), pkg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "git-url-v2") {
		t.Errorf("file content = %q, want it to contain git-url-v2", string(data))
	}
}

func TestApplyPipelineRunFileRewritesEmbeddedSpec(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pipelinerun.yaml", "apiVersion: tekton.dev/v1\nkind: PipelineRun\nspec:\n  pipelineSpec:\n    params:\n    - name: git-url\n")

	script := `#!/bin/bash
sed -i 's/git-url/git-url-v2/' "$1"
`
	pkg := &model.PackageFile{
		FilePath: path,
		Upgrades: []*model.TaskBundleUpgrade{
			{Migrations: []model.TaskBundleMigration{{TaskBundleRef: "quay.io/konflux-ci/foo:0.2@sha256:bbbb", ScriptText: script}}},
		},
	}

	if err := New(nil).Apply(context.Background(), pkg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "git-url-v2") {
		t.Errorf("file content = %q, want it to contain git-url-v2", string(data))
	}
	if !strings.Contains(string(data), "pipelineSpec") {
		t.Errorf("file content = %q, want the pipelineSpec wrapper preserved", string(data))
	}
}

func TestApplyFailsOnNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pipeline.yaml", "apiVersion: tekton.dev/v1\nkind: Pipeline\nspec:\n  params: []\n")

	pkg := &model.PackageFile{
		FilePath: path,
		Upgrades: []*model.TaskBundleUpgrade{
			{Migrations: []model.TaskBundleMigration{{TaskBundleRef: "quay.io/konflux-ci/foo:0.2@sha256:bbbb", ScriptText: "#!/bin/bash\nexit 1\n"}}},
		},
	}

	if err := New(nil).Apply(context.Background(), pkg); err == nil {
		t.Fatalf("Apply() error = nil, want non-nil")
	}
}

func TestApplyRecordsHistoryOnSuccessAndFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pipeline.yaml", "apiVersion: tekton.dev/v1\nkind: Pipeline\nspec:\n  params: []\n")

	rec := &fakeRecorder{}
	pkg := &model.PackageFile{
		FilePath: path,
		Upgrades: []*model.TaskBundleUpgrade{
			{Migrations: []model.TaskBundleMigration{
				{TaskBundleRef: "quay.io/konflux-ci/foo:0.2@sha256:bbbb", ScriptText: "#!/bin/bash\nexit 0\n"},
				{TaskBundleRef: "quay.io/konflux-ci/foo:0.3@sha256:cccc", ScriptText: "#!/bin/bash\nexit 1\n"},
			}},
		},
	}

	if err := New(rec).Apply(context.Background(), pkg); err == nil {
		t.Fatalf("Apply() error = nil, want non-nil")
	}
	if len(rec.calls) != 2 || !strings.HasSuffix(rec.calls[0], "|ok") || !strings.HasSuffix(rec.calls[1], "|fail") {
		t.Errorf("recorder calls = %v, want one succeeded then one failed record", rec.calls)
	}
}

