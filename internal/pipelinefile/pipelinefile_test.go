package pipelinefile

import "testing"

func TestIsPipelineRunDetectsEmbeddedSpec(t *testing.T) {
	doc := map[string]any{
		"kind": "PipelineRun",
		"spec": map[string]any{
			"pipelineSpec": map[string]any{"tasks": []any{}},
		},
	}
	if !IsPipelineRun(doc) {
		t.Errorf("IsPipelineRun() = false, want true")
	}
}

func TestIsPipelineRunFalseForPlainPipeline(t *testing.T) {
	doc := map[string]any{
		"kind": "Pipeline",
		"spec": map[string]any{"tasks": []any{}},
	}
	if IsPipelineRun(doc) {
		t.Errorf("IsPipelineRun() = true, want false")
	}
}

func TestIsPipelineRunFalseWhenSpecMissing(t *testing.T) {
	doc := map[string]any{"kind": "Pipeline"}
	if IsPipelineRun(doc) {
		t.Errorf("IsPipelineRun() = true, want false")
	}
}
