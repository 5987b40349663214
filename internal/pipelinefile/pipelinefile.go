// Package pipelinefile dispatches migration handling based on the shape of
// a Tekton YAML document: a Pipeline document is handled directly, while a
// PipelineRun document embeds the pipeline under spec.pipelineSpec and is
// handled via a scratch copy of just that sub-document.
package pipelinefile

import "github.com/konflux-ci/pipeline-migration-tool/internal/yamlstyle"

// Handler implements the two document shapes an Operation dispatches to.
// Mirrors the PipelineFileOperation template referenced (but not defined)
// by the original tool's actions/migrate.py.
type Handler interface {
	HandlePipelineFile(filePath string, doc map[string]any, style yamlstyle.Style) error
	HandlePipelineRunFile(filePath string, doc map[string]any, style yamlstyle.Style) error
}

// Operation loads a pipeline file, determines its document shape, and
// dispatches to the matching Handler method.
type Operation struct {
	Handler Handler
}

// Run loads filePath and dispatches it to the handler.
func (op Operation) Run(filePath string) error {
	doc, style, err := yamlstyle.LoadFile(filePath)
	if err != nil {
		return err
	}

	if IsPipelineRun(doc) {
		return op.Handler.HandlePipelineRunFile(filePath, doc, style)
	}
	return op.Handler.HandlePipelineFile(filePath, doc, style)
}

// IsPipelineRun reports whether doc embeds a pipeline spec under
// spec.pipelineSpec, the PipelineRun document shape.
func IsPipelineRun(doc map[string]any) bool {
	spec, ok := doc["spec"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = spec["pipelineSpec"]
	return ok
}
