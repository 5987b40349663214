package model

import "strings"

// Annotation keys read from task bundle manifests and migration referrer
// descriptors.
const (
	AnnotationHasMigration           = "dev.konflux-ci.task.has-migration"
	AnnotationIsMigration            = "dev.konflux-ci.task.is-migration"
	AnnotationPreviousMigrationBundle = "dev.konflux-ci.task.previous-migration-bundle"
)

// MigrationArtifactType is the OCI artifact type of a migration referrer.
const MigrationArtifactType = "text/x-shellscript"

// IsTruthy matches the registry's case-insensitive boolean annotation
// convention: "true" in any case is true, everything else (including
// absent) is false.
func IsTruthy(value string) bool {
	return strings.EqualFold(value, "true")
}
