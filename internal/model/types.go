// Package model holds the data types shared across the migration tool:
// upgrade records, task bundle upgrades and their migrations, and the
// package files they target.
package model

import "fmt"

// UpgradeInput is one upgrade record as provided by the caller (already
// validated and filtered upstream: tekton-bundle depType, trusted image-org
// prefix on depName, digest format checked).
type UpgradeInput struct {
	DepName        string   `json:"depName"`
	CurrentValue   string   `json:"currentValue"`
	CurrentDigest  string   `json:"currentDigest"`
	NewValue       string   `json:"newValue"`
	NewDigest      string   `json:"newDigest"`
	DepTypes       []string `json:"depTypes"`
	PackageFile    string   `json:"packageFile"`
	ParentDir      string   `json:"parentDir"`
}

// TaskBundleMigration is a single migration script attached to a task
// bundle, keyed by the bundle's full image reference (tag and digest).
// Immutable once produced.
type TaskBundleMigration struct {
	TaskBundleRef string
	ScriptText    string
}

// TaskBundleUpgrade is one dependency upgrade for a task bundle image.
// Identity is CurrentBundleRef(); two input records that resolve to the
// same identity key are the same entity and share one instance.
type TaskBundleUpgrade struct {
	DepName       string
	CurrentValue  string
	CurrentDigest string
	NewValue      string
	NewDigest     string

	// Migrations is populated by a Resolver strategy, ordered oldest-first
	// (apply order) once resolution completes.
	Migrations []TaskBundleMigration
}

// NewTaskBundleUpgrade builds a TaskBundleUpgrade from a validated input
// record.
func NewTaskBundleUpgrade(in UpgradeInput) *TaskBundleUpgrade {
	return &TaskBundleUpgrade{
		DepName:       in.DepName,
		CurrentValue:  in.CurrentValue,
		CurrentDigest: in.CurrentDigest,
		NewValue:      in.NewValue,
		NewDigest:     in.NewDigest,
	}
}

// CurrentBundleRef is the dedup identity key: depName:currentValue@currentDigest.
func (u *TaskBundleUpgrade) CurrentBundleRef() string {
	return fmt.Sprintf("%s:%s@%s", u.DepName, u.CurrentValue, u.CurrentDigest)
}

// NewBundleRef is the image reference of the upgrade's target bundle.
func (u *TaskBundleUpgrade) NewBundleRef() string {
	return fmt.Sprintf("%s:%s@%s", u.DepName, u.NewValue, u.NewDigest)
}

// PackageFile groups the upgrades that target one pipeline YAML file.
type PackageFile struct {
	FilePath  string
	ParentDir string
	Upgrades  []*TaskBundleUpgrade
}

// QuayTagInfo is a tag as reported by the registry's tag-listing endpoint.
type QuayTagInfo struct {
	Name           string
	ManifestDigest string
	StartTS        int64
}
