package main

import (
	"encoding/json"
	"regexp"

	"github.com/konflux-ci/pipeline-migration-tool/internal/config"
	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
)

var digestPattern = regexp.MustCompile(`^sha256:[0-9a-f]+$`)

// cleanUpgrades decodes a Renovate upgrades JSON string, keeping only
// records for tekton-bundle dependencies under the trusted image-org
// prefix (or any prefix, with PMT_LOCAL_TEST set). Mirrors
// clean_upgrades/comes_from_konflux in the original tool.
func cleanUpgrades(data string) ([]model.UpgradeInput, error) {
	var raw []model.UpgradeInput
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, errs.InvalidUpgradesData("input upgrades is not a valid encoded JSON array: %v", err)
	}

	var cleaned []model.UpgradeInput
	for _, u := range raw {
		if u.DepName == "" {
			return nil, errs.InvalidUpgradesData("upgrade does not have value of field depName")
		}
		if !comesFromKonflux(u.DepName) {
			continue
		}
		if !hasDepType(u.DepTypes, "tekton-bundle") {
			continue
		}
		if u.CurrentValue == "" || u.NewValue == "" || u.PackageFile == "" || u.ParentDir == "" {
			return nil, errs.InvalidUpgradesData("upgrade for %s is missing a required field", u.DepName)
		}
		if !digestPattern.MatchString(u.CurrentDigest) || !digestPattern.MatchString(u.NewDigest) {
			return nil, errs.InvalidUpgradesData("upgrade for %s has a malformed digest", u.DepName)
		}
		cleaned = append(cleaned, u)
	}

	return cleaned, nil
}

func comesFromKonflux(depName string) bool {
	if config.LocalTestMode() {
		return true
	}
	prefix := config.TrustedImageOrgPrefix()
	return len(depName) >= len(prefix) && depName[:len(prefix)] == prefix
}

func hasDepType(depTypes []string, want string) bool {
	for _, t := range depTypes {
		if t == want {
			return true
		}
	}
	return false
}
