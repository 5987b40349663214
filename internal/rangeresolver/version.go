// Package rangeresolver computes the ordered upgrade range between two
// bundle digests for one task bundle dependency: version expansion, tag
// listing, version-pinned filtering, and out-of-order pruning.
package rangeresolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blang/semver/v4"

	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
)

// versionTagRe matches version-pinned task bundle tags: "<dotted-version>-<commithash>".
var versionTagRe = regexp.MustCompile(`^[0-9.]+-[0-9a-f]+$`)

// parseMinorVersion parses a "0.<minor>"-style value into a comparable
// semver.Version by zero-padding the missing patch component.
func parseMinorVersion(value string) (semver.Version, error) {
	padded := value
	if strings.Count(value, ".") < 2 {
		padded = value + ".0"
	}
	v, err := semver.Parse(padded)
	if err != nil {
		return semver.Version{}, fmt.Errorf("parsing version %q: %w", value, err)
	}
	return v, nil
}

// ExpandVersions produces the inclusive list of "0.<minor>" version
// strings from currentValue through newValue. Fails with RangeError if
// currentValue is greater than newValue.
func ExpandVersions(currentValue, newValue string) ([]string, error) {
	cur, err := parseMinorVersion(currentValue)
	if err != nil {
		return nil, errs.RangeError("%v", err)
	}
	newer, err := parseMinorVersion(newValue)
	if err != nil {
		return nil, errs.RangeError("%v", err)
	}
	if cur.GT(newer) {
		return nil, errs.RangeError("current version %s is greater than new version %s", currentValue, newValue)
	}

	var out []string
	for minor := cur.Minor; minor <= newer.Minor; minor++ {
		out = append(out, fmt.Sprintf("%d.%d", cur.Major, minor))
	}
	return out, nil
}

// tagVersionPart returns the dotted version prefix of a version-pinned tag
// name, i.e. everything before the last "-".
func tagVersionPart(tagName string) string {
	idx := strings.LastIndex(tagName, "-")
	if idx < 0 {
		return tagName
	}
	return tagName[:idx]
}

// compareTagVersions compares the version parts of two tag names
// numerically, falling back to string comparison on parse failure so
// malformed tags never panic the pruning pass.
func compareTagVersions(a, b string) int {
	va, errA := parseMinorVersion(tagVersionPart(a))
	vb, errB := parseMinorVersion(tagVersionPart(b))
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

func isVersionPinnedTag(name string) bool {
	return versionTagRe.MatchString(name)
}
