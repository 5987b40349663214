package rangeresolver

import (
	"context"
	"sort"

	"github.com/konflux-ci/pipeline-migration-tool/internal/logging"
	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
	"github.com/konflux-ci/pipeline-migration-tool/internal/registry"
)

// TagLister lists active tags by name prefix; satisfied by
// *registry.Client in production and a fake in tests.
type TagLister interface {
	ListActiveRepoTags(ctx context.Context, ct registry.Container, namePrefix string) ([]model.QuayTagInfo, error)
}

// DetermineRange computes the ordered upgrade range for one upgrade,
// newest-first, bounded as (new inclusive, current exclusive] in the
// normal case. Returns an empty slice (not an error) if either digest is
// not found among the listed tags — spec.md §4.3 step 7/8.
func DetermineRange(ctx context.Context, lister TagLister, repo registry.Container, upgrade *model.TaskBundleUpgrade) ([]model.QuayTagInfo, error) {
	versions, err := ExpandVersions(upgrade.CurrentValue, upgrade.NewValue)
	if err != nil {
		return nil, err
	}

	var tags []model.QuayTagInfo
	for _, v := range versions {
		listed, err := lister.ListActiveRepoTags(ctx, repo, v+"-")
		if err != nil {
			return nil, err
		}
		tags = append(tags, listed...)
	}

	var pinned []model.QuayTagInfo
	for _, t := range tags {
		if isVersionPinnedTag(t.Name) {
			pinned = append(pinned, t)
		}
	}

	sortNewestFirst(pinned)

	kept, currentTag, newTag, isOutOfOrder := dropOutOfOrderVersions(pinned, upgrade.CurrentDigest, upgrade.NewDigest)

	sortNewestFirst(kept)

	if currentTag == nil || newTag == nil {
		logging.WarnContext(ctx, "unresolvable upgrade range for %s: current=%v new=%v not found among listed tags",
			upgrade.DepName, upgrade.CurrentDigest, upgrade.NewDigest)
		return nil, nil
	}

	currentPos, newPos := -1, -1
	for i, t := range kept {
		if t.ManifestDigest == currentTag.ManifestDigest && t.Name == currentTag.Name {
			currentPos = i
		}
		if t.ManifestDigest == newTag.ManifestDigest && t.Name == newTag.Name {
			newPos = i
		}
	}
	if newPos == -1 {
		// newTag survived pruning detection but was itself pruned from kept
		// (can't happen given dropOutOfOrderVersions semantics, but guard
		// defensively rather than index out of range).
		return nil, nil
	}

	if isOutOfOrder || currentPos == -1 {
		return kept[newPos:], nil
	}
	return kept[newPos:currentPos], nil
}

// sortNewestFirst sorts tags by StartTS descending, preserving relative
// order of equal timestamps (stable sort).
func sortNewestFirst(tags []model.QuayTagInfo) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].StartTS > tags[j].StartTS
	})
}

// dropOutOfOrderVersions implements spec.md §4.3 step 5: walk the
// newest-first list in reverse (oldest-first), tracking the highest
// version seen so far. A tag whose version is >= the watermark is kept and
// advances it; otherwise it is a back-port build and is dropped.
//
// Also locates the current/new tag infos (even if the current one ends up
// pruned) and whether the current tag's version was already behind the
// watermark when first encountered.
func dropOutOfOrderVersions(tagsNewestFirst []model.QuayTagInfo, currentDigest, newDigest string) (kept []model.QuayTagInfo, currentTag, newTag *model.QuayTagInfo, isOutOfOrder bool) {
	var highestSeen *string // tag name of the highest version watermark

	for i := len(tagsNewestFirst) - 1; i >= 0; i-- {
		t := tagsNewestFirst[i]

		if t.ManifestDigest == currentDigest && currentTag == nil {
			ct := t
			currentTag = &ct
			if highestSeen != nil && compareTagVersions(tagVersionPart(t.Name), tagVersionPart(*highestSeen)) < 0 {
				isOutOfOrder = true
			}
		} else if t.ManifestDigest == newDigest && newTag == nil {
			nt := t
			newTag = &nt
		}

		if highestSeen == nil || compareTagVersions(tagVersionPart(t.Name), tagVersionPart(*highestSeen)) >= 0 {
			kept = append(kept, t)
			name := t.Name
			highestSeen = &name
		}
	}

	return kept, currentTag, newTag, isOutOfOrder
}
