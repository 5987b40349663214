package registry

import (
	"context"

	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
)

// ReferrerDescriptor is the subset of an OCI referrer descriptor callers
// outside this package need: its digest and annotations.
type ReferrerDescriptor struct {
	Digest      string
	Annotations map[string]string
}

// ListReferrersFiltered lists referrers of ct filtered to those whose
// value for annotationKey is truthy ("true", case-insensitive).
func (c *Client) ListReferrersFiltered(ctx context.Context, ct Container, artifactType, annotationKey string) ([]ReferrerDescriptor, error) {
	index, err := c.ListReferrers(ctx, ct, artifactType)
	if err != nil {
		return nil, err
	}

	var out []ReferrerDescriptor
	for _, d := range index.Manifests {
		if model.IsTruthy(d.Annotations[annotationKey]) {
			out = append(out, ReferrerDescriptor{Digest: string(d.Digest), Annotations: d.Annotations})
		}
	}
	return out, nil
}

// GetManifestLayerDigests fetches ct's manifest and returns its layer
// digests as strings.
func (c *Client) GetManifestLayerDigests(ctx context.Context, ct Container) ([]string, error) {
	data, err := c.GetManifest(ctx, ct)
	if err != nil {
		return nil, err
	}
	layers, err := ManifestLayers(data)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = string(l.Digest)
	}
	return out, nil
}
