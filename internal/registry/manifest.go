package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
)

const manifestAcceptHeader = ocispec.MediaTypeImageManifest + ", " +
	ocispec.MediaTypeImageIndex + ", application/vnd.docker.distribution.manifest.v2+json"

// GetManifest fetches the manifest for ct (which must carry a digest) as
// raw JSON bytes, cache-mediated under "manifest-<ns>-<repo>-<digest>".
func (c *Client) GetManifest(ctx context.Context, ct Container) ([]byte, error) {
	if ct.Digest == "" {
		return nil, errs.BadReference("GetManifest requires a digest on %s/%s", ct.Namespace, ct.Repo)
	}

	key := cacheKey("manifest", ct, ct.Digest)
	return c.cache.GetOrSet(key, func() ([]byte, error) {
		url := fmt.Sprintf("%s/manifests/%s", c.baseURL(ct), ct.Digest)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", manifestAcceptHeader)

		resp, err := c.doAuthed(ctx, req, ct.Repository())
		if err != nil {
			return nil, errs.Registry("fetching manifest %s: %v", ct.Digest, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, errs.Registry("fetching manifest %s: status %d", ct.Digest, resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errs.Registry("reading manifest %s: %v", ct.Digest, err)
		}

		c.log.DebugContext(ctx, "fetched manifest %s/%s@%s (%d bytes)", ct.Namespace, ct.Repo, ct.Digest, len(data))
		return data, nil
	})
}

// ManifestAnnotations decodes the manifest's top-level annotations map.
func ManifestAnnotations(data []byte) (map[string]string, error) {
	var m ocispec.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return m.Annotations, nil
}

// ManifestLayers decodes the manifest's layer descriptors.
func ManifestLayers(data []byte) ([]ocispec.Descriptor, error) {
	var m ocispec.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return m.Layers, nil
}
