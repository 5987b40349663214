package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
)

// ListReferrers returns the OCI image index of referrers for ct (which
// must carry a digest), optionally filtered server-side by artifactType.
// Cache-mediated under "referrers-<ns>-<repo>-<digest>" — the cache key
// does not vary by artifactType, matching spec.md §4.2, so a later call for
// the same digest with a different artifactType returns the cached index.
func (c *Client) ListReferrers(ctx context.Context, ct Container, artifactType string) (ocispec.Index, error) {
	if ct.Digest == "" {
		return ocispec.Index{}, errs.BadReference("ListReferrers requires a digest on %s/%s", ct.Namespace, ct.Repo)
	}

	key := cacheKey("referrers", ct, ct.Digest)
	data, err := c.cache.GetOrSet(key, func() ([]byte, error) {
		u := fmt.Sprintf("%s/referrers/%s", c.baseURL(ct), ct.Digest)
		if artifactType != "" {
			u += "?artifactType=" + url.QueryEscape(artifactType)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", ocispec.MediaTypeImageIndex)

		resp, err := c.doAuthed(ctx, req, ct.Repository())
		if err != nil {
			return nil, errs.Registry("listing referrers for %s: %v", ct.Digest, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, errs.Registry("listing referrers for %s: status %d", ct.Digest, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errs.Registry("reading referrers index for %s: %v", ct.Digest, err)
		}
		return body, nil
	})
	if err != nil {
		return ocispec.Index{}, err
	}

	var idx ocispec.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return ocispec.Index{}, fmt.Errorf("decoding referrers index: %w", err)
	}
	return idx, nil
}
