package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
)

// GetArtifact fetches a blob identified by blobDigest as a UTF-8 string,
// cache-mediated under "blob-<ns>-<repo>-<blobDigest>".
func (c *Client) GetArtifact(ctx context.Context, ct Container, blobDigest string) (string, error) {
	if blobDigest == "" {
		return "", errs.BadReference("GetArtifact requires a blob digest on %s/%s", ct.Namespace, ct.Repo)
	}

	key := cacheKey("blob", ct, blobDigest)
	data, err := c.cache.GetOrSet(key, func() ([]byte, error) {
		url := fmt.Sprintf("%s/blobs/%s", c.baseURL(ct), blobDigest)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.doAuthed(ctx, req, ct.Repository())
		if err != nil {
			return nil, errs.Registry("fetching blob %s: %v", blobDigest, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, errs.Registry("fetching blob %s: status %d", blobDigest, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errs.Registry("reading blob %s: %v", blobDigest, err)
		}
		return body, nil
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
