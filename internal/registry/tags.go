package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
)

// quayTagsResponse mirrors Quay.io's repository tag-listing API response
// shape: a page of tags plus a has_additional cursor flag.
type quayTagsResponse struct {
	Tags          []quayTag `json:"tags"`
	Page          int       `json:"page"`
	HasAdditional bool      `json:"has_additional"`
}

type quayTag struct {
	Name           string `json:"name"`
	ManifestDigest string `json:"manifest_digest"`
	StartTS        int64  `json:"start_ts"`
}

// ListActiveRepoTags lists active tags whose name begins with namePrefix
// (e.g. "0.2-"), newest-first by the registry's own page ordering. Not
// cache-mediated: pagination results depend on registry-side time, so the
// facade always goes to the network.
func (c *Client) ListActiveRepoTags(ctx context.Context, ct Container, namePrefix string) ([]model.QuayTagInfo, error) {
	var all []model.QuayTagInfo
	page := 1

	for {
		u := fmt.Sprintf(
			"%s://%s/api/v1/repository/%s/tag/?onlyActiveTags=true&page=%d&filter_tag_name=like:%s",
			c.scheme(), ct.Registry, ct.Repository(), page, url.QueryEscape(namePrefix),
		)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.doAuthed(ctx, req, ct.Repository())
		if err != nil {
			return nil, errs.Registry("listing tags for %s (prefix %s): %v", ct.Repository(), namePrefix, err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, errs.Registry("listing tags for %s (prefix %s): status %d", ct.Repository(), namePrefix, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, errs.Registry("reading tags response: %v", err)
		}

		var parsed quayTagsResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("decoding tags response: %w", err)
		}

		for _, t := range parsed.Tags {
			all = append(all, model.QuayTagInfo{
				Name:           t.Name,
				ManifestDigest: t.ManifestDigest,
				StartTS:        t.StartTS,
			})
		}

		if !parsed.HasAdditional {
			break
		}
		page++
	}

	return all, nil
}
