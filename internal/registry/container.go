// Package registry is a read-only facade over the OCI Distribution API:
// manifests, blobs, and referrers, each mediated by a content-addressed
// cache, plus paginated tag listing.
package registry

import (
	"fmt"
	"strings"

	"github.com/konflux-ci/pipeline-migration-tool/internal/errs"
)

// Container identifies an image in a registry: registry host, namespace,
// repository, and optionally a tag and/or digest.
type Container struct {
	Registry  string
	Namespace string
	Repo      string
	Tag       string
	Digest    string
}

// ParseContainer parses a reference of the form
// "registry/namespace/repo[:tag][@digest]" into a Container. A bare
// "namespace/repo" (no registry host with a dot or port) is not supported;
// callers always pass a fully qualified image reference.
func ParseContainer(ref string) (Container, error) {
	withoutDigest, digest, _ := strings.Cut(ref, "@")
	hostAndPath, tag, hasTag := strings.Cut(withoutDigest, ":")

	// Guard against ":" belonging to a port in the registry host rather than
	// a tag separator, e.g. "localhost:5000/repo".
	if hasTag && strings.Contains(tag, "/") {
		hostAndPath = withoutDigest
		tag = ""
		hasTag = false
	}

	parts := strings.SplitN(hostAndPath, "/", 2)
	if len(parts) != 2 {
		return Container{}, errs.BadReference("reference %q is missing a registry host", ref)
	}
	registryHost := parts[0]
	namespaceAndRepo := parts[1]

	nsParts := strings.Split(namespaceAndRepo, "/")
	if len(nsParts) < 2 {
		return Container{}, errs.BadReference("reference %q is missing a namespace", ref)
	}
	repo := nsParts[len(nsParts)-1]
	namespace := strings.Join(nsParts[:len(nsParts)-1], "/")

	c := Container{
		Registry:  registryHost,
		Namespace: namespace,
		Repo:      repo,
		Digest:    digest,
	}
	if hasTag {
		c.Tag = tag
	}
	return c, nil
}

// Repository is "namespace/repo", as used in distribution API paths.
func (c Container) Repository() string {
	return c.Namespace + "/" + c.Repo
}

// URIWithTag is the image reference including tag and digest, used as a
// TaskBundleMigration.TaskBundleRef.
func (c Container) URIWithTag() string {
	ref := fmt.Sprintf("%s/%s:%s", c.Registry, c.Repository(), c.Tag)
	if c.Digest != "" {
		ref += "@" + c.Digest
	}
	return ref
}

// WithDigest returns a copy of c with Digest set, used when resolving a tag
// to a manifest digest.
func (c Container) WithDigest(digest string) Container {
	c.Digest = digest
	return c
}

// WithTag returns a copy of c with Tag set.
func (c Container) WithTag(tag string) Container {
	c.Tag = tag
	return c
}

// cacheKey builds the facade's content-addressed cache key, matching
// spec.md §4.2 exactly: "<kind>-<namespace>-<repo>-<digest>".
func cacheKey(kind string, c Container, digest string) string {
	return fmt.Sprintf("%s-%s-%s-%s", kind, c.Namespace, c.Repo, digest)
}
