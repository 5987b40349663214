package resolver

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/konflux-ci/pipeline-migration-tool/internal/model"
	"github.com/konflux-ci/pipeline-migration-tool/internal/registry"
)

func encodeAnnotations(anns map[string]string) []byte {
	data, _ := json.Marshal(ocispec.Manifest{Annotations: anns})
	return data
}

// fakeClient implements RegistryClient entirely in memory, keyed by digest.
type fakeClient struct {
	manifests map[string]map[string]string // digest -> annotations
	referrers map[string][]registry.ReferrerDescriptor // digest -> referrers
	layers    map[string][]string                      // referrer digest -> layer digests
	blobs     map[string]string                         // blob digest -> text
	tags      map[string][]model.QuayTagInfo            // prefix -> tags
}

func (f *fakeClient) GetManifest(_ context.Context, ct registry.Container) ([]byte, error) {
	return nil, nil // unused directly; annotatedFakeClient below overrides GetManifest to serve annotations
}

func (f *fakeClient) ListActiveRepoTags(_ context.Context, _ registry.Container, namePrefix string) ([]model.QuayTagInfo, error) {
	return f.tags[namePrefix], nil
}

func (f *fakeClient) ListReferrersFiltered(_ context.Context, ct registry.Container, _ string, _ string) ([]registry.ReferrerDescriptor, error) {
	return f.referrers[ct.Digest], nil
}

func (f *fakeClient) GetManifestLayerDigests(_ context.Context, ct registry.Container) ([]string, error) {
	return f.layers[ct.Digest], nil
}

func (f *fakeClient) GetArtifact(_ context.Context, _ registry.Container, blobDigest string) (string, error) {
	return f.blobs[blobDigest], nil
}

// hasMigrationAnnotation calls client.GetManifest then ManifestAnnotations;
// since fakeClient.GetManifest returns nil, override via a dedicated test
// double that implements RegistryClient but intercepts annotation lookups
// through a simpler seam.
type annotatedFakeClient struct {
	*fakeClient
	annotations map[string]map[string]string // digest -> annotations
}

func (f *annotatedFakeClient) GetManifest(_ context.Context, ct registry.Container) ([]byte, error) {
	anns := f.annotations[ct.Digest]
	return encodeAnnotations(anns), nil
}

func TestSimpleIterationHappyPath(t *testing.T) {
	// S1: one tag has-migration, others don't.
	client := &annotatedFakeClient{
		fakeClient: &fakeClient{
			referrers: map[string][]registry.ReferrerDescriptor{
				"sha256:bbbb": {{Digest: "sha256:mig"}},
			},
			layers: map[string][]string{"sha256:mig": {"sha256:layer"}},
			blobs:  map[string]string{"sha256:layer": "echo hi"},
		},
		annotations: map[string]map[string]string{
			"sha256:bbbb": {model.AnnotationHasMigration: "true"},
			"sha256:cccc": {},
			"sha256:aaaa": {},
		},
	}

	repo := registry.Container{Registry: "quay.io", Namespace: "konflux-ci", Repo: "foo"}
	tags := []model.QuayTagInfo{
		{Name: "0.2-bbbb", ManifestDigest: "sha256:bbbb", StartTS: 300},
		{Name: "0.1-cccc", ManifestDigest: "sha256:cccc", StartTS: 200},
		{Name: "0.1-aaaa", ManifestDigest: "sha256:aaaa", StartTS: 100},
	}

	got, err := SimpleIteration{}.ResolveMigrations(context.Background(), client, repo, tags)
	if err != nil {
		t.Fatalf("ResolveMigrations() error = %v", err)
	}
	if len(got) != 1 || got[0].ScriptText != "echo hi" {
		t.Fatalf("ResolveMigrations() = %+v, want single echo-hi migration", got)
	}
	if got[0].TaskBundleRef != "quay.io/konflux-ci/foo:0.2-bbbb@sha256:bbbb" {
		t.Errorf("TaskBundleRef = %q", got[0].TaskBundleRef)
	}
}

func TestLinkedMigrationsSkipsNonMigratingBundles(t *testing.T) {
	// S2: T3 -> previous T1 -> previous T0 (outside range: stop). T3, T1 have scripts.
	client := &annotatedFakeClient{
		fakeClient: &fakeClient{
			referrers: map[string][]registry.ReferrerDescriptor{
				"d3": {{Digest: "m3"}},
				"d1": {{Digest: "m1"}},
			},
			layers: map[string][]string{"m3": {"l3"}, "m1": {"l1"}},
			blobs:  map[string]string{"l3": "script-t3", "l1": "script-t1"},
		},
		annotations: map[string]map[string]string{
			"d3": {model.AnnotationHasMigration: "true", model.AnnotationPreviousMigrationBundle: "d1"},
			"d2": {model.AnnotationPreviousMigrationBundle: "d0-outside-range"},
			"d1": {model.AnnotationHasMigration: "true", model.AnnotationPreviousMigrationBundle: "d0-outside-range"},
		},
	}

	repo := registry.Container{Registry: "quay.io", Namespace: "ns", Repo: "repo"}
	tags := []model.QuayTagInfo{ // newest-first: T3, T2, T1
		{Name: "0.3-t3", ManifestDigest: "d3", StartTS: 300},
		{Name: "0.2-t2", ManifestDigest: "d2", StartTS: 200},
		{Name: "0.1-t1", ManifestDigest: "d1", StartTS: 100},
	}

	got, err := LinkedMigrations{}.ResolveMigrations(context.Background(), client, repo, tags)
	if err != nil {
		t.Fatalf("ResolveMigrations() error = %v", err)
	}

	var scripts []string
	for _, m := range got {
		scripts = append(scripts, m.ScriptText)
	}
	// newest-first from the strategy; Resolve() reverses this to oldest-first.
	want := []string{"script-t3", "script-t1"}
	if !reflect.DeepEqual(scripts, want) {
		t.Errorf("scripts = %v, want %v", scripts, want)
	}
}

func TestResolveReversesToOldestFirst(t *testing.T) {
	client := &annotatedFakeClient{
		fakeClient: &fakeClient{
			tags: map[string][]model.QuayTagInfo{
				"0.2-": {{Name: "0.2-bbbb", ManifestDigest: "sha256:bbbb", StartTS: 200}},
				"0.1-": {
					{Name: "0.1-cccc", ManifestDigest: "sha256:cccc", StartTS: 150},
					{Name: "0.1-aaaa", ManifestDigest: "sha256:aaaa", StartTS: 100},
				},
			},
			referrers: map[string][]registry.ReferrerDescriptor{
				"sha256:bbbb": {{Digest: "sha256:mig"}},
				"sha256:cccc": {{Digest: "sha256:mig-c"}},
			},
			layers: map[string][]string{"sha256:mig": {"sha256:layer"}, "sha256:mig-c": {"sha256:layer-c"}},
			blobs:  map[string]string{"sha256:layer": "echo hi", "sha256:layer-c": "echo one"},
		},
		annotations: map[string]map[string]string{
			"sha256:bbbb": {model.AnnotationHasMigration: "true"},
			"sha256:cccc": {model.AnnotationHasMigration: "true"},
			"sha256:aaaa": {},
		},
	}

	u := model.NewTaskBundleUpgrade(model.UpgradeInput{
		DepName: "quay.io/konflux-ci/foo", CurrentValue: "0.1", CurrentDigest: "sha256:aaaa",
		NewValue: "0.2", NewDigest: "sha256:bbbb",
	})

	if err := Resolve(context.Background(), client, SimpleIteration{}, []*model.TaskBundleUpgrade{u}, 5); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// The strategy yields newest-first [echo hi, echo one]; Resolve stores it oldest-first.
	if len(u.Migrations) != 2 || u.Migrations[0].ScriptText != "echo one" || u.Migrations[1].ScriptText != "echo hi" {
		t.Fatalf("u.Migrations = %+v, want [echo one, echo hi]", u.Migrations)
	}
}
