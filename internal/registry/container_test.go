package registry

import "testing"

func TestParseContainer(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    Container
		wantErr bool
	}{
		{
			name: "tag and digest",
			ref:  "quay.io/konflux-ci/foo:0.2-bbbb@sha256:bbbb",
			want: Container{Registry: "quay.io", Namespace: "konflux-ci", Repo: "foo", Tag: "0.2-bbbb", Digest: "sha256:bbbb"},
		},
		{
			name: "digest only",
			ref:  "quay.io/konflux-ci/foo@sha256:bbbb",
			want: Container{Registry: "quay.io", Namespace: "konflux-ci", Repo: "foo", Digest: "sha256:bbbb"},
		},
		{
			name: "nested namespace",
			ref:  "quay.io/konflux-ci/tekton-catalog/foo:0.1-aaaa",
			want: Container{Registry: "quay.io", Namespace: "konflux-ci/tekton-catalog", Repo: "foo", Tag: "0.1-aaaa"},
		},
		{
			name:    "missing namespace",
			ref:     "quay.io/foo",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContainer(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseContainer(%q) expected error, got none", tt.ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseContainer(%q) error = %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("ParseContainer(%q) = %+v, want %+v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestURIWithTag(t *testing.T) {
	c := Container{Registry: "quay.io", Namespace: "konflux-ci", Repo: "foo", Tag: "0.2-bbbb", Digest: "sha256:bbbb"}
	want := "quay.io/konflux-ci/foo:0.2-bbbb@sha256:bbbb"
	if got := c.URIWithTag(); got != want {
		t.Errorf("URIWithTag() = %q, want %q", got, want)
	}
}
