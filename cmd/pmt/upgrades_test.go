package main

import "testing"

func TestCleanUpgradesFiltersNonTektonBundle(t *testing.T) {
	t.Setenv("PMT_LOCAL_TEST", "")
	data := `[
		{"depName":"quay.io/konflux-ci/foo","currentValue":"0.1","currentDigest":"sha256:aaaa","newValue":"0.2","newDigest":"sha256:bbbb","depTypes":["tekton-bundle"],"packageFile":"p.yaml","parentDir":"."},
		{"depName":"quay.io/konflux-ci/bar","currentValue":"0.1","currentDigest":"sha256:cccc","newValue":"0.2","newDigest":"sha256:dddd","depTypes":["docker"],"packageFile":"p.yaml","parentDir":"."}
	]`

	got, err := cleanUpgrades(data)
	if err != nil {
		t.Fatalf("cleanUpgrades() error = %v", err)
	}
	if len(got) != 1 || got[0].DepName != "quay.io/konflux-ci/foo" {
		t.Fatalf("cleanUpgrades() = %+v, want only the tekton-bundle upgrade", got)
	}
}

func TestCleanUpgradesFiltersUntrustedPrefix(t *testing.T) {
	t.Setenv("PMT_LOCAL_TEST", "")
	data := `[{"depName":"quay.io/other/foo","currentValue":"0.1","currentDigest":"sha256:aaaa","newValue":"0.2","newDigest":"sha256:bbbb","depTypes":["tekton-bundle"],"packageFile":"p.yaml","parentDir":"."}]`

	got, err := cleanUpgrades(data)
	if err != nil {
		t.Fatalf("cleanUpgrades() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("cleanUpgrades() = %+v, want empty", got)
	}
}

func TestCleanUpgradesLocalTestModeBypassesPrefix(t *testing.T) {
	t.Setenv("PMT_LOCAL_TEST", "1")
	data := `[{"depName":"example.com/other/foo","currentValue":"0.1","currentDigest":"sha256:aaaa","newValue":"0.2","newDigest":"sha256:bbbb","depTypes":["tekton-bundle"],"packageFile":"p.yaml","parentDir":"."}]`

	got, err := cleanUpgrades(data)
	if err != nil {
		t.Fatalf("cleanUpgrades() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("cleanUpgrades() = %+v, want one upgrade under PMT_LOCAL_TEST", got)
	}
}

func TestCleanUpgradesRejectsMalformedDigest(t *testing.T) {
	t.Setenv("PMT_LOCAL_TEST", "1")
	data := `[{"depName":"foo","currentValue":"0.1","currentDigest":"not-a-digest","newValue":"0.2","newDigest":"sha256:bbbb","depTypes":["tekton-bundle"],"packageFile":"p.yaml","parentDir":"."}]`

	if _, err := cleanUpgrades(data); err == nil {
		t.Fatalf("cleanUpgrades() error = nil, want error for malformed digest")
	}
}
