package config

import "testing"

func TestDBAndFilesNames(t *testing.T) {
	c := Config{RepoName: "core"}
	if got := c.DBName(); got != "core.db" {
		t.Errorf("DBName() = %q, want core.db", got)
	}
	if got := c.FilesName(); got != "core.files" {
		t.Errorf("FilesName() = %q, want core.files", got)
	}
	if got := c.ManifestName(); got != "core.manifest" {
		t.Errorf("ManifestName() = %q, want core.manifest", got)
	}
}

func TestPoolDirDefaultsToRoot(t *testing.T) {
	c := Config{Root: "/srv/repo/core"}
	if got := c.PoolDir(); got != "/srv/repo/core" {
		t.Errorf("PoolDir() = %q, want Root", got)
	}
}

func TestPoolDirOverridesRoot(t *testing.T) {
	c := Config{Root: "/srv/repo/core", Pool: "/srv/pool"}
	if got := c.PoolDir(); got != "/srv/pool" {
		t.Errorf("PoolDir() = %q, want /srv/pool", got)
	}
}
