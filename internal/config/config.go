// Package config defines the single value type that carries every knob the
// Driver needs for one invocation: repository name, root/pool paths,
// architecture, compression, and the sign/reflink/rebuild/files/drop/list
// switches.
package config

import "github.com/repogen/repose/internal/indexwriter"

// Config is the fully resolved set of options for one repose run, built
// from CLI flags (internal/cli) plus the few values that default from the
// environment (arch from the host architecture, when unset; see
// driver.New).
type Config struct {
	// RepoName is the base name the .db/.files/.manifest files share,
	// i.e. the first positional argument with any trailing ".db" stripped.
	RepoName string
	// Root is the directory the .db/.files index and package symlinks
	// live in.
	Root string
	// Pool is the directory package archives are scanned from. Defaults
	// to Root when empty.
	Pool string
	// Arch restricts the scan to this architecture (plus "any" packages).
	Arch string

	Compression indexwriter.Compression
	// Reflink makes the linker clone instead of symlink pool packages
	// into Root.
	Reflink bool
	// Files also builds and maintains the .files index.
	Files bool
	// Rebuild forces a full rescan instead of loading the existing index.
	Rebuild bool
	// Sign signs the written index (and, if it finds an existing
	// signature, re-verifies the old one up front).
	Sign bool
	// SignKeyPath/SignPassphrase locate the OpenPGP private key used when
	// Sign is set.
	SignKeyPath    string
	SignPassphrase string

	// Drop removes Targets from the repository instead of scanning the
	// pool.
	Drop bool
	// List prints the repository's current package list and exits.
	List bool
	// Targets restricts a scan/drop to matching packages (see
	// scanner.MatchTargets). When empty, a scan takes its targets from the
	// manifest, or every package in Pool if there is none, and a drop
	// removes nothing.
	Targets []string

	Verbose int
}

// DBName is the repo's ".db" index filename.
func (c Config) DBName() string { return c.RepoName + ".db" }

// FilesName is the repo's ".files" index filename.
func (c Config) FilesName() string { return c.RepoName + ".files" }

// ManifestName is the repo's package-list manifest filename.
func (c Config) ManifestName() string { return c.RepoName + ".manifest" }

// PoolDir resolves Pool, defaulting to Root.
func (c Config) PoolDir() string {
	if c.Pool == "" {
		return c.Root
	}
	return c.Pool
}
