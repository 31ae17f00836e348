package scanner

import (
	"path/filepath"

	"github.com/repogen/repose/internal/pkgmeta"
)

// MatchTargets reports whether pkg matches any of targets: an exact match
// against its pool filename or bare name, or a glob match (fnmatch in the
// original, filepath.Match here) against "<name>-<version>".
func MatchTargets(pkg *pkgmeta.Package, targets []string) bool {
	fullname := pkg.Name + "-" + pkg.Version
	for _, target := range targets {
		if target == pkg.Filename || target == pkg.Name {
			return true
		}
		if ok, err := filepath.Match(target, fullname); err == nil && ok {
			return true
		}
	}
	return false
}

// MatchArch reports whether pkg was built for arch, or is arch-independent.
func MatchArch(pkg *pkgmeta.Package, arch string) bool {
	return pkg.Arch == arch || pkg.Arch == "any"
}
