// Package vercmp implements the pacman package-version comparison order
// over "epoch:version-release" strings, the ordering the reconciler uses
// to decide whether a scanned package replaces an indexed one. There is no
// single canonical Go package for this, so it is built here directly from
// the well-known algorithm (an rpmvercmp derivative) that pacman/libalpm
// documents and that every PKGBUILD-adjacent tool reimplements for itself.
package vercmp

import "strings"

// Compare returns -1, 0, or 1 as a's version sorts before, equal to, or
// after b's, using pacman's epoch:pkgver-pkgrel total order.
func Compare(a, b string) int {
	aEpoch, aRest := splitEpoch(a)
	bEpoch, bRest := splitEpoch(b)

	if c := compareInts(aEpoch, bEpoch); c != 0 {
		return c
	}

	aVer, aRel := splitRelease(aRest)
	bVer, bRel := splitRelease(bRest)

	if c := rpmvercmp(aVer, bVer); c != 0 {
		return c
	}

	// A release component is only compared when both sides specify one;
	// "1.0" and "1.0-1" are treated as equal in pacman's vercmp.
	if aRel == "" || bRel == "" {
		return 0
	}
	return rpmvercmp(aRel, bRel)
}

func splitEpoch(v string) (int, string) {
	if i := strings.IndexByte(v, ':'); i >= 0 {
		n := 0
		for _, c := range v[:i] {
			if c < '0' || c > '9' {
				return 0, v
			}
			n = n*10 + int(c-'0')
		}
		return n, v[i+1:]
	}
	return 0, v
}

func splitRelease(v string) (version, release string) {
	if i := strings.LastIndexByte(v, '-'); i >= 0 {
		return v[:i], v[i+1:]
	}
	return v, ""
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isAlnum(c byte) bool {
	return isDigit(c) || isAlpha(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// rpmvercmp compares two version strings segment by segment: runs of
// digits compare numerically, runs of letters compare lexically, and a
// numeric segment always outranks an alphabetic one at the same position.
// Non-alphanumeric separators are skipped and otherwise ignored.
func rpmvercmp(a, b string) int {
	if a == b {
		return 0
	}

	var i, j int
	for i < len(a) || j < len(b) {
		// skip non-alnum separators on both sides
		for i < len(a) && !isAlnum(a[i]) {
			i++
		}
		for j < len(b) && !isAlnum(b[j]) {
			j++
		}

		if i >= len(a) || j >= len(b) {
			break
		}

		if isDigit(a[i]) && isDigit(b[j]) {
			// numeric segment: skip leading zeros, compare by length then value
			start := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			segA := strings.TrimLeft(a[start:i], "0")

			startB := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			segB := strings.TrimLeft(b[startB:j], "0")

			if len(segA) != len(segB) {
				if len(segA) > len(segB) {
					return 1
				}
				return -1
			}
			if segA != segB {
				if segA > segB {
					return 1
				}
				return -1
			}
			continue
		}

		if isDigit(a[i]) {
			// numeric beats alphabetic
			return 1
		}
		if isDigit(b[j]) {
			return -1
		}

		// both alphabetic: compare runs of letters lexically
		start := i
		for i < len(a) && isAlpha(a[i]) {
			i++
		}
		startB := j
		for j < len(b) && isAlpha(b[j]) {
			j++
		}
		segA, segB := a[start:i], b[startB:j]
		if segA != segB {
			if segA > segB {
				return 1
			}
			return -1
		}
	}

	switch {
	case i >= len(a) && j >= len(b):
		return 0
	case i >= len(a):
		// b has a trailing segment a lacks: numeric trailing data makes b
		// newer, alphabetic trailing data (a pre-release tag) makes it
		// older.
		if isDigit(b[j]) {
			return -1
		}
		return 1
	default:
		if isDigit(a[i]) {
			return 1
		}
		return -1
	}
}
