// Package fsutil provides filesystem path sanitization for serving
// user-addressed files from a fixed root directory.
package fsutil

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrMalformedPath indicates a request path that fails syntactic
	// sanitization and was rejected before touching the filesystem.
	ErrMalformedPath = errors.New("malformed path")
	// ErrOutsideRoot indicates a path that resolves outside the root after
	// canonicalization (symlink or normalization escape).
	ErrOutsideRoot = errors.New("path escapes root")
)

// SanitizePath validates a caller-supplied relative path and returns it in
// slash-normalized form. The check is a component allow-list: only normal
// components survive, "." components are dropped, and anything else (empty
// path, NUL bytes, "..", volume or root markers) is rejected. Collapsing
// "a/../b" is deliberately not attempted; such paths are refused outright.
func SanitizePath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", ErrMalformedPath
	}
	if strings.ContainsRune(p, 0) {
		return "", ErrMalformedPath
	}
	if filepath.VolumeName(p) != "" {
		return "", ErrMalformedPath
	}

	var parts []string
	for _, c := range strings.Split(p, "/") {
		switch c {
		case "", ".":
			continue
		case "..":
			return "", ErrMalformedPath
		}
		parts = append(parts, c)
	}
	if len(parts) == 0 {
		return "", ErrMalformedPath
	}
	return strings.Join(parts, "/"), nil
}

// ResolveWithinRoot sanitizes rel, joins it onto root, canonicalizes both
// sides, and verifies component-wise that the target stays inside root.
// The containment check runs even though SanitizePath already rejected
// syntactic traversal: a symlink created under root after the catalog entry
// was inserted could otherwise point outside it.
//
// Returns the canonical absolute path of the target. A missing target is
// reported with an error satisfying errors.Is(err, fs.ErrNotExist).
func ResolveWithinRoot(root, rel string) (string, error) {
	safe, err := SanitizePath(rel)
	if err != nil {
		return "", err
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	rootCanon, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return "", err
	}

	joined := filepath.Join(rootCanon, filepath.FromSlash(safe))
	// EvalSymlinks reports a missing target with fs.ErrNotExist.
	target, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}

	if !within(rootCanon, target) {
		return "", ErrOutsideRoot
	}
	return target, nil
}

// within reports whether candidate equals root or sits below it, compared
// component-wise so /data-evil does not pass for root /data.
func within(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	sep := string(filepath.Separator)
	return rel != ".." && !strings.HasPrefix(rel, ".."+sep) && !filepath.IsAbs(rel)
}
