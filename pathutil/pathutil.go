// Package pathutil rewrites absolute paths for "offline root" operation:
// building or inspecting an install destination staged under a directory
// prefix rather than the live filesystem root (spec §6, GLOSSARY "Offline
// root").
package pathutil

import "strings"

// Rewrite prefixes path with offlineRoot, unless offlineRoot is empty or
// path already starts with it (spec §6 file-list-record rule: "prefixed
// with offline_root when the stored path does not already start with it").
func Rewrite(offlineRoot, path string) string {
	if offlineRoot == "" {
		return path
	}
	if strings.HasPrefix(path, offlineRoot) {
		return path
	}
	return strings.TrimRight(offlineRoot, "/") + path
}

// StripTrailingSlash removes a directory path's trailing slash, per the
// file-list-record rule in spec §6.
func StripTrailingSlash(path string) string {
	if path == "/" {
		return path
	}
	return strings.TrimSuffix(path, "/")
}
