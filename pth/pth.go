// Package pth provides helpers for dot-separated qualified paths.
package pth

import "strings"

// Sep is the path separator between qualified name segments.
const Sep = "."

// Join returns the path of name below parent. An empty parent returns name
// unchanged, so the unnamed root does not show up in qualified names.
func Join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + Sep + name
}

// Base returns the last segment of path or the empty string.
func Base(path string) string {
	if idx := strings.LastIndex(path, Sep); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// Parent returns the path without its last segment and whether one exists.
func Parent(path string) (string, bool) {
	if idx := strings.LastIndex(path, Sep); idx >= 0 {
		return path[:idx], true
	}
	return "", false
}

// Split returns all segments of path. An empty path has no segments.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Sep)
}
