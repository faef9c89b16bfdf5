package snapshot

import "strings"

// Separator is the canonical separator used in relative paths
const Separator = "/"

// Depth returns the number of separators in a relative path. The root and
// top-level entries both have depth 0.
func Depth(rel string) int {
	return strings.Count(rel, Separator)
}

// Parent returns the parent key of rel, "" for top-level entries
func Parent(rel string) string {
	i := strings.LastIndex(rel, Separator)
	if i < 0 {
		return ""
	}
	return rel[:i]
}

// Join appends a child name to a relative directory path
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + Separator + name
}

// IsDescendant reports whether rel lies strictly below ancestor
func IsDescendant(rel, ancestor string) bool {
	if ancestor == "" {
		return rel != ""
	}
	return strings.HasPrefix(rel, ancestor+Separator)
}

// Rebase replaces the ancestor prefix of rel with newAncestor
func Rebase(rel, ancestor, newAncestor string) string {
	if rel == ancestor {
		return newAncestor
	}
	return Join(newAncestor, strings.TrimPrefix(rel, ancestor+Separator))
}
