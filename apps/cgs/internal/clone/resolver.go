package clone

import (
	"path"
	"strings"
)

// Resolve computes the local directory for a file at repository path
// filePath. The result uses "/" separators and is "" for the working
// directory itself.
//
// In CurrentDirOnly mode the directory is rooted at the first path segment
// exactly equal to targetDirName. When no segment matches, the full parent
// path is returned unchanged.
func Resolve(filePath, targetDirName string, mode Mode) string {
	dir := path.Dir(strings.Trim(filePath, "/"))
	if dir == "." {
		dir = ""
	}
	if mode != CurrentDirOnly || dir == "" {
		return dir
	}

	segments := strings.Split(dir, "/")
	for i, s := range segments {
		if s == targetDirName {
			return strings.Join(segments[i:], "/")
		}
	}
	return dir
}

// Contained cleans p and reports whether it stays inside the working
// directory: relative, and not climbing out through "..".
func Contained(p string) (string, bool) {
	clean := path.Clean(p)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return clean, false
	}
	return clean, true
}
