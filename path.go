package smbclient

import (
	"strings"
)

// Paths inside a Share are share-relative, backslash separated and carry
// no leading or trailing separator; the share root is "".

// cleanPath normalizes a caller supplied path to share-relative form.
// Supported formats:
//   - Windows: dir\sub\file, \dir\sub\file
//   - Unix-style: dir/sub/file, /dir/sub/file
func cleanPath(p string) (string, error) {
	if err := validatePath(p); err != nil {
		return "", err
	}

	p = strings.ReplaceAll(p, "/", `\`)
	parts := strings.Split(p, `\`)
	kept := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, `\`), nil
}

// validatePath validates that a path is safe and doesn't contain
// invalid characters or attempt path traversal outside the share.
func validatePath(p string) error {
	if strings.Contains(p, "\x00") {
		return ErrInvalidPath
	}
	for _, part := range strings.FieldsFunc(p, isSeparator) {
		if part == ".." {
			return ErrInvalidPath
		}
	}
	return nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

// joinPath joins a share-relative directory and an entry name.
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + `\` + name
}

// findPattern returns the enumeration pattern for every entry of dir.
func findPattern(dir string) string {
	if dir == "" {
		return `\*`
	}
	return `\` + dir + `\*`
}

// uncPath renders \\server\share\path for messages.
func uncPath(server, share, p string) string {
	u := `\\` + server + `\` + share
	if p != "" {
		u += `\` + p
	}
	return u
}

// baseName returns the last element of a share-relative path.
func baseName(p string) string {
	if i := strings.LastIndexByte(p, '\\'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// dirName returns all but the last element of a share-relative path.
func dirName(p string) string {
	if i := strings.LastIndexByte(p, '\\'); i >= 0 {
		return p[:i]
	}
	return ""
}
