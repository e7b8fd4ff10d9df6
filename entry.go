package smbclient

import (
	"io/fs"
	"time"
)

// DirEntry is one result of a directory traversal. Path is share-relative
// and backslash separated.
type DirEntry struct {
	Path string
	stat Stat
}

func newDirEntry(fullPath string, st Stat) DirEntry {
	return DirEntry{Path: fullPath, stat: st}
}

// Name returns the final path element.
func (e DirEntry) Name() string { return e.stat.Name }

// IsDir reports whether the entry is a directory.
func (e DirEntry) IsDir() bool { return e.stat.IsDir }

// Size returns the end-of-file position.
func (e DirEntry) Size() int64 { return e.stat.Size }

func (e DirEntry) AllocSize() int64           { return e.stat.AllocSize }
func (e DirEntry) CreationTime() time.Time    { return e.stat.CreationTime }
func (e DirEntry) AccessTime() time.Time      { return e.stat.AccessTime }
func (e DirEntry) WriteTime() time.Time       { return e.stat.WriteTime }
func (e DirEntry) ChangeTime() time.Time      { return e.stat.ChangeTime }
func (e DirEntry) Attributes() FileAttributes { return FileAttributes(e.stat.Attributes) }

// ModTime returns the last write time.
func (e DirEntry) ModTime() time.Time { return e.stat.WriteTime }

// Sys returns the underlying Stat.
func (e DirEntry) Sys() any { return e.stat }

// Mode maps the Windows attributes onto a Unix file mode.
func (e DirEntry) Mode() fs.FileMode {
	return attributesToMode(e.Attributes(), e.stat.IsDir)
}

// Attr returns one attribute selected by kind as a raw value. Times are
// Windows FILETIME values (100ns intervals since 1601-01-01 UTC).
func (e DirEntry) Attr(kind StatKind) uint64 {
	switch kind {
	case StatSize:
		return uint64(e.stat.Size)
	case StatAllocSize:
		return uint64(e.stat.AllocSize)
	case StatIsDir:
		if e.stat.IsDir {
			return 1
		}
		return 0
	case StatCTime:
		return toFiletime(e.stat.CreationTime)
	case StatATime:
		return toFiletime(e.stat.AccessTime)
	case StatWTime:
		return toFiletime(e.stat.WriteTime)
	case StatMTime:
		return toFiletime(e.stat.ChangeTime)
	default:
		return 0
	}
}

// String renders the path, directories with a trailing backslash.
func (e DirEntry) String() string {
	if e.stat.IsDir {
		return e.Path + `\`
	}
	return e.Path
}

// filetimeEpochDelta is the number of 100ns intervals between 1601 and 1970.
const filetimeEpochDelta = 116444736000000000

func toFiletime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano()/100 + filetimeEpochDelta)
}

// FromFiletime converts a Windows FILETIME value to time.Time.
func FromFiletime(ft uint64) time.Time {
	if ft == 0 {
		return time.Time{}
	}
	return time.Unix(0, (int64(ft)-filetimeEpochDelta)*100).UTC()
}

// Paths returns the display form of every entry.
func Paths(entries []DirEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}
