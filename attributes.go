package smbclient

import (
	"io/fs"
	"strings"
)

// Windows file attribute flags as defined in MS-FSCC.
const (
	FileAttributeReadOnly          = 0x00000001
	FileAttributeHidden            = 0x00000002
	FileAttributeSystem            = 0x00000004
	FileAttributeDirectory         = 0x00000010
	FileAttributeArchive           = 0x00000020
	FileAttributeDevice            = 0x00000040
	FileAttributeNormal            = 0x00000080
	FileAttributeTemporary         = 0x00000100
	FileAttributeSparseFile        = 0x00000200
	FileAttributeReparsePoint      = 0x00000400
	FileAttributeCompressed        = 0x00000800
	FileAttributeOffline           = 0x00001000
	FileAttributeNotContentIndexed = 0x00002000
	FileAttributeEncrypted         = 0x00004000
)

// FileAttributes is the attribute word of a directory entry.
type FileAttributes uint32

func (a FileAttributes) IsReadOnly() bool     { return a&FileAttributeReadOnly != 0 }
func (a FileAttributes) IsHidden() bool       { return a&FileAttributeHidden != 0 }
func (a FileAttributes) IsSystem() bool       { return a&FileAttributeSystem != 0 }
func (a FileAttributes) IsDirectory() bool    { return a&FileAttributeDirectory != 0 }
func (a FileAttributes) IsArchive() bool      { return a&FileAttributeArchive != 0 }
func (a FileAttributes) IsTemporary() bool    { return a&FileAttributeTemporary != 0 }
func (a FileAttributes) IsSparse() bool       { return a&FileAttributeSparseFile != 0 }
func (a FileAttributes) IsReparsePoint() bool { return a&FileAttributeReparsePoint != 0 }
func (a FileAttributes) IsCompressed() bool   { return a&FileAttributeCompressed != 0 }
func (a FileAttributes) IsOffline() bool      { return a&FileAttributeOffline != 0 }
func (a FileAttributes) IsEncrypted() bool    { return a&FileAttributeEncrypted != 0 }

var attributeNames = []struct {
	bit  FileAttributes
	name string
}{
	{FileAttributeReadOnly, "ReadOnly"},
	{FileAttributeHidden, "Hidden"},
	{FileAttributeSystem, "System"},
	{FileAttributeDirectory, "Directory"},
	{FileAttributeArchive, "Archive"},
	{FileAttributeTemporary, "Temporary"},
	{FileAttributeSparseFile, "Sparse"},
	{FileAttributeReparsePoint, "ReparsePoint"},
	{FileAttributeCompressed, "Compressed"},
	{FileAttributeOffline, "Offline"},
	{FileAttributeEncrypted, "Encrypted"},
}

// String returns a comma separated list of the set attributes.
func (a FileAttributes) String() string {
	var names []string
	for _, n := range attributeNames {
		if a&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "Normal"
	}
	return strings.Join(names, ", ")
}

// Short renders the attributes in the compact `dir` style, e.g. "DRH--".
func (a FileAttributes) Short() string {
	flags := []struct {
		set bool
		c   byte
	}{
		{a.IsDirectory(), 'D'},
		{a.IsReadOnly(), 'R'},
		{a.IsHidden(), 'H'},
		{a.IsSystem(), 'S'},
		{a.IsArchive(), 'A'},
	}
	b := make([]byte, len(flags))
	for i, f := range flags {
		if f.set {
			b[i] = f.c
		} else {
			b[i] = '-'
		}
	}
	return string(b)
}

// attributesToMode converts Windows attributes to a Unix file mode.
// This is a best-effort mapping as Windows and Unix permissions are quite different.
func attributesToMode(attrs FileAttributes, isDir bool) fs.FileMode {
	mode := fs.FileMode(0o666)
	if attrs.IsReadOnly() {
		mode = 0o444
	}

	if isDir || attrs.IsDirectory() {
		if attrs.IsReadOnly() {
			mode = fs.ModeDir | 0o555
		} else {
			mode = fs.ModeDir | 0o777
		}
	}

	if attrs.IsReparsePoint() {
		mode |= fs.ModeSymlink
	}
	if attrs&FileAttributeDevice != 0 {
		mode |= fs.ModeDevice
	}
	return mode
}
