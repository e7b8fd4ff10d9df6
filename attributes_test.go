package smbclient

import (
	"io/fs"
	"testing"
)

func TestFileAttributes_Flags(t *testing.T) {
	tests := []struct {
		name  string
		attrs FileAttributes
		check func(FileAttributes) bool
		want  bool
	}{
		{
			name:  "hidden attribute set",
			attrs: FileAttributeHidden,
			check: FileAttributes.IsHidden,
			want:  true,
		},
		{
			name:  "hidden attribute not set",
			attrs: FileAttributeNormal,
			check: FileAttributes.IsHidden,
			want:  false,
		},
		{
			name:  "system attribute set",
			attrs: FileAttributeSystem,
			check: FileAttributes.IsSystem,
			want:  true,
		},
		{
			name:  "readonly attribute set",
			attrs: FileAttributeReadOnly,
			check: FileAttributes.IsReadOnly,
			want:  true,
		},
		{
			name:  "directory attribute set",
			attrs: FileAttributeDirectory,
			check: FileAttributes.IsDirectory,
			want:  true,
		},
		{
			name:  "compressed attribute set",
			attrs: FileAttributeCompressed,
			check: FileAttributes.IsCompressed,
			want:  true,
		},
		{
			name:  "multiple attributes",
			attrs: FileAttributeHidden | FileAttributeSystem | FileAttributeReadOnly,
			check: FileAttributes.IsHidden,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.attrs); got != tt.want {
				t.Errorf("check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileAttributes_String(t *testing.T) {
	tests := []struct {
		attrs FileAttributes
		want  string
		short string
	}{
		{FileAttributeNormal, "Normal", "-----"},
		{FileAttributeHidden | FileAttributeReadOnly, "ReadOnly, Hidden", "-RH--"},
		{FileAttributeDirectory | FileAttributeArchive, "Directory, Archive", "D---A"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.attrs.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := tt.attrs.Short(); got != tt.short {
				t.Errorf("Short() = %q, want %q", got, tt.short)
			}
		})
	}
}

func TestAttributesToMode(t *testing.T) {
	tests := []struct {
		name  string
		attrs FileAttributes
		isDir bool
		want  fs.FileMode
	}{
		{"regular file", FileAttributeNormal, false, 0o666},
		{"readonly file", FileAttributeReadOnly, false, 0o444},
		{"directory flag", 0, true, fs.ModeDir | 0o777},
		{"directory attribute", FileAttributeDirectory, false, fs.ModeDir | 0o777},
		{"readonly directory", FileAttributeDirectory | FileAttributeReadOnly, true, fs.ModeDir | 0o555},
		{"reparse point", FileAttributeReparsePoint, false, fs.ModeSymlink | 0o666},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := attributesToMode(tt.attrs, tt.isDir); got != tt.want {
				t.Errorf("attributesToMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessMask(t *testing.T) {
	if ModRW != 0x0002019F {
		t.Errorf("ModRW = %#x, want 0x2019f", uint32(ModRW))
	}
	if ModRO != 0x00020089 {
		t.Errorf("ModRO = %#x, want 0x20089", uint32(ModRO))
	}
	if !ModRO.CanRead() || ModRO.CanWrite() {
		t.Errorf("ModRO read/write = %v/%v, want true/false", ModRO.CanRead(), ModRO.CanWrite())
	}
	if !ModRW.CanRead() || !ModRW.CanWrite() {
		t.Errorf("ModRW read/write = %v/%v, want true/true", ModRW.CanRead(), ModRW.CanWrite())
	}
	if got := (ModRead | ModWrite).String(); got != "READ|WRITE" {
		t.Errorf("String() = %q, want READ|WRITE", got)
	}
	if got := AccessMask(0).String(); got != "NONE" {
		t.Errorf("String() = %q, want NONE", got)
	}
}
