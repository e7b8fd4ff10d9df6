package smbclient

import (
	"testing"
	"time"
)

func TestDirEntry_String(t *testing.T) {
	file := newDirEntry(`docs\a.txt`, Stat{Name: "a.txt", Size: 3})
	dir := newDirEntry(`docs\sub`, Stat{Name: "sub", IsDir: true})

	if file.String() != `docs\a.txt` {
		t.Errorf("file String() = %q", file.String())
	}
	if dir.String() != `docs\sub\` {
		t.Errorf("dir String() = %q", dir.String())
	}
	got := Paths([]DirEntry{file, dir})
	if !equalStrings(got, []string{`docs\a.txt`, `docs\sub\`}) {
		t.Errorf("Paths() = %v", got)
	}
	if dir.Name() != "sub" || !dir.IsDir() || file.Size() != 3 {
		t.Errorf("accessors: %q %v %d", dir.Name(), dir.IsDir(), file.Size())
	}
}

func TestDirEntry_Attr(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	written := created.Add(time.Hour)
	e := newDirEntry("f.bin", Stat{
		Name:         "f.bin",
		Size:         5000,
		AllocSize:    8192,
		CreationTime: created,
		WriteTime:    written,
	})

	tests := []struct {
		kind StatKind
		want uint64
	}{
		{StatSize, 5000},
		{StatAllocSize, 8192},
		{StatIsDir, 0},
		{StatCTime, toFiletime(created)},
		{StatWTime, toFiletime(written)},
		{StatATime, 0},
		{StatKind(42), 0},
	}
	for _, tt := range tests {
		if got := e.Attr(tt.kind); got != tt.want {
			t.Errorf("Attr(%d) = %d, want %d", tt.kind, got, tt.want)
		}
	}

	dir := newDirEntry("d", Stat{Name: "d", IsDir: true})
	if dir.Attr(StatIsDir) != 1 {
		t.Error("Attr(StatIsDir) = 0 for a directory")
	}
}

func TestFiletime(t *testing.T) {
	unixEpoch := time.Unix(0, 0).UTC()
	if got := toFiletime(unixEpoch); got != filetimeEpochDelta {
		t.Errorf("toFiletime(1970) = %d, want %d", got, uint64(filetimeEpochDelta))
	}

	ts := time.Date(2023, 7, 4, 8, 30, 15, 123456700, time.UTC)
	if back := FromFiletime(toFiletime(ts)); !back.Equal(ts) {
		t.Errorf("FromFiletime(toFiletime(%v)) = %v", ts, back)
	}

	if toFiletime(time.Time{}) != 0 || !FromFiletime(0).IsZero() {
		t.Error("zero time does not map to a zero FILETIME")
	}
}

func TestDirEntry_Mode(t *testing.T) {
	dir := newDirEntry("d", Stat{Name: "d", IsDir: true, Attributes: FileAttributeDirectory})
	if !dir.Mode().IsDir() {
		t.Errorf("Mode() = %v, want a directory", dir.Mode())
	}
	ro := newDirEntry("r", Stat{Name: "r", Attributes: FileAttributeReadOnly})
	if ro.Mode().Perm()&0o222 != 0 {
		t.Errorf("Mode() = %v, want no write bits", ro.Mode())
	}
}
