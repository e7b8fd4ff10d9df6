package smbclient

import "strings"

// AccessMask is the access-rights bitmask requested when opening a file.
type AccessMask uint32

// Access rights understood by SMB servers.
const (
	ModRead         AccessMask = 1 << 0
	ModWrite        AccessMask = 1 << 1
	ModAppend       AccessMask = 1 << 2
	ModReadExt      AccessMask = 1 << 3
	ModWriteExt     AccessMask = 1 << 4
	ModExec         AccessMask = 1 << 5
	ModRmChild      AccessMask = 1 << 6
	ModReadAttr     AccessMask = 1 << 7
	ModWriteAttr    AccessMask = 1 << 8
	ModRemove       AccessMask = 1 << 16
	ModReadControl  AccessMask = 1 << 17
	ModWriteDAC     AccessMask = 1 << 18
	ModChown        AccessMask = 1 << 19
	ModSync         AccessMask = 1 << 20
	ModSys          AccessMask = 1 << 24
	ModMaxAllowed   AccessMask = 1 << 25
	ModGenericAll   AccessMask = 1 << 28
	ModGenericExec  AccessMask = 1 << 29
	ModGenericRead  AccessMask = 1 << 30
	ModGenericWrite AccessMask = 1 << 31
)

// Composite modes used by the content helpers.
const (
	ModRW = ModRead | ModWrite | ModAppend | ModReadExt | ModWriteExt |
		ModReadAttr | ModWriteAttr | ModReadControl
	ModRO = ModRead | ModReadExt | ModReadAttr | ModReadControl
	ModWO = ModWrite | ModWriteExt | ModReadAttr | ModWriteAttr | ModReadControl
)

// CanRead reports whether the mask grants any form of data read.
func (m AccessMask) CanRead() bool {
	return m&(ModRead|ModGenericRead|ModGenericAll|ModMaxAllowed) != 0
}

// CanWrite reports whether the mask grants any form of data write.
func (m AccessMask) CanWrite() bool {
	return m&(ModWrite|ModAppend|ModGenericWrite|ModGenericAll|ModMaxAllowed) != 0
}

var accessNames = []struct {
	bit  AccessMask
	name string
}{
	{ModRead, "READ"},
	{ModWrite, "WRITE"},
	{ModAppend, "APPEND"},
	{ModReadExt, "READ_EXT"},
	{ModWriteExt, "WRITE_EXT"},
	{ModExec, "EXEC"},
	{ModRmChild, "RMCHILD"},
	{ModReadAttr, "READ_ATTR"},
	{ModWriteAttr, "WRITE_ATTR"},
	{ModRemove, "RM"},
	{ModReadControl, "READ_CTL"},
	{ModWriteDAC, "WRITE_DAC"},
	{ModChown, "CHOWN"},
	{ModSync, "SYNC"},
	{ModSys, "SYS"},
	{ModMaxAllowed, "MAX_ALLOWED"},
	{ModGenericAll, "GENERIC_ALL"},
	{ModGenericExec, "GENERIC_EXEC"},
	{ModGenericRead, "GENERIC_READ"},
	{ModGenericWrite, "GENERIC_WRITE"},
}

func (m AccessMask) String() string {
	if m == 0 {
		return "NONE"
	}
	var parts []string
	for _, a := range accessNames {
		if m&a.bit != 0 {
			parts = append(parts, a.name)
		}
	}
	return strings.Join(parts, "|")
}
