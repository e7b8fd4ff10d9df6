package smbclient

import (
	"fmt"
	"strings"
)

// ShareType classifies a share by its name.
type ShareType uint32

const (
	// ShareTypeDisk represents a disk share (standard file share).
	ShareTypeDisk ShareType = 0x00000000

	// ShareTypeIPC represents the IPC$ share (named pipes).
	ShareTypeIPC ShareType = 0x00000003

	// ShareTypeSpecial represents hidden administrative shares (C$, ADMIN$, ...).
	ShareTypeSpecial ShareType = 0x80000000
)

// String returns a human-readable string for the share type.
func (st ShareType) String() string {
	switch st {
	case ShareTypeDisk:
		return "Disk"
	case ShareTypeIPC:
		return "IPC"
	case ShareTypeSpecial:
		return "Special"
	default:
		return fmt.Sprintf("Unknown(%d)", st)
	}
}

// ShareInfo describes one name returned by Session.ListSharedFolders.
type ShareInfo struct {
	Name string
	Type ShareType
}

// ClassifyShare guesses the share type from its name. Share enumeration
// only reports names, so hidden shares are recognized by their trailing $.
func ClassifyShare(name string) ShareType {
	switch {
	case strings.EqualFold(name, "IPC$"):
		return ShareTypeIPC
	case strings.HasSuffix(name, "$"):
		return ShareTypeSpecial
	default:
		return ShareTypeDisk
	}
}

// DescribeShares pairs each name with its classification, keeping the
// server's order.
func DescribeShares(names []string) []ShareInfo {
	infos := make([]ShareInfo, len(names))
	for i, name := range names {
		infos[i] = ShareInfo{Name: name, Type: ClassifyShare(name)}
	}
	return infos
}
