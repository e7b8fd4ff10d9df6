package smbclient

import (
	"context"
	"net/netip"
	"time"
)

// TransportKind selects how an engine reaches the server.
type TransportKind int

const (
	// TransportTCP is direct SMB over TCP (port 445).
	TransportTCP TransportKind = 1
	// TransportNBT is SMB over NetBIOS session service (port 139).
	TransportNBT TransportKind = 2
)

func (t TransportKind) String() string {
	switch t {
	case TransportTCP:
		return "tcp"
	case TransportNBT:
		return "nbt"
	default:
		return "unknown"
	}
}

// TreeID identifies an attached share within an engine session.
type TreeID uint32

// FileID identifies an open file within an engine session.
type FileID uint64

// InvalidFileID is never returned by a successful open.
const InvalidFileID FileID = 0

// Disposition controls what an open does when the file does or does not exist.
type Disposition int

const (
	// DispositionOpen opens an existing file and fails otherwise.
	DispositionOpen Disposition = iota
	// DispositionOpenIf opens the file, creating it if needed.
	DispositionOpenIf
	// DispositionOverwriteIf opens and truncates the file, creating it if needed.
	DispositionOverwriteIf
	// DispositionCreate creates the file and fails if it exists.
	DispositionCreate
	// DispositionOverwrite truncates an existing file and fails otherwise.
	DispositionOverwrite
)

// StatKind selects one attribute of a directory entry.
type StatKind int

const (
	StatSize      StatKind = 0
	StatAllocSize StatKind = 1
	StatIsDir     StatKind = 2
	StatCTime     StatKind = 3
	StatATime     StatKind = 4
	StatWTime     StatKind = 5
	StatMTime     StatKind = 6
)

// Stat is one entry produced by a directory enumeration.
type Stat struct {
	Name         string
	IsDir        bool
	Size         int64
	AllocSize    int64
	Attributes   uint32
	CreationTime time.Time
	AccessTime   time.Time
	WriteTime    time.Time
	ChangeTime   time.Time
}

// Engine creates protocol sessions. Implementations own the SMB wire
// protocol; the orchestration layer only uses this contract.
type Engine interface {
	NewSession() (EngineSession, error)
}

// EngineSession is one protocol session. It is not safe for concurrent use
// on the same tree; callers serialize per Share.
//
// Failures carrying a server status must be returned as *StatusError.
// Read returns 0, nil at end of file.
type EngineSession interface {
	Connect(ctx context.Context, serverName string, addr netip.AddrPort, transport TransportKind) error
	SetCredentials(domain, user, password string)
	Login(ctx context.Context) error
	IsGuest() bool
	ServerName() string

	ListShares(ctx context.Context) ([]string, error)
	TreeConnect(ctx context.Context, name string) (TreeID, error)
	TreeDisconnect(ctx context.Context, tid TreeID) error

	Open(ctx context.Context, tid TreeID, path string, access AccessMask, disposition Disposition) (FileID, error)
	Close(ctx context.Context, fid FileID) error
	Read(ctx context.Context, fid FileID, p []byte) (int, error)
	Write(ctx context.Context, fid FileID, p []byte) (int, error)
	Seek(ctx context.Context, fid FileID, offset int64, whence int) (int64, error)
	Truncate(ctx context.Context, fid FileID, size int64) error

	// Find enumerates the entries matching a `\dir\*` style pattern.
	Find(ctx context.Context, tid TreeID, pattern string) ([]Stat, error)
	Mkdir(ctx context.Context, tid TreeID, path string) error
	Rmdir(ctx context.Context, tid TreeID, path string) error
	RemoveFile(ctx context.Context, tid TreeID, path string) error
	Rename(ctx context.Context, tid TreeID, oldpath, newpath string) error
	SetTimes(ctx context.Context, tid TreeID, path string, atime, mtime time.Time) error

	// MaxReadSize and MaxWriteSize report the negotiated transfer limits,
	// or 0 when unknown.
	MaxReadSize() int
	MaxWriteSize() int

	Destroy() error
}
