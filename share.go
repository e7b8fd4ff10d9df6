package smbclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ShareState tracks the attachment of a Share.
type ShareState int

const (
	ShareUnattached ShareState = iota
	ShareAttached
	ShareError
)

func (s ShareState) String() string {
	switch s {
	case ShareUnattached:
		return "unattached"
	case ShareAttached:
		return "attached"
	case ShareError:
		return "error"
	default:
		return fmt.Sprintf("ShareState(%d)", int(s))
	}
}

// DepthUnlimited disables the depth bound of ListFilesRecursively. Any
// negative depth has the same effect.
const DepthUnlimited = -1

// Share is one shared folder attached through a Session.
//
// Protocol calls on a Share are serialized: a recursive listing or a
// chunked transfer holds the Share for its whole duration. Different
// Shares of the same Session run independently.
type Share struct {
	session *Session
	proto   EngineSession
	name    string
	server  string
	logger  Logger

	readChunk  int
	writeChunk int

	mu      sync.Mutex
	state   ShareState
	tid     TreeID
	handles *handleSet
}

func newShare(s *Session, proto EngineSession, name string) *Share {
	cfg := s.config
	sh := &Share{
		session:    s,
		proto:      proto,
		name:       name,
		server:     s.ServerName(),
		logger:     cfg.Logger,
		readChunk:  cfg.ReadChunkSize,
		writeChunk: cfg.WriteChunkSize,
		handles:    newHandleSet(),
	}
	if m := proto.MaxReadSize(); m > 0 && m < sh.readChunk {
		sh.readChunk = m
	}
	if m := proto.MaxWriteSize(); m > 0 && m < sh.writeChunk {
		sh.writeChunk = m
	}
	return sh
}

// connect attaches the tree.
func (sh *Share) connect(ctx context.Context) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.logf(`Connecting to share \\%s\%s`, sh.server, sh.name)
	tid, err := sh.proto.TreeConnect(ctx, sh.name)
	if err != nil {
		sh.state = ShareError
		sh.logf(`Connecting to share \\%s\%s failed: %v`, sh.server, sh.name, err)
		return newOpError(ErrShareAttach, "tree connect", sh.server, sh.name, "", err)
	}
	sh.tid = tid
	sh.state = ShareAttached
	return nil
}

// detach closes every owned handle and disconnects the tree. Failures are
// logged, never returned. It must not take the Session lock: the Session
// calls it while holding its own.
func (sh *Share) detach(ctx context.Context) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if sh.state != ShareAttached {
		sh.state = ShareUnattached
		return
	}
	sh.closeAllLocked(ctx)

	if err := sh.proto.TreeDisconnect(ctx, sh.tid); err != nil {
		sh.logf(`Disconnecting share \\%s\%s: %v`, sh.server, sh.name, err)
	} else {
		sh.logf(`Disconnected share \\%s\%s`, sh.server, sh.name)
	}
	sh.tid = 0
	sh.state = ShareUnattached
}

// Disconnect closes the Share's open files, detaches it and removes it
// from its Session. Safe to call repeatedly.
func (sh *Share) Disconnect(ctx context.Context) error {
	sh.detach(ctx)
	sh.session.removeShare(sh)
	return nil
}

// attachedLocked fails with kind when the Share is not attached.
func (sh *Share) attachedLocked(kind error, op, p string) error {
	if sh.state != ShareAttached {
		return &OpError{Kind: kind, Op: op, Server: sh.server, Share: sh.name, Path: p, Err: ErrShareDetached}
	}
	return nil
}

// prepare cleans p and checks attachment. Caller must hold mu.
func (sh *Share) prepare(kind error, op, p string) (string, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return "", &OpError{Kind: kind, Op: op, Server: sh.server, Share: sh.name, Path: p, Err: err}
	}
	if err := sh.attachedLocked(kind, op, clean); err != nil {
		return "", err
	}
	return clean, nil
}

func (sh *Share) fail(kind error, op, p string, err error) error {
	return newOpError(kind, op, sh.server, sh.name, p, err)
}

// enginePath renders a share-relative path the way engines expect it.
func enginePath(p string) string {
	return `\` + p
}

// OpenFile opens path with the given access rights and registers the
// handle with the Share. Write access creates the file when missing.
func (sh *Share) OpenFile(ctx context.Context, p string, access AccessMask) (FileHandle, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrFileOpen, "open", p)
	if err != nil {
		return FileHandle{}, err
	}
	return sh.openLocked(ctx, clean, access, defaultDisposition(access))
}

// OpenWith opens path with an explicit disposition and returns it as a
// File.
func (sh *Share) OpenWith(ctx context.Context, p string, access AccessMask, disposition Disposition) (*File, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrFileOpen, "open", p)
	if err != nil {
		return nil, err
	}
	if clean == "" {
		return nil, sh.fail(ErrFileOpen, "open", clean, ErrInvalidPath)
	}
	h, err := sh.openLocked(ctx, clean, access, disposition)
	if err != nil {
		return nil, err
	}
	return &File{share: sh, ctx: ctx, handle: h}, nil
}

func defaultDisposition(access AccessMask) Disposition {
	if access.CanWrite() {
		return DispositionOpenIf
	}
	return DispositionOpen
}

func (sh *Share) openLocked(ctx context.Context, p string, access AccessMask, disposition Disposition) (FileHandle, error) {
	fid, err := sh.proto.Open(ctx, sh.tid, enginePath(p), access, disposition)
	if err != nil {
		sh.logf("Unable to open %s (%s): %v", uncPath(sh.server, sh.name, p), access, err)
		return FileHandle{}, sh.fail(ErrFileOpen, "open", p, err)
	}
	h := FileHandle{ID: fid, Path: p, Access: access}
	sh.handles.add(h)
	sh.logf("Opened %s (%s)", uncPath(sh.server, sh.name, p), access)
	return h, nil
}

// CloseFile releases h and invalidates it. Closing an invalid handle, or
// one the Share no longer owns, is a no-op.
func (sh *Share) CloseFile(ctx context.Context, h *FileHandle) error {
	if h == nil || !h.Valid() {
		return nil
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()

	err := sh.closeLocked(ctx, *h)
	h.ID = InvalidFileID
	return err
}

func (sh *Share) closeLocked(ctx context.Context, h FileHandle) error {
	if !sh.handles.remove(h.ID) {
		return nil
	}
	if err := sh.proto.Close(ctx, h.ID); err != nil {
		sh.logf("Closing %s: %v", uncPath(sh.server, sh.name, h.Path), err)
		return sh.fail(ErrFileClose, "close", h.Path, err)
	}
	sh.logf("Closed %s", uncPath(sh.server, sh.name, h.Path))
	return nil
}

// CloseAllFiles closes every handle the Share owns. Safe to call
// repeatedly; close failures are logged and the first one returned.
func (sh *Share) CloseAllFiles(ctx context.Context) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.closeAllLocked(ctx)
}

func (sh *Share) closeAllLocked(ctx context.Context) error {
	var first error
	for _, h := range sh.handles.all() {
		if err := sh.closeLocked(ctx, h); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ListFilesRecursively lists path depth first. Directories accepted by
// dirFilter (tested against their full path) are descended into while
// depth remains and are recorded after their children; files are
// recorded when fileFilter accepts their name. A nil filter accepts
// everything and a negative maxDepth is unbounded. Any listing failure
// aborts the traversal and no partial result is returned.
func (sh *Share) ListFilesRecursively(ctx context.Context, p string, fileFilter, dirFilter PathPredicate, maxDepth int) ([]DirEntry, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrTraversal, "list", p)
	if err != nil {
		return nil, err
	}
	return sh.listLocked(ctx, clean, fileFilter, dirFilter, maxDepth)
}

// ListFiles lists the entries directly under path. Subdirectories are
// included but not descended into.
func (sh *Share) ListFiles(ctx context.Context, p string, fileFilter PathPredicate) ([]DirEntry, error) {
	return sh.ListFilesRecursively(ctx, p, fileFilter, nil, 1)
}

func (sh *Share) listLocked(ctx context.Context, dir string, fileFilter, dirFilter PathPredicate, depth int) ([]DirEntry, error) {
	if depth == 0 {
		return []DirEntry{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, sh.fail(ErrTraversal, "list", dir, err)
	}

	stats, err := sh.proto.Find(ctx, sh.tid, findPattern(dir))
	if err != nil {
		sh.logf("Listing %s failed: %v", uncPath(sh.server, sh.name, dir), err)
		return nil, sh.fail(ErrTraversal, "list", dir, err)
	}

	next := depth
	if depth > 0 {
		next = depth - 1
	}

	entries := []DirEntry{}
	for _, st := range stats {
		if st.Name == "." || st.Name == ".." {
			continue
		}
		full := joinPath(dir, st.Name)
		if st.IsDir {
			if !accepts(dirFilter, full) {
				continue
			}
			sub, err := sh.listLocked(ctx, full, fileFilter, dirFilter, next)
			if err != nil {
				return nil, err
			}
			entries = append(entries, sub...)
			entries = append(entries, newDirEntry(full, st))
			continue
		}
		if accepts(fileFilter, st.Name) {
			entries = append(entries, newDirEntry(full, st))
		}
	}
	return entries, nil
}

// Stat returns the directory entry describing path. The share root is
// reported as an unnamed directory.
func (sh *Share) Stat(ctx context.Context, p string) (DirEntry, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrTraversal, "stat", p)
	if err != nil {
		return DirEntry{}, err
	}
	return sh.statLocked(ctx, clean)
}

func (sh *Share) statLocked(ctx context.Context, p string) (DirEntry, error) {
	if p == "" {
		return newDirEntry("", Stat{IsDir: true, Attributes: FileAttributeDirectory}), nil
	}
	stats, err := sh.proto.Find(ctx, sh.tid, findPattern(dirName(p)))
	if err != nil {
		return DirEntry{}, sh.fail(ErrTraversal, "stat", p, err)
	}
	name := baseName(p)
	for _, st := range stats {
		if strings.EqualFold(st.Name, name) {
			return newDirEntry(joinPath(dirName(p), st.Name), st), nil
		}
	}
	return DirEntry{}, sh.fail(ErrTraversal, "stat", p, &StatusError{Code: StatusObjectNameNotFound})
}

// GetFileContent reads the whole file. On failure the bytes read so far
// are discarded.
func (sh *Share) GetFileContent(ctx context.Context, p string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := sh.ReadFileTo(ctx, p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFileTo streams the file into w in chunks and returns the number of
// bytes copied. The handle is closed on every path.
func (sh *Share) ReadFileTo(ctx context.Context, p string, w io.Writer) (int64, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrFileRead, "read", p)
	if err != nil {
		return 0, err
	}
	h, err := sh.openLocked(ctx, clean, ModRO, DispositionOpen)
	if err != nil {
		return 0, err
	}

	total, err := sh.readAllLocked(ctx, h, w)
	if cerr := sh.closeLocked(ctx, h); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return total, err
	}
	sh.logf("Read %d bytes from %s", total, uncPath(sh.server, sh.name, clean))
	return total, nil
}

func (sh *Share) readAllLocked(ctx context.Context, h FileHandle, w io.Writer) (int64, error) {
	buf := make([]byte, sh.readChunk)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, sh.fail(ErrFileRead, "read", h.Path, err)
		}
		n, err := sh.proto.Read(ctx, h.ID, buf)
		if err != nil {
			return total, sh.fail(ErrFileRead, "read", h.Path, err)
		}
		if n <= 0 {
			return total, nil
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return total, sh.fail(ErrFileRead, "read", h.Path, err)
		}
		total += int64(n)
	}
}

// WriteFileContent replaces the content of path with data, creating the
// file when missing.
func (sh *Share) WriteFileContent(ctx context.Context, p string, data []byte) error {
	_, err := sh.WriteFileFrom(ctx, p, bytes.NewReader(data))
	return err
}

// WriteFileFrom replaces the content of path with everything read from r.
// A failed write leaves whatever was already written on the server.
func (sh *Share) WriteFileFrom(ctx context.Context, p string, r io.Reader) (int64, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrFileWrite, "write", p)
	if err != nil {
		return 0, err
	}
	return sh.writeLocked(ctx, clean, r, DispositionOverwriteIf, false)
}

// AppendFileContent appends data to path, creating the file when missing.
func (sh *Share) AppendFileContent(ctx context.Context, p string, data []byte) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrFileWrite, "append", p)
	if err != nil {
		return err
	}
	_, err = sh.writeLocked(ctx, clean, bytes.NewReader(data), DispositionOpenIf, true)
	return err
}

func (sh *Share) writeLocked(ctx context.Context, p string, r io.Reader, disposition Disposition, appendMode bool) (int64, error) {
	h, err := sh.openLocked(ctx, p, ModRW, disposition)
	if err != nil {
		return 0, err
	}

	var total int64
	if appendMode {
		if _, err = sh.proto.Seek(ctx, h.ID, 0, io.SeekEnd); err != nil {
			err = sh.fail(ErrFileWrite, "seek", p, err)
		}
	}
	if err == nil {
		total, err = sh.writeAllLocked(ctx, h, r)
	}
	if cerr := sh.closeLocked(ctx, h); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return total, err
	}
	sh.logf("Wrote %d bytes to %s", total, uncPath(sh.server, sh.name, p))
	return total, nil
}

// writeAllLocked copies r to the open handle in chunks, advancing by the
// byte count the engine reports for each write.
func (sh *Share) writeAllLocked(ctx context.Context, h FileHandle, r io.Reader) (int64, error) {
	buf := make([]byte, sh.writeChunk)
	var total int64
	for {
		n, rerr := io.ReadFull(r, buf)
		if rerr != nil && !errors.Is(rerr, io.EOF) && !errors.Is(rerr, io.ErrUnexpectedEOF) {
			var opErr *OpError
			if errors.As(rerr, &opErr) {
				return total, rerr
			}
			return total, sh.fail(ErrFileWrite, "write", h.Path, rerr)
		}
		for off := 0; off < n; {
			if err := ctx.Err(); err != nil {
				return total, sh.fail(ErrFileWrite, "write", h.Path, err)
			}
			w, err := sh.proto.Write(ctx, h.ID, buf[off:n])
			if err != nil {
				return total, sh.fail(ErrFileWrite, "write", h.Path, err)
			}
			if w <= 0 {
				return total, sh.fail(ErrFileWrite, "write", h.Path, io.ErrShortWrite)
			}
			off += w
			total += int64(w)
		}
		if rerr != nil {
			return total, nil
		}
	}
}

// RemoveFile deletes a single file.
func (sh *Share) RemoveFile(ctx context.Context, p string) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrFileRemove, "remove", p)
	if err != nil {
		return err
	}
	return sh.removeFileLocked(ctx, clean)
}

func (sh *Share) removeFileLocked(ctx context.Context, p string) error {
	// Our own open handles would block the delete.
	for _, id := range sh.handles.forPath(p) {
		if err := sh.closeLocked(ctx, FileHandle{ID: id, Path: p}); err != nil {
			sh.logf("Closing open handle before removing %s: %v", uncPath(sh.server, sh.name, p), err)
		}
	}
	if err := sh.proto.RemoveFile(ctx, sh.tid, enginePath(p)); err != nil {
		return sh.fail(ErrFileRemove, "remove", p, err)
	}
	sh.logf("Removed %s", uncPath(sh.server, sh.name, p))
	return nil
}

// Rename moves a file or directory within the Share. An existing target
// is not replaced.
func (sh *Share) Rename(ctx context.Context, oldpath, newpath string) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	from, err := sh.prepare(ErrRename, "rename", oldpath)
	if err != nil {
		return err
	}
	to, err := sh.prepare(ErrRename, "rename", newpath)
	if err != nil {
		return err
	}
	if from == "" || to == "" {
		return sh.fail(ErrRename, "rename", from, ErrInvalidPath)
	}
	if err := sh.proto.Rename(ctx, sh.tid, enginePath(from), enginePath(to)); err != nil {
		return sh.fail(ErrRename, "rename", from, err)
	}
	sh.logf("Renamed %s to %s", uncPath(sh.server, sh.name, from), to)
	return nil
}

// SetTimes sets the access and modification times of path. A zero time
// leaves that timestamp unchanged.
func (sh *Share) SetTimes(ctx context.Context, p string, atime, mtime time.Time) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrFileWrite, "chtimes", p)
	if err != nil {
		return err
	}
	if err := sh.proto.SetTimes(ctx, sh.tid, enginePath(clean), atime, mtime); err != nil {
		return sh.fail(ErrFileWrite, "chtimes", clean, err)
	}
	return nil
}

// CreateDirectory creates one directory. The parent must exist.
func (sh *Share) CreateDirectory(ctx context.Context, p string) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrDirectory, "mkdir", p)
	if err != nil {
		return err
	}
	if clean == "" {
		return sh.fail(ErrDirectory, "mkdir", clean, ErrInvalidPath)
	}
	if err := sh.proto.Mkdir(ctx, sh.tid, enginePath(clean)); err != nil {
		return sh.fail(ErrDirectory, "mkdir", clean, err)
	}
	sh.logf("Created directory %s", uncPath(sh.server, sh.name, clean))
	return nil
}

// RemoveEmptyDirectory removes a directory that has no entries.
func (sh *Share) RemoveEmptyDirectory(ctx context.Context, p string) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrDirectory, "rmdir", p)
	if err != nil {
		return err
	}
	return sh.rmdirLocked(ctx, clean)
}

func (sh *Share) rmdirLocked(ctx context.Context, p string) error {
	if p == "" {
		return sh.fail(ErrDirectory, "rmdir", p, ErrInvalidPath)
	}
	if err := sh.proto.Rmdir(ctx, sh.tid, enginePath(p)); err != nil {
		return sh.fail(ErrDirectory, "rmdir", p, err)
	}
	sh.logf("Removed directory %s", uncPath(sh.server, sh.name, p))
	return nil
}

// RemoveDirectory removes path and everything below it, children before
// their parent. The first failure stops the removal; entries already
// removed stay removed.
func (sh *Share) RemoveDirectory(ctx context.Context, p string) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	clean, err := sh.prepare(ErrDirectory, "rmdir", p)
	if err != nil {
		return err
	}
	if clean == "" {
		return sh.fail(ErrDirectory, "rmdir", clean, ErrInvalidPath)
	}

	entries, err := sh.listLocked(ctx, clean, nil, nil, DepthUnlimited)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return sh.fail(ErrDirectory, "rmdir", e.Path, err)
		}
		if e.IsDir() {
			err = sh.rmdirLocked(ctx, e.Path)
		} else {
			err = sh.removeFileLocked(ctx, e.Path)
		}
		if err != nil {
			return err
		}
	}
	return sh.rmdirLocked(ctx, clean)
}

// CopyLocalFileToRemote uploads a local file, replacing remotePath.
func (sh *Share) CopyLocalFileToRemote(ctx context.Context, localPath, remotePath string) (int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, &OpError{Kind: ErrFileWrite, Op: "copy", Path: localPath, Err: err}
	}
	defer f.Close()
	return sh.WriteFileFrom(ctx, remotePath, f)
}

// CopyRemoteFileToLocal downloads remotePath into a local file, creating
// or replacing it. The download goes to a temporary file next to
// localPath, so a failed copy leaves an existing local file untouched.
func (sh *Share) CopyRemoteFileToLocal(ctx context.Context, remotePath, localPath string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(localPath), "."+filepath.Base(localPath)+".*")
	if err != nil {
		return 0, &OpError{Kind: ErrFileRead, Op: "copy", Path: localPath, Err: err}
	}
	defer os.Remove(tmp.Name())

	n, err := sh.ReadFileTo(ctx, remotePath, tmp)
	if cerr := tmp.Close(); cerr != nil && err == nil {
		err = &OpError{Kind: ErrFileRead, Op: "copy", Path: localPath, Err: cerr}
	}
	if err != nil {
		return n, err
	}

	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(localPath); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return n, &OpError{Kind: ErrFileRead, Op: "copy", Path: localPath, Err: err}
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		return n, &OpError{Kind: ErrFileRead, Op: "copy", Path: localPath, Err: err}
	}
	return n, nil
}

// CopyRemoteFileToRemote copies src to dst within the Share, streaming
// chunk by chunk. A failure may leave dst truncated.
func (sh *Share) CopyRemoteFileToRemote(ctx context.Context, src, dst string) (int64, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	srcClean, err := sh.prepare(ErrFileRead, "copy", src)
	if err != nil {
		return 0, err
	}
	dstClean, err := sh.prepare(ErrFileWrite, "copy", dst)
	if err != nil {
		return 0, err
	}
	if strings.EqualFold(srcClean, dstClean) {
		// Opening dst for overwrite would truncate the source.
		return 0, sh.fail(ErrFileWrite, "copy", dstClean, ErrInvalidPath)
	}

	in, err := sh.openLocked(ctx, srcClean, ModRO, DispositionOpen)
	if err != nil {
		return 0, err
	}
	out, err := sh.openLocked(ctx, dstClean, ModRW, DispositionOverwriteIf)
	if err != nil {
		sh.closeLocked(ctx, in)
		return 0, err
	}

	total, err := sh.writeAllLocked(ctx, out, &handleReader{ctx: ctx, sh: sh, h: in})
	if cerr := sh.closeLocked(ctx, in); cerr != nil && err == nil {
		err = cerr
	}
	if cerr := sh.closeLocked(ctx, out); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return total, err
	}
	sh.logf("Copied %d bytes from %s to %s", total, srcClean, dstClean)
	return total, nil
}

// handleReader reads an open handle in engine sized chunks. Caller must
// hold the Share lock.
type handleReader struct {
	ctx context.Context
	sh  *Share
	h   FileHandle
}

func (r *handleReader) Read(p []byte) (int, error) {
	if len(p) > r.sh.readChunk {
		p = p[:r.sh.readChunk]
	}
	n, err := r.sh.proto.Read(r.ctx, r.h.ID, p)
	if err != nil {
		return 0, r.sh.fail(ErrFileRead, "read", r.h.Path, err)
	}
	if n <= 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Name returns the share name.
func (sh *Share) Name() string { return sh.name }

// Server returns the name of the server the share lives on.
func (sh *Share) Server() string { return sh.server }

// Session returns the owning Session.
func (sh *Share) Session() *Session { return sh.session }

// State returns the attachment state.
func (sh *Share) State() ShareState {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.state
}

// OpenHandles returns the number of handles the Share currently owns.
func (sh *Share) OpenHandles() int {
	return sh.handles.count()
}

func (sh *Share) logf(format string, v ...interface{}) {
	if sh.logger != nil {
		sh.logger.Printf(format, v...)
	}
}
