package smbclient

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/absfs/absfs"
)

// FileSystem returns an absfs.FileSystem view of the share. Paths are
// slash separated and rooted at the share; every call runs under ctx.
// Chmod and Chown are not supported.
func (sh *Share) FileSystem(ctx context.Context) absfs.FileSystem {
	return absfs.ExtendFiler(&shareFiler{ctx: ctx, sh: sh})
}

// shareFiler implements absfs.Filer over a Share.
type shareFiler struct {
	ctx context.Context
	sh  *Share
}

var (
	_ absfs.Filer    = (*shareFiler)(nil)
	_ absfs.Seekable = (*shareFile)(nil)
	_ absfs.Seekable = (*shareDir)(nil)
)

var (
	errIsDir    = errors.New("is a directory")
	errNotDir   = errors.New("not a directory")
	errNotEmpty = errors.New("directory not empty")
)

// convertError maps library failures onto the io/fs sentinels that
// filesystem callers test for.
func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fs.ErrNotExist
	case errors.Is(err, fs.ErrExist):
		return fs.ErrExist
	case errors.Is(err, fs.ErrPermission):
		return fs.ErrPermission
	case errors.Is(err, fs.ErrClosed):
		return fs.ErrClosed
	case errors.Is(err, ErrInvalidPath):
		return fs.ErrInvalid
	case statusIs(err, StatusNotADirectory):
		return errNotDir
	case statusIs(err, StatusFileIsADirectory):
		return errIsDir
	case statusIs(err, StatusDirectoryNotEmpty):
		return errNotEmpty
	}
	return err
}

func statusIs(err error, code NTStatus) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func pathError(op, name string, err error) error {
	return &fs.PathError{Op: op, Path: name, Err: convertError(err)}
}

// slashPath cleans name into an absolute slash path.
func slashPath(name string) string {
	return path.Clean("/" + strings.ReplaceAll(name, `\`, "/"))
}

// accessForFlag picks the access mask matching the os.O_* access mode.
func accessForFlag(flag int) AccessMask {
	switch flag & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR) {
	case os.O_WRONLY:
		return ModWO
	case os.O_RDWR:
		return ModRW
	}
	return ModRO
}

// dispositionForFlag maps the os.O_* creation flags onto a disposition.
func dispositionForFlag(flag int) Disposition {
	create := flag&os.O_CREATE != 0
	switch {
	case create && flag&os.O_EXCL != 0:
		return DispositionCreate
	case create && flag&os.O_TRUNC != 0:
		return DispositionOverwriteIf
	case create:
		return DispositionOpenIf
	case flag&os.O_TRUNC != 0:
		return DispositionOverwrite
	}
	return DispositionOpen
}

func (f *shareFiler) stat(name string) (os.FileInfo, error) {
	entry, err := f.sh.Stat(f.ctx, name)
	if err != nil {
		return nil, err
	}
	if entry.Name() == "" {
		return rootInfo{entry}, nil
	}
	return entry, nil
}

func (f *shareFiler) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	info, err := f.stat(name)
	switch {
	case err == nil && info.IsDir():
		if flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0 {
			return nil, pathError("open", name, fs.ErrExist)
		}
		if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
			return nil, pathError("open", name, errIsDir)
		}
		return absfs.ExtendSeekable(&shareDir{fsys: f, name: name, info: info}), nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, pathError("open", name, err)
	}

	file, err := f.sh.OpenWith(f.ctx, name, accessForFlag(flag), dispositionForFlag(flag))
	if err != nil {
		return nil, pathError("open", name, err)
	}
	return absfs.ExtendSeekable(&shareFile{
		file:   file,
		name:   name,
		append: flag&os.O_APPEND != 0,
	}), nil
}

func (f *shareFiler) Mkdir(name string, perm os.FileMode) error {
	if err := f.sh.CreateDirectory(f.ctx, name); err != nil {
		return pathError("mkdir", name, err)
	}
	return nil
}

// MkdirAll creates name and any missing parents.
func (f *shareFiler) MkdirAll(name string, perm os.FileMode) error {
	p := slashPath(name)
	if p == "/" {
		return nil
	}
	info, err := f.stat(p)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return pathError("mkdir", name, errNotDir)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return pathError("mkdir", name, err)
	}
	if err := f.MkdirAll(path.Dir(p), perm); err != nil {
		return err
	}
	if err := f.sh.CreateDirectory(f.ctx, p); err != nil && !errors.Is(err, fs.ErrExist) {
		return pathError("mkdir", name, err)
	}
	return nil
}

func (f *shareFiler) Remove(name string) error {
	info, err := f.stat(name)
	if err != nil {
		return pathError("remove", name, err)
	}
	if info.IsDir() {
		err = f.sh.RemoveEmptyDirectory(f.ctx, name)
	} else {
		err = f.sh.RemoveFile(f.ctx, name)
	}
	if err != nil {
		return pathError("remove", name, err)
	}
	return nil
}

// RemoveAll removes name and everything below it. A missing name is not
// an error.
func (f *shareFiler) RemoveAll(name string) error {
	info, err := f.stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return pathError("removeall", name, err)
	}
	if info.IsDir() {
		err = f.sh.RemoveDirectory(f.ctx, name)
	} else {
		err = f.sh.RemoveFile(f.ctx, name)
	}
	if err != nil {
		return pathError("removeall", name, err)
	}
	return nil
}

// Rename moves oldpath to newpath, replacing newpath when it is a file.
func (f *shareFiler) Rename(oldpath, newpath string) error {
	err := f.sh.Rename(f.ctx, oldpath, newpath)
	if errors.Is(err, fs.ErrExist) && !strings.EqualFold(slashPath(oldpath), slashPath(newpath)) {
		info, serr := f.stat(newpath)
		if serr == nil && !info.IsDir() {
			if err = f.sh.RemoveFile(f.ctx, newpath); err == nil {
				err = f.sh.Rename(f.ctx, oldpath, newpath)
			}
		}
	}
	if err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: convertError(err)}
	}
	return nil
}

func (f *shareFiler) Stat(name string) (os.FileInfo, error) {
	info, err := f.stat(name)
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	return info, nil
}

func (f *shareFiler) Chmod(name string, mode os.FileMode) error {
	return pathError("chmod", name, absfs.ErrNotImplemented)
}

func (f *shareFiler) Chtimes(name string, atime time.Time, mtime time.Time) error {
	if err := f.sh.SetTimes(f.ctx, name, atime, mtime); err != nil {
		return pathError("chtimes", name, err)
	}
	return nil
}

func (f *shareFiler) Chown(name string, uid, gid int) error {
	return pathError("chown", name, absfs.ErrNotImplemented)
}

func (f *shareFiler) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := f.list(name)
	if err != nil {
		return nil, pathError("readdir", name, err)
	}
	out := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		out[i] = fs.FileInfoToDirEntry(e)
	}
	return out, nil
}

func (f *shareFiler) ReadFile(name string) ([]byte, error) {
	data, err := f.sh.GetFileContent(f.ctx, name)
	if err != nil {
		return nil, pathError("read", name, err)
	}
	return data, nil
}

func (f *shareFiler) Sub(dir string) (fs.FS, error) {
	return absfs.FilerToFS(f, dir)
}

// Truncate resizes the named file without going through a handle the
// caller can see.
func (f *shareFiler) Truncate(name string, size int64) error {
	file, err := f.sh.OpenWith(f.ctx, name, ModWO, DispositionOpen)
	if err != nil {
		return pathError("truncate", name, err)
	}
	if err := file.Truncate(size); err != nil {
		_ = file.Close()
		return pathError("truncate", name, err)
	}
	if err := file.Close(); err != nil {
		return pathError("truncate", name, err)
	}
	return nil
}

// list returns the direct children of a directory sorted by name.
func (f *shareFiler) list(name string) ([]DirEntry, error) {
	info, err := f.stat(name)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errNotDir
	}
	entries, err := f.sh.ListFiles(f.ctx, name, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// rootInfo names the share root "/".
type rootInfo struct {
	DirEntry
}

func (rootInfo) Name() string { return "/" }

// shareFile is an open regular file.
type shareFile struct {
	file   *File
	name   string
	append bool
	closed bool
}

func (f *shareFile) Name() string { return f.name }

func (f *shareFile) Read(p []byte) (int, error) {
	n, err := f.file.Read(p)
	if err != nil && err != io.EOF {
		return n, pathError("read", f.name, err)
	}
	return n, err
}

func (f *shareFile) Write(p []byte) (int, error) {
	if f.append {
		if _, err := f.file.Seek(0, io.SeekEnd); err != nil {
			return 0, pathError("write", f.name, err)
		}
	}
	n, err := f.file.Write(p)
	if err != nil {
		return n, pathError("write", f.name, err)
	}
	return n, nil
}

func (f *shareFile) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.file.Seek(offset, whence)
	if err != nil {
		return pos, pathError("seek", f.name, err)
	}
	return pos, nil
}

func (f *shareFile) Truncate(size int64) error {
	if err := f.file.Truncate(size); err != nil {
		return pathError("truncate", f.name, err)
	}
	return nil
}

func (f *shareFile) Stat() (os.FileInfo, error) {
	entry, err := f.file.Stat()
	if err != nil {
		return nil, pathError("stat", f.name, err)
	}
	return entry, nil
}

// Sync is a no-op; writes go to the server as they are made.
func (f *shareFile) Sync() error {
	if f.closed {
		return pathError("sync", f.name, fs.ErrClosed)
	}
	return nil
}

func (f *shareFile) Readdir(int) ([]os.FileInfo, error) {
	return nil, pathError("readdir", f.name, errNotDir)
}

func (f *shareFile) ReadDir(int) ([]fs.DirEntry, error) {
	return nil, pathError("readdir", f.name, errNotDir)
}

func (f *shareFile) Close() error {
	if f.closed {
		return pathError("close", f.name, fs.ErrClosed)
	}
	f.closed = true
	if err := f.file.Close(); err != nil {
		return pathError("close", f.name, err)
	}
	return nil
}

// shareDir is an open directory. Its listing is fetched on first use.
type shareDir struct {
	fsys    *shareFiler
	name    string
	info    os.FileInfo
	entries []DirEntry
	loaded  bool
	pos     int
	closed  bool
}

func (d *shareDir) Name() string { return d.name }

func (d *shareDir) Read([]byte) (int, error) {
	return 0, pathError("read", d.name, errIsDir)
}

func (d *shareDir) Write([]byte) (int, error) {
	return 0, pathError("write", d.name, errIsDir)
}

// Seek only supports rewinding the listing.
func (d *shareDir) Seek(offset int64, whence int) (int64, error) {
	if offset == 0 && whence == io.SeekStart {
		d.pos = 0
	}
	return 0, nil
}

func (d *shareDir) Truncate(int64) error {
	return pathError("truncate", d.name, errIsDir)
}

func (d *shareDir) Stat() (os.FileInfo, error) {
	if d.closed {
		return nil, pathError("stat", d.name, fs.ErrClosed)
	}
	return d.info, nil
}

func (d *shareDir) Sync() error { return nil }

func (d *shareDir) Close() error {
	if d.closed {
		return pathError("close", d.name, fs.ErrClosed)
	}
	d.closed = true
	return nil
}

// next returns up to n remaining entries, or all of them when n <= 0.
func (d *shareDir) next(n int) ([]DirEntry, error) {
	if d.closed {
		return nil, pathError("readdir", d.name, fs.ErrClosed)
	}
	if !d.loaded {
		entries, err := d.fsys.list(d.name)
		if err != nil {
			return nil, pathError("readdir", d.name, err)
		}
		d.entries, d.loaded = entries, true
	}
	rest := d.entries[d.pos:]
	if n > 0 {
		if len(rest) == 0 {
			return nil, io.EOF
		}
		if n < len(rest) {
			rest = rest[:n]
		}
	}
	d.pos += len(rest)
	return rest, nil
}

func (d *shareDir) Readdir(n int) ([]os.FileInfo, error) {
	entries, err := d.next(n)
	if err != nil {
		return []os.FileInfo{}, err
	}
	out := make([]os.FileInfo, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out, nil
}

func (d *shareDir) ReadDir(n int) ([]fs.DirEntry, error) {
	entries, err := d.next(n)
	if err != nil {
		return []fs.DirEntry{}, err
	}
	out := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		out[i] = fs.FileInfoToDirEntry(e)
	}
	return out, nil
}

// Readdirnames returns entry names with the same paging as Readdir.
func (d *shareDir) Readdirnames(n int) ([]string, error) {
	entries, err := d.next(n)
	if err != nil {
		return []string{}, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
