package smbclient

import (
	"context"
	"io"
	"io/fs"
)

// File is an open remote file. It implements io.Reader, io.Writer,
// io.Seeker and io.Closer over one handle of its Share.
//
// Every call on a File is bounded by the context passed to Share.Open.
// A File is invalidated when its Share disconnects.
type File struct {
	share  *Share
	ctx    context.Context
	handle FileHandle
}

// Open opens path as a File. Write access creates the file when missing.
func (sh *Share) Open(ctx context.Context, p string, access AccessMask) (*File, error) {
	h, err := sh.OpenFile(ctx, p, access)
	if err != nil {
		return nil, err
	}
	return &File{share: sh, ctx: ctx, handle: h}, nil
}

// Name returns the share-relative path the File was opened with.
func (f *File) Name() string { return f.handle.Path }

// Handle returns the underlying handle.
func (f *File) Handle() FileHandle { return f.handle }

// live checks the File is still owned by an attached Share.
// Caller must hold the Share lock.
func (f *File) live(kind error, op string) error {
	if !f.handle.Valid() {
		return fs.ErrClosed
	}
	if err := f.share.attachedLocked(kind, op, f.handle.Path); err != nil {
		return err
	}
	if !f.share.handles.contains(f.handle.ID) {
		return fs.ErrClosed
	}
	return nil
}

// Read reads up to len(p) bytes, one engine call per chunk.
func (f *File) Read(p []byte) (int, error) {
	sh := f.share
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if err := f.live(ErrFileRead, "read"); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) > sh.readChunk {
		p = p[:sh.readChunk]
	}
	n, err := sh.proto.Read(f.ctx, f.handle.ID, p)
	if err != nil {
		return 0, sh.fail(ErrFileRead, "read", f.handle.Path, err)
	}
	if n <= 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write writes all of p in chunks.
func (f *File) Write(p []byte) (int, error) {
	sh := f.share
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if err := f.live(ErrFileWrite, "write"); err != nil {
		return 0, err
	}
	written := 0
	for written < len(p) {
		end := written + sh.writeChunk
		if end > len(p) {
			end = len(p)
		}
		n, err := sh.proto.Write(f.ctx, f.handle.ID, p[written:end])
		if err != nil {
			return written, sh.fail(ErrFileWrite, "write", f.handle.Path, err)
		}
		if n <= 0 {
			return written, sh.fail(ErrFileWrite, "write", f.handle.Path, io.ErrShortWrite)
		}
		written += n
	}
	return written, nil
}

// Seek sets the offset for the next Read or Write.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	sh := f.share
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if err := f.live(ErrFileRead, "seek"); err != nil {
		return 0, err
	}
	pos, err := sh.proto.Seek(f.ctx, f.handle.ID, offset, whence)
	if err != nil {
		return 0, sh.fail(ErrFileRead, "seek", f.handle.Path, err)
	}
	return pos, nil
}

// Truncate changes the size of the file. The offset is unchanged.
func (f *File) Truncate(size int64) error {
	sh := f.share
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if err := f.live(ErrFileWrite, "truncate"); err != nil {
		return err
	}
	if err := sh.proto.Truncate(f.ctx, f.handle.ID, size); err != nil {
		return sh.fail(ErrFileWrite, "truncate", f.handle.Path, err)
	}
	return nil
}

// Stat describes the file by listing its parent directory.
func (f *File) Stat() (DirEntry, error) {
	sh := f.share
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if err := f.live(ErrTraversal, "stat"); err != nil {
		return DirEntry{}, err
	}
	return sh.statLocked(f.ctx, f.handle.Path)
}

// Close releases the handle. Closing twice is a no-op.
func (f *File) Close() error {
	return f.share.CloseFile(f.ctx, &f.handle)
}

var (
	_ io.ReadWriteSeeker = (*File)(nil)
	_ io.Closer          = (*File)(nil)
)
