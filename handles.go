package smbclient

import (
	"sort"
	"sync"
	"time"
)

// FileHandle is an open file on a Share. It is a plain value; closing it
// through Share.CloseFile resets ID to InvalidFileID.
type FileHandle struct {
	ID     FileID     // Engine file identifier
	Path   string     // Share-relative path (for logging)
	Access AccessMask // Access requested at open
}

// Valid reports whether the handle still refers to an open file.
func (h FileHandle) Valid() bool {
	return h.ID != InvalidFileID
}

type openHandle struct {
	FileHandle
	openedAt time.Time
}

// handleSet tracks the files a Share currently has open.
// Thread-safe so that counts can be read while the Share is busy.
type handleSet struct {
	mu      sync.RWMutex
	handles map[FileID]*openHandle
	byPath  map[string][]FileID // Track handles by path
}

func newHandleSet() *handleSet {
	return &handleSet{
		handles: make(map[FileID]*openHandle),
		byPath:  make(map[string][]FileID),
	}
}

// add registers a freshly opened handle.
func (m *handleSet) add(h FileHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles[h.ID] = &openHandle{FileHandle: h, openedAt: time.Now()}
	m.byPath[h.Path] = append(m.byPath[h.Path], h.ID)
}

// remove unregisters id and reports whether it was owned.
func (m *handleSet) remove(id FileID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	oh, ok := m.handles[id]
	if !ok {
		return false
	}
	delete(m.handles, id)

	ids := m.byPath[oh.Path]
	for i, other := range ids {
		if other == id {
			m.byPath[oh.Path] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(m.byPath[oh.Path]) == 0 {
		delete(m.byPath, oh.Path)
	}
	return true
}

// contains reports whether id is owned.
func (m *handleSet) contains(id FileID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handles[id]
	return ok
}

// all returns the owned handles, oldest first.
func (m *handleSet) all() []FileHandle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	open := make([]*openHandle, 0, len(m.handles))
	for _, oh := range m.handles {
		open = append(open, oh)
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].openedAt.Equal(open[j].openedAt) {
			return open[i].ID < open[j].ID
		}
		return open[i].openedAt.Before(open[j].openedAt)
	})

	out := make([]FileHandle, len(open))
	for i, oh := range open {
		out[i] = oh.FileHandle
	}
	return out
}

// forPath returns the ids open on path.
func (m *handleSet) forPath(p string) []FileID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FileID(nil), m.byPath[p]...)
}

// count returns the number of open handles.
func (m *handleSet) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}
