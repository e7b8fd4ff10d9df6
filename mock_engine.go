package smbclient

import (
	"context"
	"io"
	"net/netip"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockEngine provides an in-memory SMB server simulation for testing.
// It maintains virtual shares that can be populated with test data and
// tracks all operations for verification.
type MockEngine struct {
	mu sync.RWMutex

	// shares keyed by lower-cased name, in the order they were added
	shares     map[string]*mockTree
	shareOrder []string

	// credentials; an empty users map accepts any login
	users      map[string]string
	allowGuest bool

	// errors to inject for specific operations
	errorOnPath map[string]error
	errorOnOp   map[string]error

	maxRead    int // reported MaxReadSize
	maxWrite   int // reported MaxWriteSize
	writeLimit int // silent per-call write cap, simulates short writes

	sessions []*mockSession

	// operation tracking for verification (separate mutex to avoid lock contention)
	opMu       sync.Mutex
	operations []MockOperation
}

type mockTree struct {
	name  string
	files map[string]*mockFileData
}

// mockFileData represents a file or directory in a mock share.
type mockFileData struct {
	name     string
	content  []byte
	isDir    bool
	attrs    uint32
	created  time.Time
	accessed time.Time
	modTime  time.Time
}

// MockOperation records an operation performed on the mock engine.
type MockOperation struct {
	Op   string
	Path string
	Args []interface{}
	Time time.Time
}

// NewMockEngine creates a new mock engine with a single share named "testshare".
func NewMockEngine() *MockEngine {
	m := &MockEngine{
		shares:      make(map[string]*mockTree),
		users:       make(map[string]string),
		errorOnPath: make(map[string]error),
		errorOnOp:   make(map[string]error),
		operations:  make([]MockOperation, 0),
	}
	m.addShareLocked("testshare")
	return m
}

// AddShare adds a share to the mock server.
func (m *MockEngine) AddShare(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addShareLocked(name)
}

// addShareLocked adds a share without acquiring lock (caller must hold lock).
func (m *MockEngine) addShareLocked(name string) {
	key := strings.ToLower(name)
	if _, ok := m.shares[key]; ok {
		return
	}
	now := time.Now()
	m.shares[key] = &mockTree{
		name: name,
		files: map[string]*mockFileData{
			`\`: {name: "", isDir: true, attrs: FileAttributeDirectory, created: now, accessed: now, modTime: now},
		},
	}
	m.shareOrder = append(m.shareOrder, name)
}

// AddUser registers an account. Once any account exists, logins must match one.
func (m *MockEngine) AddUser(user, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[strings.ToLower(user)] = password
}

// AllowGuest makes unknown accounts fall back to a guest session instead
// of failing with STATUS_LOGON_FAILURE.
func (m *MockEngine) AllowGuest(allow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowGuest = allow
}

// AddFile adds a file to a share, creating parent directories.
func (m *MockEngine) AddFile(share, p string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tree := m.tree(share)
	key := normalizeMockPath(p)
	now := time.Now()
	tree.files[strings.ToLower(key)] = &mockFileData{
		name:     pathBase(key),
		content:  append([]byte(nil), content...),
		attrs:    FileAttributeArchive,
		created:  now,
		accessed: now,
		modTime:  now,
	}
	tree.ensureParentDirs(key)
}

// AddDir adds a directory to a share, creating parent directories.
func (m *MockEngine) AddDir(share, p string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tree := m.tree(share)
	key := normalizeMockPath(p)
	now := time.Now()
	tree.files[strings.ToLower(key)] = &mockFileData{
		name:     pathBase(key),
		isDir:    true,
		attrs:    FileAttributeDirectory,
		created:  now,
		accessed: now,
		modTime:  now,
	}
	tree.ensureParentDirs(key)
}

func (m *MockEngine) tree(share string) *mockTree {
	key := strings.ToLower(share)
	if _, ok := m.shares[key]; !ok {
		m.addShareLocked(share)
	}
	return m.shares[key]
}

// SetError sets an error to return for any operation on a specific path.
func (m *MockEngine) SetError(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorOnPath[strings.ToLower(normalizeMockPath(p))] = err
}

// SetOperationError sets an error to return for a specific operation type.
func (m *MockEngine) SetOperationError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorOnOp[op] = err
}

// FailOperation makes op fail with the given NT status.
func (m *MockEngine) FailOperation(op string, code NTStatus) {
	m.SetOperationError(op, &StatusError{Code: code})
}

// ClearErrors clears all injected errors.
func (m *MockEngine) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorOnPath = make(map[string]error)
	m.errorOnOp = make(map[string]error)
}

// SetTransferLimits sets the MaxReadSize and MaxWriteSize the engine reports.
func (m *MockEngine) SetTransferLimits(maxRead, maxWrite int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxRead = maxRead
	m.maxWrite = maxWrite
}

// SetWriteLimit caps the bytes accepted by each write without reporting
// the cap, so callers observe short writes.
func (m *MockEngine) SetWriteLimit(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeLimit = n
}

// GetOperations returns all recorded operations.
func (m *MockEngine) GetOperations() []MockOperation {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	ops := make([]MockOperation, len(m.operations))
	copy(ops, m.operations)
	return ops
}

// OperationsOf returns the recorded operations whose Op is one of ops.
func (m *MockEngine) OperationsOf(ops ...string) []MockOperation {
	want := make(map[string]bool, len(ops))
	for _, op := range ops {
		want[op] = true
	}
	var out []MockOperation
	for _, op := range m.GetOperations() {
		if want[op.Op] {
			out = append(out, op)
		}
	}
	return out
}

// ClearOperations clears the operation history.
func (m *MockEngine) ClearOperations() {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.operations = make([]MockOperation, 0)
}

// GetFile returns the content of a file (for test verification).
func (m *MockEngine) GetFile(share, p string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tree, ok := m.shares[strings.ToLower(share)]
	if !ok {
		return nil, false
	}
	if f, ok := tree.files[strings.ToLower(normalizeMockPath(p))]; ok && !f.isDir {
		return append([]byte(nil), f.content...), true
	}
	return nil, false
}

// FileExists returns true if the file or directory exists.
func (m *MockEngine) FileExists(share, p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tree, ok := m.shares[strings.ToLower(share)]
	if !ok {
		return false
	}
	_, ok = tree.files[strings.ToLower(normalizeMockPath(p))]
	return ok
}

// SessionsCreated returns how many sessions NewSession handed out.
func (m *MockEngine) SessionsCreated() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LiveSessions returns how many sessions have not been destroyed.
func (m *MockEngine) LiveSessions() int {
	m.mu.RLock()
	sessions := append([]*mockSession(nil), m.sessions...)
	m.mu.RUnlock()

	n := 0
	for _, s := range sessions {
		s.mu.Lock()
		if !s.destroyed {
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// OpenHandles returns the number of file handles open across all sessions.
func (m *MockEngine) OpenHandles() int {
	m.mu.RLock()
	sessions := append([]*mockSession(nil), m.sessions...)
	m.mu.RUnlock()

	n := 0
	for _, s := range sessions {
		s.mu.Lock()
		n += len(s.files)
		s.mu.Unlock()
	}
	return n
}

// recordOp records an operation for later verification.
func (m *MockEngine) recordOp(op, p string, args ...interface{}) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.operations = append(m.operations, MockOperation{
		Op:   op,
		Path: p,
		Args: args,
		Time: time.Now(),
	})
}

// checkError checks for injected errors. Caller must hold mu.
func (m *MockEngine) checkError(op, p string) error {
	if err, ok := m.errorOnOp[op]; ok {
		return err
	}
	if p != "" {
		if err, ok := m.errorOnPath[strings.ToLower(p)]; ok {
			return err
		}
	}
	return nil
}

// ensureParentDirs ensures all parent directories exist.
func (t *mockTree) ensureParentDirs(p string) {
	dir := pathDir(p)
	if dir == p || dir == `\` {
		return
	}
	key := strings.ToLower(dir)
	if _, ok := t.files[key]; !ok {
		now := time.Now()
		t.files[key] = &mockFileData{
			name:     pathBase(dir),
			isDir:    true,
			attrs:    FileAttributeDirectory,
			created:  now,
			accessed: now,
			modTime:  now,
		}
		t.ensureParentDirs(dir)
	}
}

func (t *mockTree) lookup(p string) (*mockFileData, bool) {
	f, ok := t.files[strings.ToLower(p)]
	return f, ok
}

func (t *mockTree) children(dir string) []*mockFileData {
	prefix := strings.ToLower(dir)
	if prefix != `\` {
		prefix += `\`
	}
	var out []*mockFileData
	for key, f := range t.files {
		if key == `\` || !strings.HasPrefix(key, prefix) {
			continue
		}
		if strings.Contains(key[len(prefix):], `\`) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (f *mockFileData) stat() Stat {
	return Stat{
		Name:         f.name,
		IsDir:        f.isDir,
		Size:         int64(len(f.content)),
		AllocSize:    (int64(len(f.content)) + 4095) &^ 4095,
		Attributes:   f.attrs,
		CreationTime: f.created,
		AccessTime:   f.accessed,
		WriteTime:    f.modTime,
		ChangeTime:   f.modTime,
	}
}

// normalizeMockPath converts a path to the mock's `\a\b` key form.
func normalizeMockPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = path.Clean("/" + p)
	return strings.ReplaceAll(p, "/", `\`)
}

// pathBase returns the last element of a `\a\b` path.
func pathBase(p string) string {
	if i := strings.LastIndex(p, `\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// pathDir returns all but the last element of a `\a\b` path.
func pathDir(p string) string {
	i := strings.LastIndex(p, `\`)
	if i <= 0 {
		return `\`
	}
	return p[:i]
}

// NewSession implements Engine.
func (m *MockEngine) NewSession() (EngineSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkError("newsession", ""); err != nil {
		return nil, err
	}
	m.recordOp("newsession", "")

	s := &mockSession{
		engine:   m,
		trees:    make(map[TreeID]*mockTree),
		files:    make(map[FileID]*mockHandle),
		nextTree: 1,
		nextFile: 1,
	}
	m.sessions = append(m.sessions, s)
	return s, nil
}

// mockSession implements EngineSession against a MockEngine.
type mockSession struct {
	engine *MockEngine

	mu         sync.Mutex
	serverName string
	addr       netip.AddrPort
	domain     string
	user       string
	password   string
	connected  bool
	loggedIn   bool
	guest      bool
	destroyed  bool

	trees    map[TreeID]*mockTree
	files    map[FileID]*mockHandle
	nextTree TreeID
	nextFile FileID
}

type mockHandle struct {
	tree   *mockTree
	path   string
	data   *mockFileData
	access AccessMask
	offset int64
}

func (s *mockSession) Connect(ctx context.Context, serverName string, addr netip.AddrPort, transport TransportKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.engine.mu.RLock()
	err := s.engine.checkError("connect", "")
	s.engine.mu.RUnlock()
	s.engine.recordOp("connect", serverName, addr, transport)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverName = serverName
	s.addr = addr
	s.connected = true
	return nil
}

func (s *mockSession) SetCredentials(domain, user, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = domain
	s.user = user
	s.password = password
	s.engine.recordOp("setcredentials", "", domain, user)
}

func (s *mockSession) Login(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.mu.RLock()
	defer s.engine.mu.RUnlock()

	s.engine.recordOp("login", "", s.domain, s.user)
	if !s.connected {
		return &StatusError{Code: StatusConnectionRefused}
	}
	if err := s.engine.checkError("login", ""); err != nil {
		return err
	}

	users := s.engine.users
	switch {
	case strings.EqualFold(s.user, "guest"):
		if !s.engine.allowGuest && len(users) > 0 {
			return &StatusError{Code: StatusLogonFailure}
		}
		s.guest = true
	case len(users) == 0:
	default:
		pw, ok := users[strings.ToLower(s.user)]
		switch {
		case ok && pw == s.password:
		case !ok && s.engine.allowGuest:
			s.guest = true
		default:
			return &StatusError{Code: StatusLogonFailure}
		}
	}
	s.loggedIn = true
	return nil
}

func (s *mockSession) IsGuest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guest
}

func (s *mockSession) ServerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverName
}

// begin locks the session and engine for one protocol call and checks
// the common preconditions. The returned func releases both locks.
func (s *mockSession) begin(ctx context.Context, op, p string) (func(), error) {
	s.mu.Lock()
	s.engine.mu.Lock()
	unlock := func() {
		s.engine.mu.Unlock()
		s.mu.Unlock()
	}

	s.engine.recordOp(op, p)
	if err := ctx.Err(); err != nil {
		unlock()
		return nil, err
	}
	if s.destroyed || !s.loggedIn {
		unlock()
		return nil, &StatusError{Code: StatusUserSessionDeleted}
	}
	if err := s.engine.checkError(op, p); err != nil {
		unlock()
		return nil, err
	}
	return unlock, nil
}

func (s *mockSession) ListShares(ctx context.Context) ([]string, error) {
	unlock, err := s.begin(ctx, "listshares", "")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]string(nil), s.engine.shareOrder...), nil
}

func (s *mockSession) TreeConnect(ctx context.Context, name string) (TreeID, error) {
	unlock, err := s.begin(ctx, "treeconnect", name)
	if err != nil {
		return 0, err
	}
	defer unlock()

	tree, ok := s.engine.shares[strings.ToLower(name)]
	if !ok {
		return 0, &StatusError{Code: StatusBadNetworkName}
	}
	tid := s.nextTree
	s.nextTree++
	s.trees[tid] = tree
	return tid, nil
}

func (s *mockSession) TreeDisconnect(ctx context.Context, tid TreeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.mu.RLock()
	err := s.engine.checkError("treedisconnect", "")
	s.engine.mu.RUnlock()
	s.engine.recordOp("treedisconnect", "", tid)
	if err != nil {
		return err
	}
	if _, ok := s.trees[tid]; !ok {
		return &StatusError{Code: StatusNetworkNameDeleted}
	}
	delete(s.trees, tid)
	return nil
}

func (s *mockSession) Open(ctx context.Context, tid TreeID, p string, access AccessMask, disposition Disposition) (FileID, error) {
	key := normalizeMockPath(p)
	unlock, err := s.begin(ctx, "open", key)
	if err != nil {
		return InvalidFileID, err
	}
	defer unlock()

	tree, ok := s.trees[tid]
	if !ok {
		return InvalidFileID, &StatusError{Code: StatusNetworkNameDeleted}
	}

	data, exists := tree.lookup(key)
	if exists && disposition == DispositionCreate {
		return InvalidFileID, &StatusError{Code: StatusObjectNameCollision}
	}
	if !exists {
		if disposition == DispositionOpen || disposition == DispositionOverwrite {
			return InvalidFileID, &StatusError{Code: StatusObjectNameNotFound}
		}
		parent, ok := tree.lookup(pathDir(key))
		if !ok || !parent.isDir {
			return InvalidFileID, &StatusError{Code: StatusObjectPathNotFound}
		}
		now := time.Now()
		data = &mockFileData{
			name:     pathBase(key),
			attrs:    FileAttributeArchive,
			created:  now,
			accessed: now,
			modTime:  now,
		}
		tree.files[strings.ToLower(key)] = data
	}

	if data.isDir && access.CanWrite() {
		return InvalidFileID, &StatusError{Code: StatusFileIsADirectory}
	}
	if (disposition == DispositionOverwriteIf || disposition == DispositionOverwrite) && !data.isDir {
		data.content = nil
		data.modTime = time.Now()
	}

	fid := s.nextFile
	s.nextFile++
	s.files[fid] = &mockHandle{tree: tree, path: key, data: data, access: access}
	return fid, nil
}

func (s *mockSession) Close(ctx context.Context, fid FileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.files[fid]
	if !ok {
		return &StatusError{Code: StatusInvalidHandle}
	}
	delete(s.files, fid)
	s.engine.recordOp("close", h.path)

	s.engine.mu.RLock()
	defer s.engine.mu.RUnlock()
	return s.engine.checkError("close", h.path)
}

func (s *mockSession) handle(fid FileID) (*mockHandle, error) {
	h, ok := s.files[fid]
	if !ok {
		return nil, &StatusError{Code: StatusInvalidHandle}
	}
	return h, nil
}

func (s *mockSession) Read(ctx context.Context, fid FileID, p []byte) (int, error) {
	s.mu.Lock()
	h, err := s.handle(fid)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	unlock, err := s.begin(ctx, "read", h.path)
	if err != nil {
		return 0, err
	}
	defer unlock()

	if h.data.isDir {
		return 0, &StatusError{Code: StatusInvalidDeviceRequest}
	}
	if !h.access.CanRead() {
		return 0, &StatusError{Code: StatusAccessDenied}
	}
	if s.engine.maxRead > 0 && len(p) > s.engine.maxRead {
		return 0, &StatusError{Code: StatusInvalidParameter}
	}
	if h.offset >= int64(len(h.data.content)) {
		return 0, nil
	}
	n := copy(p, h.data.content[h.offset:])
	h.offset += int64(n)
	h.data.accessed = time.Now()
	return n, nil
}

func (s *mockSession) Write(ctx context.Context, fid FileID, p []byte) (int, error) {
	s.mu.Lock()
	h, err := s.handle(fid)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	unlock, err := s.begin(ctx, "write", h.path)
	if err != nil {
		return 0, err
	}
	defer unlock()

	if !h.access.CanWrite() {
		return 0, &StatusError{Code: StatusAccessDenied}
	}
	if s.engine.maxWrite > 0 && len(p) > s.engine.maxWrite {
		return 0, &StatusError{Code: StatusInvalidParameter}
	}
	if s.engine.writeLimit > 0 && len(p) > s.engine.writeLimit {
		p = p[:s.engine.writeLimit]
	}
	if h.access&ModAppend != 0 && h.access&ModWrite == 0 {
		h.offset = int64(len(h.data.content))
	}

	end := h.offset + int64(len(p))
	if end > int64(len(h.data.content)) {
		grown := make([]byte, end)
		copy(grown, h.data.content)
		h.data.content = grown
	}
	n := copy(h.data.content[h.offset:], p)
	h.offset += int64(n)
	h.data.modTime = time.Now()
	return n, nil
}

func (s *mockSession) Seek(ctx context.Context, fid FileID, offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.handle(fid)
	if err != nil {
		return 0, err
	}
	s.engine.recordOp("seek", h.path, offset, whence)

	s.engine.mu.RLock()
	size := int64(len(h.data.content))
	s.engine.mu.RUnlock()

	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = h.offset + offset
	case io.SeekEnd:
		next = size + offset
	default:
		return 0, &StatusError{Code: StatusInvalidParameter}
	}
	if next < 0 {
		return 0, &StatusError{Code: StatusInvalidParameter}
	}
	h.offset = next
	return next, nil
}

// Find lists a directory. Like real servers it reports the "." and ".."
// pseudo-entries first.
func (s *mockSession) Find(ctx context.Context, tid TreeID, pattern string) ([]Stat, error) {
	dir, glob := splitFindPattern(pattern)
	key := normalizeMockPath(dir)
	unlock, err := s.begin(ctx, "find", key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tree, ok := s.trees[tid]
	if !ok {
		return nil, &StatusError{Code: StatusNetworkNameDeleted}
	}
	d, ok := tree.lookup(key)
	if !ok {
		return nil, &StatusError{Code: StatusObjectPathNotFound}
	}
	if !d.isDir {
		return nil, &StatusError{Code: StatusNotADirectory}
	}

	self := d.stat()
	self.Name = "."
	parent := self
	parent.Name = ".."
	stats := []Stat{self, parent}
	for _, f := range tree.children(key) {
		if glob != "*" {
			if ok, _ := path.Match(strings.ToLower(glob), strings.ToLower(f.name)); !ok {
				continue
			}
		}
		stats = append(stats, f.stat())
	}
	return stats, nil
}

func (s *mockSession) Truncate(ctx context.Context, fid FileID, size int64) error {
	s.mu.Lock()
	h, err := s.handle(fid)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	unlock, err := s.begin(ctx, "truncate", h.path)
	if err != nil {
		return err
	}
	defer unlock()

	switch {
	case h.data.isDir:
		return &StatusError{Code: StatusInvalidDeviceRequest}
	case !h.access.CanWrite():
		return &StatusError{Code: StatusAccessDenied}
	case size < 0:
		return &StatusError{Code: StatusInvalidParameter}
	}
	resized := make([]byte, size)
	copy(resized, h.data.content)
	h.data.content = resized
	h.data.modTime = time.Now()
	return nil
}

func (s *mockSession) Mkdir(ctx context.Context, tid TreeID, p string) error {
	key := normalizeMockPath(p)
	unlock, err := s.begin(ctx, "mkdir", key)
	if err != nil {
		return err
	}
	defer unlock()

	tree, ok := s.trees[tid]
	if !ok {
		return &StatusError{Code: StatusNetworkNameDeleted}
	}
	if _, exists := tree.lookup(key); exists {
		return &StatusError{Code: StatusObjectNameCollision}
	}
	parent, ok := tree.lookup(pathDir(key))
	if !ok || !parent.isDir {
		return &StatusError{Code: StatusObjectPathNotFound}
	}
	now := time.Now()
	tree.files[strings.ToLower(key)] = &mockFileData{
		name:     pathBase(key),
		isDir:    true,
		attrs:    FileAttributeDirectory,
		created:  now,
		accessed: now,
		modTime:  now,
	}
	return nil
}

func (s *mockSession) Rmdir(ctx context.Context, tid TreeID, p string) error {
	key := normalizeMockPath(p)
	unlock, err := s.begin(ctx, "rmdir", key)
	if err != nil {
		return err
	}
	defer unlock()

	tree, ok := s.trees[tid]
	if !ok {
		return &StatusError{Code: StatusNetworkNameDeleted}
	}
	d, ok := tree.lookup(key)
	switch {
	case !ok:
		return &StatusError{Code: StatusObjectNameNotFound}
	case !d.isDir:
		return &StatusError{Code: StatusNotADirectory}
	case key == `\`:
		return &StatusError{Code: StatusCannotDelete}
	case len(tree.children(key)) > 0:
		return &StatusError{Code: StatusDirectoryNotEmpty}
	}
	delete(tree.files, strings.ToLower(key))
	return nil
}

func (s *mockSession) RemoveFile(ctx context.Context, tid TreeID, p string) error {
	key := normalizeMockPath(p)
	unlock, err := s.begin(ctx, "remove", key)
	if err != nil {
		return err
	}
	defer unlock()

	tree, ok := s.trees[tid]
	if !ok {
		return &StatusError{Code: StatusNetworkNameDeleted}
	}
	f, ok := tree.lookup(key)
	switch {
	case !ok:
		return &StatusError{Code: StatusObjectNameNotFound}
	case f.isDir:
		return &StatusError{Code: StatusFileIsADirectory}
	}
	for _, h := range s.files {
		if h.data == f {
			return &StatusError{Code: StatusSharingViolation}
		}
	}
	delete(tree.files, strings.ToLower(key))
	return nil
}

// Rename moves a file or a directory with everything below it. An
// existing target is a collision, as with go-smb2.
func (s *mockSession) Rename(ctx context.Context, tid TreeID, oldpath, newpath string) error {
	from := normalizeMockPath(oldpath)
	to := normalizeMockPath(newpath)
	unlock, err := s.begin(ctx, "rename", from)
	if err != nil {
		return err
	}
	defer unlock()

	tree, ok := s.trees[tid]
	if !ok {
		return &StatusError{Code: StatusNetworkNameDeleted}
	}
	src, ok := tree.lookup(from)
	if !ok {
		return &StatusError{Code: StatusObjectNameNotFound}
	}
	fromKey := strings.ToLower(from)
	toKey := strings.ToLower(to)
	switch {
	case from == `\` || to == `\`:
		return &StatusError{Code: StatusAccessDenied}
	case strings.HasPrefix(toKey, fromKey+`\`):
		return &StatusError{Code: StatusInvalidParameter}
	}
	if _, exists := tree.lookup(to); exists && fromKey != toKey {
		return &StatusError{Code: StatusObjectNameCollision}
	}
	if parent, ok := tree.lookup(pathDir(to)); !ok || !parent.isDir {
		return &StatusError{Code: StatusObjectPathNotFound}
	}
	for _, h := range s.files {
		if h.data == src {
			return &StatusError{Code: StatusSharingViolation}
		}
	}

	moved := make(map[string]*mockFileData)
	for key, f := range tree.files {
		if key == fromKey || strings.HasPrefix(key, fromKey+`\`) {
			moved[toKey+key[len(fromKey):]] = f
			delete(tree.files, key)
		}
	}
	for key, f := range moved {
		tree.files[key] = f
	}
	src.name = pathBase(to)
	return nil
}

func (s *mockSession) SetTimes(ctx context.Context, tid TreeID, p string, atime, mtime time.Time) error {
	key := normalizeMockPath(p)
	unlock, err := s.begin(ctx, "settimes", key)
	if err != nil {
		return err
	}
	defer unlock()

	tree, ok := s.trees[tid]
	if !ok {
		return &StatusError{Code: StatusNetworkNameDeleted}
	}
	f, ok := tree.lookup(key)
	if !ok {
		return &StatusError{Code: StatusObjectNameNotFound}
	}
	if !atime.IsZero() {
		f.accessed = atime
	}
	if !mtime.IsZero() {
		f.modTime = mtime
	}
	return nil
}

func (s *mockSession) MaxReadSize() int {
	s.engine.mu.RLock()
	defer s.engine.mu.RUnlock()
	return s.engine.maxRead
}

func (s *mockSession) MaxWriteSize() int {
	s.engine.mu.RLock()
	defer s.engine.mu.RUnlock()
	return s.engine.maxWrite
}

func (s *mockSession) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	s.loggedIn = false
	s.connected = false
	s.files = make(map[FileID]*mockHandle)
	s.trees = make(map[TreeID]*mockTree)
	s.engine.recordOp("destroy", s.serverName)
	return nil
}
