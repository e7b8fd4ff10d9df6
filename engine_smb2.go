package smbclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/netip"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hirochachacha/go-smb2"
	"golang.org/x/net/proxy"
)

// SMB2Engine is the production Engine, backed by go-smb2.
type SMB2Engine struct {
	ConnTimeout time.Duration // Dial timeout (default: 30s)
	Socks5URL   string        // Optional socks5://[user:pass@]host:port proxy
	NTHash      []byte        // Authenticate with this hash when no password is set
	Logger      Logger
}

// NewSMB2Engine creates an engine from the transport settings of config.
func NewSMB2Engine(config *Config) *SMB2Engine {
	return &SMB2Engine{
		ConnTimeout: config.ConnTimeout,
		Socks5URL:   config.Socks5URL,
		NTHash:      config.NTHash,
		Logger:      config.Logger,
	}
}

// NewSession creates an unconnected protocol session.
func (e *SMB2Engine) NewSession() (EngineSession, error) {
	return &smb2Session{
		engine:   e,
		trees:    make(map[TreeID]*smb2.Share),
		files:    make(map[FileID]*smb2.File),
		nextTree: 1,
		nextFile: 1,
	}, nil
}

// smb2Session adapts one go-smb2 session to EngineSession. go-smb2 hands
// out objects rather than numeric ids, so trees and files are tracked in
// maps keyed by locally allocated ids.
type smb2Session struct {
	engine *SMB2Engine

	mu         sync.Mutex
	conn       net.Conn
	session    *smb2.Session
	serverName string
	domain     string
	user       string
	password   string
	guest      bool
	destroyed  bool

	trees    map[TreeID]*smb2.Share
	files    map[FileID]*smb2.File
	nextTree TreeID
	nextFile FileID
}

func (s *smb2Session) Connect(ctx context.Context, serverName string, addr netip.AddrPort, transport TransportKind) error {
	if transport != TransportTCP {
		return fmt.Errorf("%w: %s (go-smb2 speaks direct TCP only)", ErrUnsupportedTransport, transport)
	}

	timeout := s.engine.ConnTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var (
		conn net.Conn
		err  error
	)
	if s.engine.Socks5URL != "" {
		conn, err = dialSocks5(ctx, s.engine.Socks5URL, addr.String(), timeout)
	} else {
		dialer := &net.Dialer{Timeout: timeout}
		conn, err = dialer.DialContext(ctx, "tcp", addr.String())
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
	s.serverName = serverName
	return nil
}

// dialSocks5 establishes a connection through a SOCKS5 proxy.
func dialSocks5(ctx context.Context, proxyURL, target string, timeout time.Duration) (net.Conn, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid SOCKS5 URL: %w", err)
	}

	var auth *proxy.Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		auth = &proxy.Auth{
			User:     u.User.Username(),
			Password: pass,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", u.Host, auth, &net.Dialer{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	// proxy.Dialer has no context support.
	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := dialer.Dial("tcp", target)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-resultCh; r.conn != nil {
				r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case result := <-resultCh:
		return result.conn, result.err
	}
}

func (s *smb2Session) SetCredentials(domain, user, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = domain
	s.user = user
	s.password = password
}

func (s *smb2Session) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("login: %w", ErrNotConnected)
	}

	initiator := &smb2.NTLMInitiator{
		User:   s.user,
		Domain: s.domain,
	}
	if s.password == "" && len(s.engine.NTHash) > 0 {
		initiator.Hash = s.engine.NTHash
	} else {
		initiator.Password = s.password
	}

	d := &smb2.Dialer{Initiator: initiator}
	session, err := d.DialContext(ctx, s.conn)
	if err != nil {
		return convertSMB2Error(err)
	}
	s.session = session
	// go-smb2 does not surface the SESSION_FLAG_IS_GUEST bit.
	s.guest = s.user == "" || strings.EqualFold(s.user, "guest")
	return nil
}

func (s *smb2Session) IsGuest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guest
}

func (s *smb2Session) ServerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverName
}

func (s *smb2Session) loggedIn() (*smb2.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.destroyed {
		return nil, ErrNotConnected
	}
	return s.session, nil
}

func (s *smb2Session) ListShares(ctx context.Context) ([]string, error) {
	session, err := s.loggedIn()
	if err != nil {
		return nil, err
	}
	names, err := session.WithContext(ctx).ListSharenames()
	if err != nil {
		return nil, convertSMB2Error(err)
	}
	return names, nil
}

func (s *smb2Session) TreeConnect(ctx context.Context, name string) (TreeID, error) {
	session, err := s.loggedIn()
	if err != nil {
		return 0, err
	}
	share, err := session.WithContext(ctx).Mount(name)
	if err != nil {
		return 0, convertSMB2Error(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tid := s.nextTree
	s.nextTree++
	s.trees[tid] = share
	return tid, nil
}

func (s *smb2Session) TreeDisconnect(ctx context.Context, tid TreeID) error {
	s.mu.Lock()
	share, ok := s.trees[tid]
	delete(s.trees, tid)
	s.mu.Unlock()
	if !ok {
		return &StatusError{Code: StatusNetworkNameDeleted}
	}
	return convertSMB2Error(share.Umount())
}

func (s *smb2Session) tree(ctx context.Context, tid TreeID) (*smb2.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	share, ok := s.trees[tid]
	if !ok {
		return nil, &StatusError{Code: StatusNetworkNameDeleted}
	}
	return share.WithContext(ctx), nil
}

func (s *smb2Session) file(fid FileID) (*smb2.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fid]
	if !ok {
		return nil, &StatusError{Code: StatusInvalidHandle}
	}
	return f, nil
}

// openFlags translates an access mask and disposition into os.OpenFile flags.
func openFlags(access AccessMask, disposition Disposition) int {
	var flag int
	switch {
	case access.CanRead() && access.CanWrite():
		flag = os.O_RDWR
	case access.CanWrite():
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if access&ModAppend != 0 && access&ModWrite == 0 {
		flag |= os.O_APPEND
	}
	switch disposition {
	case DispositionOpenIf:
		flag |= os.O_CREATE
	case DispositionOverwriteIf:
		flag |= os.O_CREATE | os.O_TRUNC
	case DispositionCreate:
		flag |= os.O_CREATE | os.O_EXCL
	case DispositionOverwrite:
		flag |= os.O_TRUNC
	}
	return flag
}

func (s *smb2Session) Open(ctx context.Context, tid TreeID, p string, access AccessMask, disposition Disposition) (FileID, error) {
	share, err := s.tree(ctx, tid)
	if err != nil {
		return InvalidFileID, err
	}
	f, err := share.OpenFile(engineRelPath(p), openFlags(access, disposition), 0o666)
	if err != nil {
		return InvalidFileID, convertSMB2Error(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fid := s.nextFile
	s.nextFile++
	s.files[fid] = f
	return fid, nil
}

func (s *smb2Session) Close(ctx context.Context, fid FileID) error {
	s.mu.Lock()
	f, ok := s.files[fid]
	delete(s.files, fid)
	s.mu.Unlock()
	if !ok {
		return &StatusError{Code: StatusInvalidHandle}
	}
	return convertSMB2Error(f.Close())
}

func (s *smb2Session) Read(ctx context.Context, fid FileID, p []byte) (int, error) {
	f, err := s.file(fid)
	if err != nil {
		return 0, err
	}
	n, err := f.Read(p)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, convertSMB2Error(err)
}

func (s *smb2Session) Write(ctx context.Context, fid FileID, p []byte) (int, error) {
	f, err := s.file(fid)
	if err != nil {
		return 0, err
	}
	n, err := f.Write(p)
	return n, convertSMB2Error(err)
}

func (s *smb2Session) Seek(ctx context.Context, fid FileID, offset int64, whence int) (int64, error) {
	f, err := s.file(fid)
	if err != nil {
		return 0, err
	}
	off, err := f.Seek(offset, whence)
	return off, convertSMB2Error(err)
}

func (s *smb2Session) Truncate(ctx context.Context, fid FileID, size int64) error {
	f, err := s.file(fid)
	if err != nil {
		return err
	}
	return convertSMB2Error(f.Truncate(size))
}

// Find lists the directory named by a `\dir\*` style pattern and filters
// the entries with the trailing glob, case-insensitively.
func (s *smb2Session) Find(ctx context.Context, tid TreeID, pattern string) ([]Stat, error) {
	share, err := s.tree(ctx, tid)
	if err != nil {
		return nil, err
	}

	dir, glob := splitFindPattern(pattern)
	infos, err := share.ReadDir(engineRelPath(dir))
	if err != nil {
		return nil, convertSMB2Error(err)
	}

	stats := make([]Stat, 0, len(infos))
	for _, fi := range infos {
		if glob != "*" {
			if ok, _ := path.Match(strings.ToLower(glob), strings.ToLower(fi.Name())); !ok {
				continue
			}
		}
		stats = append(stats, statFromFileInfo(fi))
	}
	return stats, nil
}

func splitFindPattern(pattern string) (dir, glob string) {
	pattern = strings.ReplaceAll(pattern, "/", `\`)
	i := strings.LastIndex(pattern, `\`)
	if i < 0 {
		return "", pattern
	}
	glob = pattern[i+1:]
	if glob == "" {
		glob = "*"
	}
	return pattern[:i], glob
}

func statFromFileInfo(fi fs.FileInfo) Stat {
	if st, ok := fi.(*smb2.FileStat); ok {
		return Stat{
			Name:         st.FileName,
			IsDir:        st.IsDir(),
			Size:         st.EndOfFile,
			AllocSize:    st.AllocationSize,
			Attributes:   st.FileAttributes,
			CreationTime: st.CreationTime,
			AccessTime:   st.LastAccessTime,
			WriteTime:    st.LastWriteTime,
			ChangeTime:   st.ChangeTime,
		}
	}
	st := Stat{
		Name:      fi.Name(),
		IsDir:     fi.IsDir(),
		Size:      fi.Size(),
		WriteTime: fi.ModTime(),
	}
	st.ChangeTime = st.WriteTime
	if st.IsDir {
		st.Attributes = FileAttributeDirectory
	}
	return st
}

func (s *smb2Session) Mkdir(ctx context.Context, tid TreeID, p string) error {
	share, err := s.tree(ctx, tid)
	if err != nil {
		return err
	}
	return convertSMB2Error(share.Mkdir(engineRelPath(p), 0o755))
}

func (s *smb2Session) Rmdir(ctx context.Context, tid TreeID, p string) error {
	share, err := s.tree(ctx, tid)
	if err != nil {
		return err
	}
	return convertSMB2Error(share.Remove(engineRelPath(p)))
}

func (s *smb2Session) RemoveFile(ctx context.Context, tid TreeID, p string) error {
	share, err := s.tree(ctx, tid)
	if err != nil {
		return err
	}
	return convertSMB2Error(share.Remove(engineRelPath(p)))
}

func (s *smb2Session) Rename(ctx context.Context, tid TreeID, oldpath, newpath string) error {
	share, err := s.tree(ctx, tid)
	if err != nil {
		return err
	}
	return convertSMB2Error(share.Rename(engineRelPath(oldpath), engineRelPath(newpath)))
}

func (s *smb2Session) SetTimes(ctx context.Context, tid TreeID, p string, atime, mtime time.Time) error {
	share, err := s.tree(ctx, tid)
	if err != nil {
		return err
	}
	return convertSMB2Error(share.Chtimes(engineRelPath(p), atime, mtime))
}

// go-smb2 splits large transfers itself, so no limit is reported.
func (s *smb2Session) MaxReadSize() int  { return 0 }
func (s *smb2Session) MaxWriteSize() int { return 0 }

// Destroy releases everything the session still holds. It is safe to call
// on a session that never connected.
func (s *smb2Session) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return nil
	}
	s.destroyed = true

	var errs []error
	for fid, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, convertSMB2Error(err))
		}
		delete(s.files, fid)
	}
	for tid, share := range s.trees {
		if err := share.Umount(); err != nil {
			errs = append(errs, convertSMB2Error(err))
		}
		delete(s.trees, tid)
	}
	if s.session != nil {
		if err := s.session.Logoff(); err != nil {
			errs = append(errs, convertSMB2Error(err))
		}
		s.session = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return errors.Join(errs...)
}

// engineRelPath strips the leading separator go-smb2 rejects.
func engineRelPath(p string) string {
	return strings.TrimLeft(strings.ReplaceAll(p, "/", `\`), `\`)
}

// convertSMB2Error lifts the NT status out of a go-smb2 error.
func convertSMB2Error(err error) error {
	if err == nil {
		return nil
	}
	var re *smb2.ResponseError
	if errors.As(err, &re) {
		return &StatusError{Code: NTStatus(re.Code)}
	}
	return err
}
