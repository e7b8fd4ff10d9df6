package smbclient

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"sync"
)

// SessionState tracks the lifecycle of a Session.
type SessionState int

const (
	StateNew SessionState = iota
	StateConnected
	StateAuthenticated
	// StateError is terminal: the Session must be discarded.
	StateError
)

func (s SessionState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Session is one authenticated connection to an SMB server and the
// owner of the Shares attached through it.
//
// A Session is safe for concurrent use. Its Shares may be used
// concurrently with each other.
type Session struct {
	config   *Config
	engine   Engine
	resolver *AddressResolver

	mu         sync.Mutex
	state      SessionState
	server     string
	domain     string
	resolved   bool
	resolution Resolution
	proto      EngineSession
	guest      bool
	shares     []*Share
}

// NewSession creates a Session backed by the go-smb2 engine.
func NewSession(config *Config) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	cfg := *config
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newSession(&cfg, NewSMB2Engine(&cfg), NewAddressResolver(&cfg)), nil
}

// NewSessionWithEngine creates a Session with an explicit engine and
// resolver. A nil resolver is built from config. This is primarily
// useful for testing with MockEngine.
func NewSessionWithEngine(config *Config, engine Engine, resolver *AddressResolver) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is nil", ErrInvalidConfig)
	}
	cfg := *config
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if resolver == nil {
		resolver = NewAddressResolver(&cfg)
	}
	return newSession(&cfg, engine, resolver), nil
}

func newSession(cfg *Config, engine Engine, resolver *AddressResolver) *Session {
	return &Session{
		config:   cfg,
		engine:   engine,
		resolver: resolver,
		state:    StateNew,
		server:   strings.TrimSpace(cfg.Server),
		domain:   cfg.Domain,
	}
}

// Connect resolves the server (once per Session), connects and
// authenticates. Connecting an already connected Session first tears
// down its Shares and connection. A Session in StateError cannot be
// reconnected.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateError {
		return &OpError{Kind: ErrSessionTerminal, Op: "connect", Server: s.server}
	}
	if s.proto != nil || len(s.shares) > 0 {
		s.disconnectLocked(ctx)
	}

	if !s.resolved {
		res, err := s.resolver.Resolve(ctx, s.config.Server, s.domain)
		if err != nil {
			s.state = StateError
			s.logf("Resolution of %s failed: %v", s.config.Server, err)
			return err
		}
		s.resolution = res
		s.resolved = true
		s.server = res.Host
		if s.domain == "" {
			s.domain = res.Domain
		}
	}
	if s.domain == "" {
		s.domain = s.server
	}

	proto, err := s.engine.NewSession()
	if err != nil {
		s.state = StateError
		return &OpError{Kind: ErrSessionCreate, Op: "connect", Server: s.server, Err: err}
	}

	addr := netip.AddrPortFrom(s.resolution.Address, uint16(s.config.Port))
	if err := proto.Connect(ctx, s.server, addr, s.config.Transport); err != nil {
		proto.Destroy()
		s.state = StateError
		s.logf("Unable to connect to host %q (%s): %v", s.server, addr, err)
		return newOpError(ErrConnect, "connect", s.server, "", "",
			fmt.Errorf("unable to connect to host %q (%s): %w", s.server, addr, err))
	}
	s.proto = proto
	s.state = StateConnected

	proto.SetCredentials(s.domain, s.config.Username, s.config.Password)
	if err := proto.Login(ctx); err != nil {
		proto.Destroy()
		s.proto = nil
		s.state = StateError
		s.logf("Authentication to %s failed: %v", s.server, err)
		return newOpError(ErrAuth, "login", s.server, "", "", err)
	}

	s.guest = proto.IsGuest()
	if s.guest {
		s.logf("Logged in to %s as GUEST", s.server)
	} else {
		s.logf("Successfully logged in to %s as %s\\%s", s.server, s.domain, s.config.Username)
	}
	s.state = StateAuthenticated
	return nil
}

// Disconnect detaches every Share (closing their open files) and destroys
// the protocol session. It is safe to call repeatedly and on a Session
// that never connected. The resolved address is kept.
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnectLocked(ctx)
}

func (s *Session) disconnectLocked(ctx context.Context) error {
	shares := s.shares
	s.shares = nil
	for _, sh := range shares {
		sh.detach(ctx)
	}

	var err error
	if s.proto != nil {
		err = s.proto.Destroy()
		if err != nil {
			s.logf("Destroying session with %s: %v", s.server, err)
		}
		s.proto = nil
	}
	if s.state != StateError {
		s.state = StateNew
	}
	s.guest = false
	return err
}

// authenticated returns the live protocol session or the reason there is none.
func (s *Session) authenticated() (EngineSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateAuthenticated:
		return s.proto, nil
	case StateError:
		return nil, ErrSessionTerminal
	default:
		return nil, ErrNotConnected
	}
}

// ListSharedFolders returns the share names in the order the server
// reported them.
func (s *Session) ListSharedFolders(ctx context.Context) ([]string, error) {
	s.logf(`Listing shared folders at \\%s`, s.ServerName())
	proto, err := s.authenticated()
	if err != nil {
		return nil, &OpError{Kind: ErrListShares, Op: "list shares", Server: s.ServerName(), Err: err}
	}

	names, err := proto.ListShares(ctx)
	if err != nil {
		s.logf(`Listing shared folders at \\%s failed: %v`, s.ServerName(), err)
		return nil, newOpError(ErrListShares, "list shares", s.ServerName(), "", "", err)
	}
	s.logf("  Found %d shared folders", len(names))
	return names, nil
}

// ConnectToSharedFolder attaches the named share and registers it with
// the Session. The name may be a bare share name or a UNC-style path
// using either separator; only the share component is used.
func (s *Session) ConnectToSharedFolder(ctx context.Context, name string) (*Share, error) {
	shareName := normalizeShareName(name)
	if shareName == "" {
		return nil, &OpError{Kind: ErrShareAttach, Op: "tree connect", Server: s.ServerName(), Err: ErrInvalidPath}
	}

	proto, err := s.authenticated()
	if err != nil {
		s.logf("Trying to connect to a share without connection to the remote server")
		return nil, &OpError{Kind: ErrShareAttach, Op: "tree connect", Server: s.ServerName(), Share: shareName, Err: err}
	}

	sh := newShare(s, proto, shareName)
	if err := sh.connect(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proto != proto {
		// The Session was disconnected while attaching.
		sh.detach(ctx)
		return nil, &OpError{Kind: ErrShareAttach, Op: "tree connect", Server: s.server, Share: shareName, Err: ErrNotConnected}
	}
	s.shares = append(s.shares, sh)
	return sh, nil
}

// removeShare drops sh from the owned set.
func (s *Session) removeShare(sh *Share) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, owned := range s.shares {
		if owned == sh {
			s.shares = append(s.shares[:i], s.shares[i+1:]...)
			return
		}
	}
}

// State returns the lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ServerName returns the server name: the short host name once resolved,
// the configured identifier before that.
func (s *Session) ServerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server
}

// Domain returns the authentication domain.
func (s *Session) Domain() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.domain
}

// Address returns the cached server address, invalid before resolution.
func (s *Session) Address() netip.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution.Address
}

// Resolution returns how the server address was obtained.
func (s *Session) Resolution() (Resolution, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolution, s.resolved
}

// IsGuest reports whether the server granted only a guest session.
func (s *Session) IsGuest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guest
}

// Shares returns the currently attached Shares.
func (s *Session) Shares() []*Share {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Share(nil), s.shares...)
}

// Config returns a copy of the effective configuration.
func (s *Session) Config() Config {
	return *s.config
}

func (s *Session) logf(format string, v ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Printf(format, v...)
	}
}

// normalizeShareName extracts the share component from name.
func normalizeShareName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "/", `\`))
	if strings.HasPrefix(name, `\\`) {
		// \\server\share[\path]
		parts := strings.SplitN(strings.TrimPrefix(name, `\\`), `\`, 3)
		if len(parts) < 2 {
			return ""
		}
		return parts[1]
	}
	name = strings.Trim(name, `\`)
	if i := strings.IndexByte(name, '\\'); i >= 0 {
		name = name[:i]
	}
	return name
}
