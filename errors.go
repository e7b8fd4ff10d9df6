package smbclient

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Error kinds. Every failure returned by a Session or Share matches one of
// these with errors.Is.
var (
	// ErrResolution indicates the server identifier could not be turned into an address.
	ErrResolution = errors.New("address resolution failed")

	// ErrSessionCreate indicates the protocol engine could not create a session object.
	ErrSessionCreate = errors.New("session creation failed")

	// ErrConnect indicates the transport connection to the server failed.
	ErrConnect = errors.New("connection failed")

	// ErrAuth indicates authentication failed.
	ErrAuth = errors.New("authentication failed")

	// ErrListShares indicates the share list could not be queried.
	ErrListShares = errors.New("share listing failed")

	// ErrShareAttach indicates the tree connect to a share failed.
	ErrShareAttach = errors.New("share attach failed")

	// ErrFileOpen indicates a remote file could not be opened.
	ErrFileOpen = errors.New("file open failed")

	// ErrFileRead indicates a remote read failed.
	ErrFileRead = errors.New("file read failed")

	// ErrFileWrite indicates a remote write failed.
	ErrFileWrite = errors.New("file write failed")

	// ErrFileClose indicates releasing a remote file handle failed.
	ErrFileClose = errors.New("file close failed")

	// ErrFileRemove indicates a remote file could not be removed.
	ErrFileRemove = errors.New("file remove failed")

	// ErrRename indicates a file or directory could not be renamed.
	ErrRename = errors.New("rename failed")

	// ErrDirectory indicates a directory create or remove failed.
	ErrDirectory = errors.New("directory operation failed")

	// ErrTraversal indicates a directory listing failed during traversal.
	ErrTraversal = errors.New("directory traversal failed")
)

var (
	// ErrNotConnected indicates the session is not authenticated.
	ErrNotConnected = errors.New("not connected")

	// ErrSessionTerminal indicates the session previously failed and must be discarded.
	ErrSessionTerminal = errors.New("session is in error state")

	// ErrShareDetached indicates an operation on a share that is not attached.
	ErrShareDetached = errors.New("share is not attached")

	// ErrInvalidConfig indicates the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidPath indicates the path is invalid.
	ErrInvalidPath = errors.New("invalid path")

	// ErrUnsupportedTransport indicates the engine cannot use the requested transport.
	ErrUnsupportedTransport = errors.New("unsupported transport")
)

// OpError records a failed operation together with the server, share and
// path it was issued against and, when the server answered, its NT status.
type OpError struct {
	Kind   error
	Op     string
	Server string
	Share  string
	Path   string
	Status NTStatus
	Err    error
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if target := e.target(); target != "" {
		b.WriteString(" ")
		b.WriteString(target)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// target renders the UNC-style location the operation was aimed at.
func (e *OpError) target() string {
	switch {
	case e.Server == "":
		return e.Path
	case e.Share == "":
		return `\\` + e.Server
	case e.Path == "":
		return `\\` + e.Server + `\` + e.Share
	default:
		return `\\` + e.Server + `\` + e.Share + `\` + strings.TrimPrefix(e.Path, `\`)
	}
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// statusOf extracts the NT status carried by err, if any.
func statusOf(err error) (NTStatus, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// newOpError builds an OpError, lifting the NT status out of err.
func newOpError(kind error, op, server, share, path string, err error) *OpError {
	status, _ := statusOf(err)
	return &OpError{
		Kind:   kind,
		Op:     op,
		Server: server,
		Share:  share,
		Path:   path,
		Status: status,
		Err:    err,
	}
}

// netError interface for network errors.
type netError interface {
	Timeout() bool
}

// IsRetryable reports whether err is a transient failure that a caller may
// retry with a fresh Session. Authentication failures and server status
// errors on files are not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch {
	case errors.Is(err, ErrAuth),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedTransport):
		return false
	case errors.Is(err, ErrResolution),
		errors.Is(err, ErrConnect),
		errors.Is(err, ErrSessionCreate):
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var ne netError
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	if status, ok := statusOf(err); ok {
		switch status {
		case StatusNetworkSessionExpired, StatusUserSessionDeleted, StatusIOTimeout,
			StatusRequestNotAccepted, StatusInsufficientResources:
			return true
		}
	}

	return false
}
