package smbclient

import (
	"fmt"
	"io/fs"
)

// NTStatus is a numeric result code returned by server-side operations.
type NTStatus uint32

// NT status codes commonly returned by SMB servers.
const (
	StatusSuccess                NTStatus = 0x00000000
	StatusPending                NTStatus = 0x00000103
	StatusMoreEntries            NTStatus = 0x00000105
	StatusBufferOverflow         NTStatus = 0x80000005
	StatusNoMoreFiles            NTStatus = 0x80000006
	StatusUnsuccessful           NTStatus = 0xC0000001
	StatusNotImplemented         NTStatus = 0xC0000002
	StatusInvalidInfoClass       NTStatus = 0xC0000003
	StatusInvalidHandle          NTStatus = 0xC0000008
	StatusInvalidParameter       NTStatus = 0xC000000D
	StatusNoSuchDevice           NTStatus = 0xC000000E
	StatusNoSuchFile             NTStatus = 0xC000000F
	StatusInvalidDeviceRequest   NTStatus = 0xC0000010
	StatusEndOfFile              NTStatus = 0xC0000011
	StatusMoreProcessingRequired NTStatus = 0xC0000016
	StatusAccessDenied           NTStatus = 0xC0000022
	StatusBufferTooSmall         NTStatus = 0xC0000023
	StatusObjectNameInvalid      NTStatus = 0xC0000033
	StatusObjectNameNotFound     NTStatus = 0xC0000034
	StatusObjectNameCollision    NTStatus = 0xC0000035
	StatusObjectPathInvalid      NTStatus = 0xC0000039
	StatusObjectPathNotFound     NTStatus = 0xC000003A
	StatusObjectPathSyntaxBad    NTStatus = 0xC000003B
	StatusSharingViolation       NTStatus = 0xC0000043
	StatusDeletePending          NTStatus = 0xC0000056
	StatusPrivilegeNotHeld       NTStatus = 0xC0000061
	StatusWrongPassword          NTStatus = 0xC000006A
	StatusLogonFailure           NTStatus = 0xC000006D
	StatusAccountRestriction     NTStatus = 0xC000006E
	StatusInvalidLogonHours      NTStatus = 0xC000006F
	StatusInvalidWorkstation     NTStatus = 0xC0000070
	StatusPasswordExpired        NTStatus = 0xC0000071
	StatusAccountDisabled        NTStatus = 0xC0000072
	StatusDiskFull               NTStatus = 0xC000007F
	StatusInsufficientResources  NTStatus = 0xC000009A
	StatusFileIsADirectory       NTStatus = 0xC00000BA
	StatusNotSupported           NTStatus = 0xC00000BB
	StatusNetworkNameDeleted     NTStatus = 0xC00000C9
	StatusNetworkAccessDenied    NTStatus = 0xC00000CA
	StatusBadNetworkName         NTStatus = 0xC00000CC
	StatusRequestNotAccepted     NTStatus = 0xC00000D0
	StatusInternalError          NTStatus = 0xC00000E5
	StatusDirectoryNotEmpty      NTStatus = 0xC0000101
	StatusNotADirectory          NTStatus = 0xC0000103
	StatusCancelled              NTStatus = 0xC0000120
	StatusCannotDelete           NTStatus = 0xC0000121
	StatusFileClosed             NTStatus = 0xC0000128
	StatusAccountLockedOut       NTStatus = 0xC0000234
	StatusUserSessionDeleted     NTStatus = 0xC0000203
	StatusConnectionRefused      NTStatus = 0xC0000236
	StatusPasswordMustChange     NTStatus = 0xC0000224
	StatusPathNotCovered         NTStatus = 0xC0000257
	StatusNetworkSessionExpired  NTStatus = 0xC000035C
	StatusIOTimeout              NTStatus = 0xC00000B5
)

type statusInfo struct {
	name        string
	description string
}

// statusTable maps known codes to their symbolic name and a diagnosable description.
var statusTable = map[NTStatus]statusInfo{
	StatusSuccess:                {"STATUS_SUCCESS", "The operation completed successfully."},
	StatusPending:                {"STATUS_PENDING", "The operation that was requested is pending completion."},
	StatusMoreEntries:            {"STATUS_MORE_ENTRIES", "Returned by enumeration APIs to indicate more information is available to successive calls."},
	StatusBufferOverflow:         {"STATUS_BUFFER_OVERFLOW", "The data was too large to fit into the specified buffer."},
	StatusNoMoreFiles:            {"STATUS_NO_MORE_FILES", "No more files were found which match the file specification."},
	StatusUnsuccessful:           {"STATUS_UNSUCCESSFUL", "The requested operation was unsuccessful."},
	StatusNotImplemented:         {"STATUS_NOT_IMPLEMENTED", "The requested operation is not implemented."},
	StatusInvalidInfoClass:       {"STATUS_INVALID_INFO_CLASS", "The specified information class is not a valid information class for the specified object."},
	StatusInvalidHandle:          {"STATUS_INVALID_HANDLE", "An invalid HANDLE was specified."},
	StatusInvalidParameter:       {"STATUS_INVALID_PARAMETER", "An invalid parameter was passed to a service or function."},
	StatusNoSuchDevice:           {"STATUS_NO_SUCH_DEVICE", "A device that does not exist was specified."},
	StatusNoSuchFile:             {"STATUS_NO_SUCH_FILE", "The file does not exist."},
	StatusInvalidDeviceRequest:   {"STATUS_INVALID_DEVICE_REQUEST", "The specified request is not a valid operation for the target device."},
	StatusEndOfFile:              {"STATUS_END_OF_FILE", "The end-of-file marker has been reached."},
	StatusMoreProcessingRequired: {"STATUS_MORE_PROCESSING_REQUIRED", "The specified buffer contains ill-formed data or additional processing is required."},
	StatusAccessDenied:           {"STATUS_ACCESS_DENIED", "A process has requested access to an object but has not been granted those access rights."},
	StatusBufferTooSmall:         {"STATUS_BUFFER_TOO_SMALL", "The buffer is too small to contain the entry."},
	StatusObjectNameInvalid:      {"STATUS_OBJECT_NAME_INVALID", "The object name is invalid."},
	StatusObjectNameNotFound:     {"STATUS_OBJECT_NAME_NOT_FOUND", "The object name is not found."},
	StatusObjectNameCollision:    {"STATUS_OBJECT_NAME_COLLISION", "The object name already exists."},
	StatusObjectPathInvalid:      {"STATUS_OBJECT_PATH_INVALID", "The object path component was not a directory object."},
	StatusObjectPathNotFound:     {"STATUS_OBJECT_PATH_NOT_FOUND", "The path does not exist."},
	StatusObjectPathSyntaxBad:    {"STATUS_OBJECT_PATH_SYNTAX_BAD", "The object path syntax is invalid."},
	StatusSharingViolation:       {"STATUS_SHARING_VIOLATION", "A file cannot be opened because the share access flags are incompatible."},
	StatusDeletePending:          {"STATUS_DELETE_PENDING", "A non-close operation has been requested of a file object that has a delete pending."},
	StatusPrivilegeNotHeld:       {"STATUS_PRIVILEGE_NOT_HELD", "A required privilege is not held by the client."},
	StatusWrongPassword:          {"STATUS_WRONG_PASSWORD", "The value provided as the current password is not correct."},
	StatusLogonFailure:           {"STATUS_LOGON_FAILURE", "The attempted logon is invalid. This is either due to a bad username or authentication information."},
	StatusAccountRestriction:     {"STATUS_ACCOUNT_RESTRICTION", "Indicates a referenced user name and authentication information are valid, but some user account restriction has prevented successful authentication."},
	StatusInvalidLogonHours:      {"STATUS_INVALID_LOGON_HOURS", "The user account has time restrictions and may not be logged onto at this time."},
	StatusInvalidWorkstation:     {"STATUS_INVALID_WORKSTATION", "The user account is restricted so that it may not be used to log on from the source workstation."},
	StatusPasswordExpired:        {"STATUS_PASSWORD_EXPIRED", "The user account password has expired."},
	StatusAccountDisabled:        {"STATUS_ACCOUNT_DISABLED", "The referenced account is currently disabled and may not be logged on to."},
	StatusDiskFull:               {"STATUS_DISK_FULL", "An operation failed because the disk was full."},
	StatusInsufficientResources:  {"STATUS_INSUFFICIENT_RESOURCES", "Insufficient system resources exist to complete the API."},
	StatusFileIsADirectory:       {"STATUS_FILE_IS_A_DIRECTORY", "The file that was specified as a target is a directory, and the caller specified that it could be anything but a directory."},
	StatusNotSupported:           {"STATUS_NOT_SUPPORTED", "The request is not supported."},
	StatusNetworkNameDeleted:     {"STATUS_NETWORK_NAME_DELETED", "The network name was deleted."},
	StatusNetworkAccessDenied:    {"STATUS_NETWORK_ACCESS_DENIED", "Network access is denied."},
	StatusBadNetworkName:         {"STATUS_BAD_NETWORK_NAME", "The specified share name cannot be found on the remote server."},
	StatusRequestNotAccepted:     {"STATUS_REQUEST_NOT_ACCEPTED", "No more connections can be made to this remote computer at this time."},
	StatusInternalError:          {"STATUS_INTERNAL_ERROR", "An internal error occurred."},
	StatusDirectoryNotEmpty:      {"STATUS_DIRECTORY_NOT_EMPTY", "The directory is not empty."},
	StatusNotADirectory:          {"STATUS_NOT_A_DIRECTORY", "A requested opened file is not a directory."},
	StatusCancelled:              {"STATUS_CANCELLED", "The I/O request was canceled."},
	StatusCannotDelete:           {"STATUS_CANNOT_DELETE", "An attempt has been made to remove a file or directory that cannot be deleted."},
	StatusFileClosed:             {"STATUS_FILE_CLOSED", "An I/O request other than close and several other special case operations was attempted using a file object that had already been closed."},
	StatusAccountLockedOut:       {"STATUS_ACCOUNT_LOCKED_OUT", "The user account has been automatically locked because too many invalid logon attempts or password change attempts have been requested."},
	StatusUserSessionDeleted:     {"STATUS_USER_SESSION_DELETED", "The remote user session has been deleted."},
	StatusConnectionRefused:      {"STATUS_CONNECTION_REFUSED", "The transport connection attempt was refused by the remote system."},
	StatusPasswordMustChange:     {"STATUS_PASSWORD_MUST_CHANGE", "The user password must be changed before logging on the first time."},
	StatusPathNotCovered:         {"STATUS_PATH_NOT_COVERED", "The contacted server does not support the indicated part of the DFS namespace."},
	StatusNetworkSessionExpired:  {"STATUS_NETWORK_SESSION_EXPIRED", "The client session has expired; so the client must re-authenticate to continue accessing the remote resources."},
	StatusIOTimeout:              {"STATUS_IO_TIMEOUT", "The specified I/O operation was not completed before the time-out period expired."},
}

// Name returns the symbolic name of the status, e.g. STATUS_ACCESS_DENIED.
func (s NTStatus) Name() string {
	if info, ok := statusTable[s]; ok {
		return info.name
	}
	return fmt.Sprintf("0x%08X", uint32(s))
}

// String renders the status for diagnostics. Unknown codes never render empty.
func (s NTStatus) String() string {
	if info, ok := statusTable[s]; ok {
		return fmt.Sprintf("%s (0x%08X): %s", info.name, uint32(s), info.description)
	}
	return fmt.Sprintf("unmapped NT status 0x%08X", uint32(s))
}

// IsSuccess reports whether the status is a success or informational code.
func (s NTStatus) IsSuccess() bool {
	return s&0xC0000000 != 0xC0000000 && s&0x80000000 == 0
}

// IsError reports whether the status has error severity.
func (s NTStatus) IsError() bool {
	return s&0xC0000000 == 0xC0000000
}

// DescribeStatus maps a raw status code to a human-readable description.
func DescribeStatus(code uint32) string {
	return NTStatus(code).String()
}

// StatusError is returned by protocol engines when the server answers an
// operation with a non-success NT status.
type StatusError struct {
	Code NTStatus
}

func (e *StatusError) Error() string {
	return e.Code.String()
}

// Is matches the io/fs sentinel errors the status corresponds to, so
// errors.Is(err, fs.ErrNotExist) works on engine failures.
func (e *StatusError) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return e.Code == StatusObjectNameNotFound || e.Code == StatusObjectPathNotFound ||
			e.Code == StatusNoSuchFile
	case fs.ErrExist:
		return e.Code == StatusObjectNameCollision
	case fs.ErrPermission:
		return e.Code == StatusAccessDenied || e.Code == StatusNetworkAccessDenied
	case fs.ErrClosed:
		return e.Code == StatusFileClosed
	}
	return false
}
