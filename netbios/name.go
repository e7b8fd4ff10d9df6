// Package netbios implements the client side of the NetBIOS Name Service
// (RFC 1001/1002): name encoding and NB name queries over UDP port 137.
package netbios

import (
	"errors"
	"fmt"
	"strings"
)

// NameType is the 16th byte of a NetBIOS name, identifying the service
// registered under it.
type NameType byte

const (
	Workstation     NameType = 0x00
	Messenger       NameType = 0x03
	FileServer      NameType = 0x20
	DomainMaster    NameType = 0x1B
	DomainControl   NameType = 0x1C
	MasterBrowser   NameType = 0x1D
	BrowserElection NameType = 0x1E
)

// DefaultNameTypes is the order in which name types are tried when
// resolving a host.
var DefaultNameTypes = []NameType{FileServer, Workstation, Messenger, DomainMaster}

func (t NameType) String() string {
	switch t {
	case Workstation:
		return "workstation"
	case Messenger:
		return "messenger"
	case FileServer:
		return "fileserver"
	case DomainMaster:
		return "domain-master"
	case DomainControl:
		return "domain-controllers"
	case MasterBrowser:
		return "master-browser"
	case BrowserElection:
		return "browser-election"
	default:
		return fmt.Sprintf("0x%02X", byte(t))
	}
}

// MaxNameLen is the longest NetBIOS name; the 16th byte is the type.
const MaxNameLen = 15

var ErrInvalidName = errors.New("netbios: invalid name")

// EncodeName applies first-level encoding: the name is upper-cased,
// space padded to 15 bytes, suffixed with the type byte, and every
// nibble becomes a letter 'A'..'P'.
func EncodeName(name string, t NameType) (string, error) {
	if name == "" || len(name) > MaxNameLen || strings.ContainsAny(name, ".\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	var raw [16]byte
	copy(raw[:], strings.ToUpper(name))
	for i := len(name); i < MaxNameLen; i++ {
		raw[i] = ' '
	}
	raw[15] = byte(t)

	var b strings.Builder
	b.Grow(32)
	for _, c := range raw {
		b.WriteByte('A' + c>>4)
		b.WriteByte('A' + c&0x0F)
	}
	return b.String(), nil
}

// DecodeName reverses EncodeName, trimming the padding.
func DecodeName(encoded string) (string, NameType, error) {
	if len(encoded) != 32 {
		return "", 0, fmt.Errorf("%w: encoded length %d", ErrInvalidName, len(encoded))
	}
	var raw [16]byte
	for i := 0; i < 16; i++ {
		hi, lo := encoded[2*i]-'A', encoded[2*i+1]-'A'
		if hi > 0x0F || lo > 0x0F {
			return "", 0, fmt.Errorf("%w: bad character at %d", ErrInvalidName, 2*i)
		}
		raw[i] = hi<<4 | lo
	}
	return strings.TrimRight(string(raw[:15]), " "), NameType(raw[15]), nil
}
