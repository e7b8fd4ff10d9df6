package netbios

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
)

const (
	flagResponse  = 0x8000
	flagRecursion = 0x0100
	flagBroadcast = 0x0010
	rcodeMask     = 0x000F

	typeNB  = 0x0020
	classIN = 0x0001

	headerLen = 12
)

// Response codes carried in the low nibble of the flags word.
const (
	RcodeFormatError = 0x1
	RcodeServerError = 0x2
	RcodeNameError   = 0x3
	RcodeUnsupported = 0x4
	RcodeRefused     = 0x5
)

var errMalformed = errors.New("netbios: malformed packet")

// buildQuery encodes an NB name query request.
func buildQuery(id uint16, name string, t NameType, broadcast bool) ([]byte, error) {
	encoded, err := EncodeName(name, t)
	if err != nil {
		return nil, err
	}

	flags := uint16(flagRecursion)
	if broadcast {
		flags |= flagBroadcast
	}

	pkt := make([]byte, headerLen, headerLen+1+32+1+4)
	binary.BigEndian.PutUint16(pkt[0:], id)
	binary.BigEndian.PutUint16(pkt[2:], flags)
	binary.BigEndian.PutUint16(pkt[4:], 1) // QDCOUNT

	pkt = append(pkt, 32)
	pkt = append(pkt, encoded...)
	pkt = append(pkt, 0)
	pkt = binary.BigEndian.AppendUint16(pkt, typeNB)
	pkt = binary.BigEndian.AppendUint16(pkt, classIN)
	return pkt, nil
}

// queryResponse is the decoded part of a positive or negative name query response.
type queryResponse struct {
	id        uint16
	rcode     int
	name      string
	nameType  NameType
	addresses []netip.Addr
}

// parseResponse decodes a name query response.
func parseResponse(pkt []byte) (*queryResponse, error) {
	if len(pkt) < headerLen {
		return nil, errMalformed
	}
	flags := binary.BigEndian.Uint16(pkt[2:])
	if flags&flagResponse == 0 {
		return nil, fmt.Errorf("%w: not a response", errMalformed)
	}

	resp := &queryResponse{
		id:    binary.BigEndian.Uint16(pkt[0:]),
		rcode: int(flags & rcodeMask),
	}
	ancount := binary.BigEndian.Uint16(pkt[6:])
	if resp.rcode != 0 || ancount == 0 {
		return resp, nil
	}

	off := headerLen
	name, next, err := readName(pkt, off)
	if err != nil {
		return nil, err
	}
	off = next
	if n, t, err := DecodeName(name); err == nil {
		resp.name, resp.nameType = n, t
	}

	// TYPE, CLASS, TTL, RDLENGTH
	if len(pkt) < off+10 {
		return nil, errMalformed
	}
	if binary.BigEndian.Uint16(pkt[off:]) != typeNB {
		return nil, fmt.Errorf("%w: unexpected record type", errMalformed)
	}
	rdlen := int(binary.BigEndian.Uint16(pkt[off+8:]))
	off += 10
	if len(pkt) < off+rdlen {
		return nil, errMalformed
	}

	// Each NB entry is NB_FLAGS (2) followed by an IPv4 address (4).
	for rd := pkt[off : off+rdlen]; len(rd) >= 6; rd = rd[6:] {
		resp.addresses = append(resp.addresses, netip.AddrFrom4([4]byte(rd[2:6])))
	}
	return resp, nil
}

// readName reads a length-prefixed label sequence starting at off. NBNS
// responses carry the full encoded name; a compression pointer is
// followed once.
func readName(pkt []byte, off int) (string, int, error) {
	if off >= len(pkt) {
		return "", 0, errMalformed
	}
	if pkt[off]&0xC0 == 0xC0 {
		if off+1 >= len(pkt) {
			return "", 0, errMalformed
		}
		ptr := int(binary.BigEndian.Uint16(pkt[off:]) & 0x3FFF)
		name, _, err := readName(pkt[:off], ptr)
		return name, off + 2, err
	}

	var first string
	for {
		if off >= len(pkt) {
			return "", 0, errMalformed
		}
		l := int(pkt[off])
		off++
		if l == 0 {
			return first, off, nil
		}
		if l&0xC0 != 0 || off+l > len(pkt) {
			return "", 0, errMalformed
		}
		if first == "" {
			first = string(pkt[off : off+l])
		}
		off += l
	}
}
