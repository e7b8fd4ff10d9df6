package smbclient

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/md4"
	"golang.org/x/text/encoding/unicode"
)

// NTHash computes the NT one-way function of password: MD4 over its
// UTF-16LE encoding. The SMB2 engine authenticates with the hash so the
// plaintext password does not have to be retained.
func NTHash(password string) []byte {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	b, err := enc.Bytes([]byte(password))
	if err != nil {
		// Invalid UTF-8 is replaced rather than rejected by the encoder;
		// fall back to a byte-wise widening.
		b = make([]byte, 0, len(password)*2)
		for i := 0; i < len(password); i++ {
			b = append(b, password[i], 0)
		}
	}
	h := md4.New()
	h.Write(b)
	return h.Sum(nil)
}

// ParseNTHash decodes a 32 character hexadecimal NT hash.
func ParseNTHash(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	// Accept the LM:NT form produced by common dumping tools.
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: nt hash: %v", ErrInvalidConfig, err)
	}
	if len(b) != md4.Size {
		return nil, fmt.Errorf("%w: nt hash must be %d bytes, got %d", ErrInvalidConfig, md4.Size, len(b))
	}
	return b, nil
}
