package smbclient

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"testing"

	"github.com/hirochachacha/go-smb2"
)

func TestOpenFlags(t *testing.T) {
	tests := []struct {
		name        string
		access      AccessMask
		disposition Disposition
		want        int
	}{
		{"read only", ModRO, DispositionOpen, os.O_RDONLY},
		{"read write create", ModRW, DispositionOpenIf, os.O_RDWR | os.O_CREATE},
		{"write only truncate", ModWrite, DispositionOverwriteIf, os.O_WRONLY | os.O_CREATE | os.O_TRUNC},
		{"append only", ModAppend, DispositionOpenIf, os.O_WRONLY | os.O_APPEND | os.O_CREATE},
		{"generic read", ModGenericRead, DispositionOpen, os.O_RDONLY},
		{"exclusive create", ModRW, DispositionCreate, os.O_RDWR | os.O_CREATE | os.O_EXCL},
		{"truncate existing", ModWrite, DispositionOverwrite, os.O_WRONLY | os.O_TRUNC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := openFlags(tt.access, tt.disposition); got != tt.want {
				t.Errorf("openFlags() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestSplitFindPattern(t *testing.T) {
	tests := []struct {
		pattern string
		dir     string
		glob    string
	}{
		{`\docs\*`, `\docs`, "*"},
		{`\*`, "", "*"},
		{`\docs\*.txt`, `\docs`, "*.txt"},
		{`/docs/sub/`, `\docs\sub`, "*"},
		{"*", "", "*"},
	}
	for _, tt := range tests {
		dir, glob := splitFindPattern(tt.pattern)
		if dir != tt.dir || glob != tt.glob {
			t.Errorf("splitFindPattern(%q) = %q, %q, want %q, %q", tt.pattern, dir, glob, tt.dir, tt.glob)
		}
	}
}

func TestEngineRelPath(t *testing.T) {
	tests := map[string]string{
		`\docs\a.txt`: `docs\a.txt`,
		"/docs/a.txt": `docs\a.txt`,
		`\`:           "",
		"top.txt":     "top.txt",
	}
	for in, want := range tests {
		if got := engineRelPath(in); got != want {
			t.Errorf("engineRelPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConvertSMB2Error(t *testing.T) {
	if convertSMB2Error(nil) != nil {
		t.Error("convertSMB2Error(nil) != nil")
	}

	wrapped := &os.PathError{Op: "open", Path: "x", Err: &smb2.ResponseError{Code: uint32(StatusAccessDenied)}}
	err := convertSMB2Error(wrapped)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != StatusAccessDenied {
		t.Errorf("convertSMB2Error() = %v, want STATUS_ACCESS_DENIED", err)
	}

	plain := fmt.Errorf("broken pipe")
	if convertSMB2Error(plain) != plain {
		t.Error("errors without a status should pass through")
	}
}

func TestSMB2Engine_RejectsNBT(t *testing.T) {
	engine := NewSMB2Engine(&Config{Server: "fs1"})
	sess, err := engine.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	err = sess.Connect(context.Background(), "fs1", netip.MustParseAddrPort("127.0.0.1:139"), TransportNBT)
	if !errors.Is(err, ErrUnsupportedTransport) {
		t.Errorf("Connect(NBT) error = %v, want ErrUnsupportedTransport", err)
	}
}

func TestSMB2Engine_OpsBeforeLogin(t *testing.T) {
	sess, _ := NewSMB2Engine(&Config{Server: "fs1"}).NewSession()
	if _, err := sess.ListShares(context.Background()); err == nil {
		t.Error("ListShares() before Login should fail")
	}
	if err := sess.Destroy(); err != nil {
		t.Errorf("Destroy() error = %v", err)
	}
}
