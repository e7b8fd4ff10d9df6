package smbclient

import (
	"encoding/hex"
	"errors"
	"testing"
)

func TestNTHash(t *testing.T) {
	tests := []struct {
		password string
		want     string
	}{
		{"password", "8846f7eaee8fb117ad06bdd830b7586c"},
		{"", "31d6cfe0d16ae931b73c59d7e0c089c0"},
	}
	for _, tt := range tests {
		if got := hex.EncodeToString(NTHash(tt.password)); got != tt.want {
			t.Errorf("NTHash(%q) = %s, want %s", tt.password, got, tt.want)
		}
	}
}

func TestParseNTHash(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "8846f7eaee8fb117ad06bdd830b7586c", want: "8846f7eaee8fb117ad06bdd830b7586c"},
		{name: "upper case with spaces", in: "  8846F7EAEE8FB117AD06BDD830B7586C\n", want: "8846f7eaee8fb117ad06bdd830b7586c"},
		{name: "lm:nt", in: "aad3b435b51404eeaad3b435b51404ee:8846f7eaee8fb117ad06bdd830b7586c", want: "8846f7eaee8fb117ad06bdd830b7586c"},
		{name: "not hex", in: "zz46f7eaee8fb117ad06bdd830b7586c", wantErr: true},
		{name: "too short", in: "8846f7ea", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNTHash(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("ParseNTHash() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNTHash() error = %v", err)
			}
			if hex.EncodeToString(got) != tt.want {
				t.Errorf("ParseNTHash() = %x, want %s", got, tt.want)
			}
		})
	}
}
