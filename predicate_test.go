package smbclient

import (
	"regexp"
	"testing"
)

type prefixPredicate string

func (p prefixPredicate) Matches(s string) bool { return len(s) >= len(p) && s[:len(p)] == string(p) }

func TestAsPredicate(t *testing.T) {
	var nilFunc func(string) bool

	tests := []struct {
		name    string
		filter  any
		wantNil bool
		wantErr bool
		accepts []string
		rejects []string
	}{
		{name: "nil", filter: nil, wantNil: true},
		{name: "nil func", filter: nilFunc, wantNil: true},
		{
			name:    "func",
			filter:  func(s string) bool { return len(s) > 3 },
			accepts: []string{"long.txt"},
			rejects: []string{"a"},
		},
		{
			name:    "regexp",
			filter:  regexp.MustCompile(`(?i)\.log$`),
			accepts: []string{"app.LOG", `dir\x.log`},
			rejects: []string{"app.txt"},
		},
		{
			name:    "predicate",
			filter:  prefixPredicate("docs"),
			accepts: []string{`docs\a`},
			rejects: []string{`src\a`},
		},
		{
			name:    "predicate func",
			filter:  PredicateFunc(func(string) bool { return false }),
			rejects: []string{"anything"},
		},
		{name: "unsupported", filter: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := AsPredicate(tt.filter)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AsPredicate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (p == nil) != tt.wantNil {
				t.Fatalf("AsPredicate() = %v, wantNil %v", p, tt.wantNil)
			}
			for _, s := range tt.accepts {
				if !accepts(p, s) {
					t.Errorf("%q rejected", s)
				}
			}
			for _, s := range tt.rejects {
				if accepts(p, s) {
					t.Errorf("%q accepted", s)
				}
			}
		})
	}
}

func TestAccepts_NilIsAcceptAll(t *testing.T) {
	if !accepts(nil, "anything") {
		t.Error("nil predicate should accept")
	}
}
