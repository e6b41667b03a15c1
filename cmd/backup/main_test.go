package main

import "testing"

func TestParseRestoreArgs(t *testing.T) {
	key := "backups/2026-08-26T120000Z.json.gz.enc"

	tests := []struct {
		name        string
		args        []string
		wantKey     string
		wantConfirm bool
		wantErr     bool
	}{
		{name: "flag after key", args: []string{key, "--confirm"}, wantKey: key, wantConfirm: true},
		{name: "flag before key", args: []string{"--confirm", key}, wantKey: key, wantConfirm: true},
		{name: "single dash", args: []string{key, "-confirm"}, wantKey: key, wantConfirm: true},
		{name: "no confirm", args: []string{key}, wantKey: key, wantConfirm: false},
		{name: "missing key", args: []string{"--confirm"}, wantErr: true},
		{name: "two keys", args: []string{key, "other.json.gz.enc"}, wantErr: true},
		{name: "unknown flag", args: []string{key, "--force"}, wantErr: true},
		{name: "empty", args: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotKey, gotConfirm, err := parseRestoreArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for args %v", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRestoreArgs(%v): %v", tt.args, err)
			}
			if gotKey != tt.wantKey {
				t.Errorf("key = %q, want %q", gotKey, tt.wantKey)
			}
			if gotConfirm != tt.wantConfirm {
				t.Errorf("confirm = %v, want %v", gotConfirm, tt.wantConfirm)
			}
		})
	}
}
