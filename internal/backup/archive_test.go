package backup

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := ParseKey(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	return key
}

func TestParseKeyRejectsBadInput(t *testing.T) {
	if _, err := ParseKey("not-hex"); err == nil {
		t.Fatal("expected error for non-hex key")
	}
	if _, err := ParseKey(hex.EncodeToString(make([]byte, 16))); err == nil {
		t.Fatal("expected error for 16-byte key")
	}
	if _, err := ParseKey(hex.EncodeToString(make([]byte, 32))); err != nil {
		t.Fatalf("expected 32-byte key to parse, got %v", err)
	}
}

func TestArchiveRoundtrip(t *testing.T) {
	key := testKey(t)

	a := NewArchive()
	users := []map[string]string{
		{"id": "u1", "email": "ada@example.com"},
		{"id": "u2", "email": "grace@example.com"},
	}
	for _, u := range users {
		if err := a.Append("users", u); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := a.Append("meetings", map[string]string{"id": "m1", "title": "standup"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	sealed, manifest, err := a.Seal(key)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if manifest.Tables["users"] != 2 || manifest.Tables["meetings"] != 1 {
		t.Fatalf("unexpected manifest counts: %+v", manifest.Tables)
	}
	if manifest.SizeBytes != int64(len(sealed)) {
		t.Fatalf("manifest size %d != sealed size %d", manifest.SizeBytes, len(sealed))
	}
	if err := Verify(sealed, manifest); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	records, err := Open(sealed, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Table != "users" {
		t.Fatalf("expected first record table users, got %s", records[0].Table)
	}
	var row map[string]string
	if err := json.Unmarshal(records[2].Row, &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}
	if row["title"] != "standup" {
		t.Fatalf("expected meeting row, got %v", row)
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	key := testKey(t)

	a := NewArchive()
	if err := a.Append("users", map[string]string{"id": "u1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	sealed, _, err := a.Seal(key)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	wrongKey, _ := ParseKey(strings.Repeat("cd", 32))
	if _, err := Open(sealed, wrongKey); err == nil {
		t.Fatal("expected decryption failure with wrong key")
	}
}

func TestOpenRejectsTamperedArchive(t *testing.T) {
	key := testKey(t)

	a := NewArchive()
	if err := a.Append("users", map[string]string{"id": "u1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	sealed, manifest, err := a.Seal(key)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tampered := bytes.Clone(sealed)
	tampered[len(tampered)-1] ^= 0xff
	if _, err := Open(tampered, key); err == nil {
		t.Fatal("expected GCM authentication failure")
	}
	if err := Verify(tampered, manifest); err == nil {
		t.Fatal("expected manifest digest mismatch")
	}
}

func TestSealIsTerminal(t *testing.T) {
	key := testKey(t)

	a := NewArchive()
	if _, _, err := a.Seal(key); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if err := a.Append("users", map[string]string{"id": "u1"}); err == nil {
		t.Fatal("expected append after seal to fail")
	}
	if _, _, err := a.Seal(key); err == nil {
		t.Fatal("expected second seal to fail")
	}
}
