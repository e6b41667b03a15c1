// Package backup implements the encrypted archive format used by the
// backup CLI: JSON-lines records, gzip compressed, sealed with AES-256-GCM.
package backup

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// keySize is the AES-256 key length in bytes
const keySize = 32

// Record is one table row inside an archive
type Record struct {
	Table string          `json:"table"`
	Row   json.RawMessage `json:"row"`
}

// Manifest describes a sealed archive. It is stored next to the archive so
// operators can audit backups without decrypting them.
type Manifest struct {
	CreatedAt time.Time      `json:"created_at"`
	Tables    map[string]int `json:"tables"`
	SHA256    string         `json:"sha256"` // digest of the sealed archive
	SizeBytes int64          `json:"size_bytes"`
}

// ParseKey decodes a hex-encoded AES-256 key
func ParseKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(key))
	}
	return key, nil
}

// Archive accumulates rows before sealing. Not safe for concurrent use.
type Archive struct {
	buf    bytes.Buffer
	gz     *gzip.Writer
	enc    *json.Encoder
	counts map[string]int
	sealed bool
}

// NewArchive creates an empty archive
func NewArchive() *Archive {
	a := &Archive{counts: make(map[string]int)}
	a.gz = gzip.NewWriter(&a.buf)
	a.enc = json.NewEncoder(a.gz)
	return a
}

// Append adds one row to the archive
func (a *Archive) Append(table string, row interface{}) error {
	if a.sealed {
		return fmt.Errorf("archive already sealed")
	}
	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal row for table %s: %w", table, err)
	}
	if err := a.enc.Encode(Record{Table: table, Row: raw}); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	a.counts[table]++
	return nil
}

// Seal finishes compression, encrypts the archive and returns the sealed
// bytes plus a manifest describing them
func (a *Archive) Seal(key []byte) ([]byte, *Manifest, error) {
	if a.sealed {
		return nil, nil, fmt.Errorf("archive already sealed")
	}
	a.sealed = true

	if err := a.gz.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to finish compression: %w", err)
	}

	sealed, err := encrypt(a.buf.Bytes(), key)
	if err != nil {
		return nil, nil, err
	}

	digest := sha256.Sum256(sealed)
	manifest := &Manifest{
		CreatedAt: time.Now().UTC(),
		Tables:    a.counts,
		SHA256:    hex.EncodeToString(digest[:]),
		SizeBytes: int64(len(sealed)),
	}
	return sealed, manifest, nil
}

// Open decrypts and decompresses a sealed archive into its records
func Open(sealed, key []byte) ([]Record, error) {
	plaintext, err := decrypt(sealed, key)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(plaintext))
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed stream: %w", err)
	}
	defer gz.Close()

	var records []Record
	scanner := bufio.NewScanner(gz)
	// Transcript rows carry full word timings; lines can get big
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse archive record: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return records, nil
}

// Verify checks a sealed archive against its manifest digest
func Verify(sealed []byte, manifest *Manifest) error {
	digest := sha256.Sum256(sealed)
	if hex.EncodeToString(digest[:]) != manifest.SHA256 {
		return fmt.Errorf("archive digest mismatch")
	}
	if int64(len(sealed)) != manifest.SizeBytes {
		return fmt.Errorf("archive size mismatch: manifest says %d, got %d", manifest.SizeBytes, len(sealed))
	}
	return nil
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(sealed, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("archive too short to contain nonce")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt archive: %w", err)
	}
	return plaintext, nil
}
