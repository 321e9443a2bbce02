package document

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns the BLAKE3 hash of the document text as a hex string.
// It identifies the exact text a set of offsets refers to. The hash is
// computed on first use and is safe to request from several goroutines.
func (d *Document) Fingerprint() string {
	d.hashOnce.Do(func() {
		d.fingerprint = HashString(d.text)
	})
	return d.fingerprint
}

// HashBytes computes the BLAKE3 hash of data and returns it as a hex string.
func HashBytes(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashString computes the BLAKE3 hash of a string and returns it as a hex string.
func HashString(s string) string {
	return HashBytes([]byte(s))
}
