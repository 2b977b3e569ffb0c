package wsclient

import "github.com/gbrlsnchs/uuid"

// maskKey is the 4-byte value RFC 6455 Section 5.3 requires XORed
// byte-wise over every client-to-server payload.
type maskKey [4]byte

// transform XORs b in place with the repeating mask key. Applying it
// twice recovers the original bytes.
func (m maskKey) transform(b []byte) {
	for i := range b {
		b[i] ^= m[i%4]
	}
}

// newMaskKey draws a fresh mask key from a cryptographically adequate
// source. uuid.GenerateV4 is backed by crypto/rand; only the first 4
// of its 16 bytes, none of which carry the version or variant bits,
// are used here.
func newMaskKey() (maskKey, error) {
	raw, err := uuid.GenerateV4(nil)
	if err != nil {
		return maskKey{}, err
	}
	var key maskKey
	copy(key[:], raw[:4])
	return key, nil
}
