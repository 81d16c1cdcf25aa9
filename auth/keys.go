package auth

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key purposes
const (
	PurposeSession = "session"
	PurposeCookie  = "cookie-store"
	PurposeCipher  = "cookie-cipher"
)

// DeriveKey derives a 32-byte key for purpose from the application secret.
func DeriveKey(secret, purpose string) []byte {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("memoryvault/"+purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails past 255*HashLen bytes
		panic(err)
	}
	return key
}
