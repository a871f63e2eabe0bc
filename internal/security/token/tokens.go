// Package tokens agrupa las primitivas de tokens opacos: generación
// aleatoria y hashes para usar un token como key sin guardarlo en claro.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

const fingerprintLen = 12

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SHA256Hex devuelve sha256(input) en hexadecimal (keys del Credential Store).
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint identifica un token en logs sin exponerlo: 12 hex de sha256.
func Fingerprint(s string) string {
	if s == "" {
		return ""
	}
	return SHA256Hex(s)[:fingerprintLen]
}
