// Package secretbox sella blobs con AES-256-GCM para viajar en cookies
// o quedar en el credential store sin exponer su contenido.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	nonceSizeGCM      = 12 // 96 bits
	requiredKeyLength = 32 // AES-256
)

// ErrOpen se retorna cuando el blob no autentica o está mal formado.
var ErrOpen = errors.New("secretbox: cannot open sealed value")

// Box sella y abre valores con una clave fija.
type Box struct {
	aead cipher.AEAD
}

// New crea un Box con una clave cruda de 32 bytes.
func New(key []byte) (*Box, error) {
	if len(key) != requiredKeyLength {
		return nil, fmt.Errorf("secretbox: key must be %d bytes, got %d", requiredKeyLength, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Derive crea un Box con una subclave HKDF-SHA256 del secreto maestro.
// info separa dominios: dos usos con info distinto nunca comparten clave.
func Derive(master []byte, info string) (*Box, error) {
	if len(master) < requiredKeyLength {
		return nil, fmt.Errorf("secretbox: master secret must be at least %d bytes", requiredKeyLength)
	}
	key := make([]byte, requiredKeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return New(key)
}

// Seal devuelve base64url(nonce || ciphertext), seguro para cookies.
func (b *Box) Seal(plain []byte) (string, error) {
	nonce := make([]byte, nonceSizeGCM, nonceSizeGCM+len(plain)+b.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}
	out := b.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open invierte Seal. Cualquier alteración devuelve ErrOpen.
func (b *Box) Open(sealed string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSizeGCM+b.aead.Overhead() {
		return nil, ErrOpen
	}
	pt, err := b.aead.Open(nil, raw[:nonceSizeGCM], raw[nonceSizeGCM:], nil)
	if err != nil {
		return nil, ErrOpen
	}
	return pt, nil
}
