package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const encryptedPrefix = "enc:v1:"

// Encrypted wraps a Store and seals the values of selected keys with
// XChaCha20-Poly1305. Other keys pass through untouched. The key name is bound
// as associated data so a sealed value cannot be moved to another key.
type Encrypted struct {
	inner  Store
	secret map[string]bool
	aead   cipher.AEAD
}

// NewEncrypted builds the decorator. hexKey must encode 32 bytes.
func NewEncrypted(inner Store, hexKey string, keys ...string) (*Encrypted, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(raw)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	secret := make(map[string]bool, len(keys))
	for _, k := range keys {
		secret[k] = true
	}
	return &Encrypted{inner: inner, secret: secret, aead: aead}, nil
}

func (e *Encrypted) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := e.inner.Get(ctx, key)
	if err != nil || !ok || !e.secret[key] {
		return value, ok, err
	}
	if !strings.HasPrefix(value, encryptedPrefix) {
		return "", false, fmt.Errorf("value of %s is not encrypted", key)
	}
	sealed, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", false, fmt.Errorf("decode %s: %w", key, err)
	}
	n := e.aead.NonceSize()
	if len(sealed) < n {
		return "", false, fmt.Errorf("value of %s is truncated", key)
	}
	plain, err := e.aead.Open(nil, sealed[:n], sealed[n:], []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("decrypt %s: %w", key, err)
	}
	return string(plain), true, nil
}

func (e *Encrypted) Set(ctx context.Context, key, value string) error {
	if !e.secret[key] {
		return e.inner.Set(ctx, key, value)
	}
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(value)+chacha20poly1305.Overhead)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return e.inner.Set(ctx, key, encryptedPrefix+base64.RawStdEncoding.EncodeToString(sealed))
}

func (e *Encrypted) Remove(ctx context.Context, key string) error {
	return e.inner.Remove(ctx, key)
}

func (e *Encrypted) Close() error {
	return e.inner.Close()
}
