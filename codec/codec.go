// Package codec encrypts message bodies at rest with AES-256-GCM.
//
// The stored blob is base64(nonce || tag || ciphertext). The key is
// derived from the configured secret with a single SHA-256, so rotating
// the secret makes previously stored bodies unreadable (surfaced as
// ErrDecryptFailure, never as garbage plaintext).
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"realchat/errors"
)

const (
	nonceSize = 12
	tagSize   = 16
)

// Encrypt seals plaintext under the given secret. A fresh random nonce
// is drawn per call; nonce reuse would break GCM's guarantees.
func Encrypt(plaintext, secret string) (string, error) {
	aead, err := newAEAD(secret)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err = rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce generation failed: %w", err)
	}

	// Seal appends the tag after the ciphertext; the stored layout puts
	// the tag first to stay compatible with existing blobs.
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	blob := make([]byte, 0, nonceSize+tagSize+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ciphertext...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt. Any malformed input, wrong
// secret, or failed tag verification yields ErrDecryptFailure.
func Decrypt(blob, secret string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", errors.ErrDecryptFailure
	}
	if len(raw) < nonceSize+tagSize {
		return "", errors.ErrDecryptFailure
	}

	aead, err := newAEAD(secret)
	if err != nil {
		return "", err
	}

	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ciphertext := raw[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.ErrDecryptFailure
	}
	return string(plaintext), nil
}

func newAEAD(secret string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("cipher init failed: %w", err)
	}
	return cipher.NewGCM(block)
}
