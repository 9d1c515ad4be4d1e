package codec

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"realchat/errors"
)

const secret = "a_strong_enough_secret_for_tests"

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"Simple text", "hi"},
		{"Empty string", ""},
		{"Multi-byte characters", "héllo wörld 你好 🦡"},
		{"Long text", string(make([]byte, 4096))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			blob, err := Encrypt(tt.text, secret)
			req.NoError(err)
			req.NotEqual(tt.text, blob)

			plaintext, err := Decrypt(blob, secret)
			req.NoError(err)
			req.Equal(tt.text, plaintext)
		})
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	req := require.New(t)
	first, err := Encrypt("same text", secret)
	req.NoError(err)
	second, err := Encrypt("same text", secret)
	req.NoError(err)
	req.NotEqual(first, second)
}

func TestDecrypt_WrongSecret(t *testing.T) {
	req := require.New(t)
	blob, err := Encrypt("confidential", secret)
	req.NoError(err)

	_, err = Decrypt(blob, "another secret entirely")
	req.ErrorIs(err, errors.ErrDecryptFailure)
}

// Flipping any single byte of the blob must make decryption fail:
// nonce, tag, and ciphertext are all covered by the authentication tag.
func TestDecrypt_TamperDetection(t *testing.T) {
	req := require.New(t)
	blob, err := Encrypt("do not tamper", secret)
	req.NoError(err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	req.NoError(err)

	for i := range raw {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		_, err = Decrypt(base64.StdEncoding.EncodeToString(tampered), secret)
		req.ErrorIs(err, errors.ErrDecryptFailure, "byte %d", i)
	}
}

func TestDecrypt_MalformedBlob(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"Not base64", "%%%not-base64%%%"},
		{"Empty", ""},
		{"Too short for nonce and tag", base64.StdEncoding.EncodeToString([]byte("short"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.blob, secret)
			require.ErrorIs(t, err, errors.ErrDecryptFailure)
		})
	}
}
