package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDecryption is returned for any malformed or unauthenticated envelope.
// Callers render a placeholder instead of surfacing the raw failure.
var ErrDecryption = errors.New("decryption failed")

const envelopeDelimiter = ":"

// Vault encrypts reporter contact data with AES-256-GCM. The envelope is
// hex(nonce):hex(ciphertext):hex(tag) so each part is independently
// recoverable; the delimiter never appears in the hex alphabet.
type Vault struct {
	key []byte
}

func New(key string) (*Vault, error) {
	decoded, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding, got %d", len(decoded))
	}
	return &Vault{key: decoded}, nil
}

func (v *Vault) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	tagStart := len(sealed) - gcm.Overhead()
	return hex.EncodeToString(nonce) + envelopeDelimiter +
		hex.EncodeToString(sealed[:tagStart]) + envelopeDelimiter +
		hex.EncodeToString(sealed[tagStart:]), nil
}

func (v *Vault) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, envelopeDelimiter)
	if len(parts) != 3 {
		return "", ErrDecryption
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", ErrDecryption
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrDecryption
	}
	tag, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrDecryption
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() || len(tag) != gcm.Overhead() {
		return "", ErrDecryption
	}
	plain, err := gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plain), nil
}

// EncryptBytes seals arbitrary data into the same envelope format. Used for
// case-file exports written to disk.
func (v *Vault) EncryptBytes(data []byte) ([]byte, error) {
	sealed, err := v.Encrypt(string(data))
	if err != nil {
		return nil, err
	}
	return []byte(sealed), nil
}

func (v *Vault) DecryptBytes(data []byte) ([]byte, error) {
	plain, err := v.Decrypt(string(data))
	if err != nil {
		return nil, err
	}
	return []byte(plain), nil
}

func decodeKey(raw string) ([]byte, error) {
	if raw == "" {
		return nil, errors.New("encryption key is empty")
	}
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return nil, errors.New("encryption key must be hex or base64 encoded")
}
