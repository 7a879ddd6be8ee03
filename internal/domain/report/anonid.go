package report

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/blake2b"
)

var anonIDPattern = regexp.MustCompile(`^ANON-\d{4}-[A-Z0-9]{6}$`)

// IDGenerator produces caller-facing tracking tokens of the form
// ANON-YYYY-XXXXXX. The six characters come from a keyed one-way hash over
// the submission time and fresh random bytes, so a token can never be
// inverted to the random seed or the server secret.
type IDGenerator struct {
	secret []byte
}

func NewIDGenerator(secretHex string) (*IDGenerator, error) {
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("ANON_ID_SECRET must be hex encoded: %w", err)
	}
	if len(secret) < 16 {
		return nil, fmt.Errorf("ANON_ID_SECRET must decode to at least 16 bytes, got %d", len(secret))
	}
	if len(secret) > 64 {
		return nil, fmt.Errorf("ANON_ID_SECRET must decode to at most 64 bytes, got %d", len(secret))
	}
	return &IDGenerator{secret: secret}, nil
}

func (g *IDGenerator) Generate() (string, error) {
	hasher, err := blake2b.New256(g.secret)
	if err != nil {
		return "", err
	}

	var input [24]byte
	binary.BigEndian.PutUint64(input[:8], uint64(time.Now().UnixNano()))
	if _, err := rand.Read(input[8:]); err != nil {
		return "", err
	}
	hasher.Write(input[:])
	sum := hasher.Sum(nil)

	// Base32 keeps the suffix inside [A-Z0-9] without bias.
	suffix := base32.StdEncoding.EncodeToString(sum)[:6]
	return fmt.Sprintf("ANON-%d-%s", time.Now().UTC().Year(), suffix), nil
}

// ValidateAnonymousID is a pure format check. It says nothing about whether
// the token was ever issued; the store lookup decides that. Malformed input
// yields false, never an error, so tracking lookups can answer with a clean
// not-found.
func ValidateAnonymousID(token string) bool {
	return anonIDPattern.MatchString(token)
}
